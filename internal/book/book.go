// Package book defines the declarative book description model and its YAML
// codec. Field shapes in the description are polymorphic: wherever a list of
// entries is expected, a single entry may be given instead, and wherever a
// structured entry is expected, a bare name string may be given. Decoding
// always produces the canonical fully-structured form.
package book

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Book is the root of a book description.
type Book struct {
	Metadata  Metadata
	Rendition Rendition
	Chapters  []Chapter
}

// Metadata holds the bibliographic metadata of a book.
type Metadata struct {
	Titles       []Title
	Creators     []Creator
	Contributors []Creator
	Collections  []Collection
	Language     string
	Identifier   string
}

// Title is a single title entry.
type Title struct {
	Name            string
	Type            TitleType
	AlternateScript string
	FileAs          string
}

// Creator is a single creator or contributor entry.
type Creator struct {
	Name            string
	Role            string
	AlternateScript string
	FileAs          string
}

// Collection is a series or set the book belongs to.
type Collection struct {
	Name     string
	Type     CollectionType
	Position *int
}

// Rendition holds the fixed-layout rendering settings of a book.
type Rendition struct {
	Direction   Direction
	Layout      Layout
	Orientation Orientation
	Spread      Spread
	Styles      []Style
}

// Style declares an auxiliary stylesheet. Src is the stylesheet text, Href is
// the name it is stored under inside the archive, and Link controls whether
// generated pages reference it.
type Style struct {
	Link bool
	Href string
	Src  string
}

// Chapter is an ordered group of pages. A chapter with a name appears in the
// table of contents; an unnamed chapter contributes its pages to the spine
// only. Cover marks the chapter whose first page is the cover image.
type Chapter struct {
	Name  string
	Pages []Page
	Cover bool
}

// Page is a single page image, identified by its path relative to the
// project root.
type Page struct {
	Src string
}

// TitleType classifies a title entry.
type TitleType string

const (
	TitleMain       TitleType = "main"
	TitleSubtitle   TitleType = "subtitle"
	TitleShort      TitleType = "short"
	TitleCollection TitleType = "collection"
	TitleEdition    TitleType = "edition"
	TitleExpanded   TitleType = "expanded"
)

// CollectionType classifies a collection entry.
type CollectionType string

const (
	CollectionSeries CollectionType = "series"
	CollectionSet    CollectionType = "set"
)

// Direction is the page progression direction.
type Direction string

const (
	DirectionRTL Direction = "rtl"
	DirectionLTR Direction = "ltr"
)

// Layout selects between reflowable and fixed-layout rendering.
type Layout string

const (
	LayoutReflowable   Layout = "reflowable"
	LayoutPrePaginated Layout = "pre-paginated"
)

// Orientation constrains the reading device orientation.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationAuto      Orientation = "auto"
)

// Spread controls synthetic two-page spreads.
type Spread string

const (
	SpreadNone      Spread = "none"
	SpreadLandscape Spread = "landscape"
	SpreadBoth      Spread = "both"
	SpreadAuto      Spread = "auto"
)

var (
	ErrMissingLanguage = errors.New(`book: metadata is missing required field "language"`)
	ErrNoTitle         = errors.New(`book: metadata is missing required field "title"`)
	ErrNoChapters      = errors.New("book: at least one chapter is required")
)

// Normalize applies defaults to a decoded book and validates the fields that
// must be present for a build. It is idempotent: normalizing an already
// canonical book changes nothing. A missing identifier is synthesized as a
// random urn:uuid; a user-declared identifier is never touched.
func (b *Book) Normalize() error {
	if err := b.Metadata.normalize(); err != nil {
		return err
	}
	b.Rendition.normalize()
	if len(b.Chapters) == 0 {
		return ErrNoChapters
	}
	return nil
}

func (m *Metadata) normalize() error {
	if len(m.Titles) == 0 {
		return ErrNoTitle
	}
	for i := range m.Titles {
		if m.Titles[i].Type == "" {
			m.Titles[i].Type = TitleMain
		}
	}
	if m.Language == "" {
		return ErrMissingLanguage
	}
	if m.Identifier == "" {
		m.Identifier = NewIdentifier()
	}
	return nil
}

func (r *Rendition) normalize() {
	if r.Direction == "" {
		r.Direction = DirectionRTL
	}
	if r.Layout == "" {
		r.Layout = LayoutPrePaginated
	}
	if r.Orientation == "" {
		r.Orientation = OrientationAuto
	}
	if r.Spread == "" {
		r.Spread = SpreadAuto
	}
}

// NewIdentifier returns a fresh urn:uuid identifier.
func NewIdentifier() string {
	return fmt.Sprintf("urn:uuid:%s", uuid.NewString())
}

// PrimaryTitle returns the display title of the book: the first title typed
// "main", or the first title when none is.
func (m *Metadata) PrimaryTitle() string {
	for _, t := range m.Titles {
		if t.Type == TitleMain {
			return t.Name
		}
	}
	if len(m.Titles) > 0 {
		return m.Titles[0].Name
	}
	return ""
}

// CoverChapter returns the index of the chapter explicitly flagged as cover,
// or -1 when no chapter is flagged. A second flag is an error.
func (b *Book) CoverChapter() (int, error) {
	cover := -1
	for i, ch := range b.Chapters {
		if !ch.Cover {
			continue
		}
		if cover >= 0 {
			return 0, fmt.Errorf("book: chapters %d and %d are both marked cover", cover+1, i+1)
		}
		cover = i
	}
	return cover, nil
}

// Pages returns the total number of pages across all chapters.
func (b *Book) Pages() int {
	n := 0
	for _, ch := range b.Chapters {
		n += len(ch.Pages)
	}
	return n
}
