// Package epub assembles and serializes fixed-layout EPUB 3 containers.
// A Package collects manifest items, spine references and navigation entries,
// renders the container documents, and hands the result to WriteArchive as a
// flat list of archive entries.
package epub

import (
	"errors"
	"fmt"
	"time"

	"github.com/orihon/orihon/internal/book"
)

// MimeType is the exact content of the mimetype entry.
const MimeType = "application/epub+zip"

// Item is a manifest entry. Exactly one of Data and SrcPath is set: generated
// documents carry their bytes, page images are streamed from disk at write
// time.
type Item struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
	Data       []byte
	SrcPath    string
}

// ItemRef is a spine reference to a manifest item.
type ItemRef struct {
	IDRef      string
	Properties string
}

// NavEntry is a table-of-contents entry pointing at a content document.
type NavEntry struct {
	Caption string
	Href    string
}

// Package is a fixed-layout EPUB container under assembly. Items keep their
// insertion order; IDs are derived from per-kind counters so that identical
// input always produces identical documents.
type Package struct {
	Book     *book.Book
	Title    string
	Modified time.Time

	items []*Item
	byID  map[string]*Item
	spine []ItemRef
	nav   []NavEntry

	// linked stylesheets, in declaration order
	styles []*Item

	imageIndex int
	pageIndex  int
	styleIndex int
}

// NewPackage starts an empty container for a normalized book. Modified
// becomes both the dcterms:modified value and the archive entry timestamp.
func NewPackage(b *book.Book, modified time.Time) *Package {
	return &Package{
		Book:     b,
		Title:    b.Metadata.PrimaryTitle(),
		Modified: modified.UTC().Truncate(time.Second),
		byID:     map[string]*Item{},
	}
}

func (p *Package) add(item *Item) *Item {
	if _, ok := p.byID[item.ID]; ok {
		panic(fmt.Sprintf("epub: duplicate manifest id %q", item.ID))
	}
	p.items = append(p.items, item)
	p.byID[item.ID] = item
	return item
}

// imageExtensions maps supported media types to archive file extensions.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AddImage registers a page image streamed from srcPath. The cover image
// carries the cover-image property; its ID is positional like any other.
func (p *Package) AddImage(mediaType, srcPath string, cover bool) *Item {
	p.imageIndex++
	id := fmt.Sprintf("i-%04d", p.imageIndex)

	var props string
	if cover {
		props = "cover-image"
	}
	return p.add(&Item{
		ID:         id,
		Href:       fmt.Sprintf("image/%s%s", id, imageExtensions[mediaType]),
		MediaType:  mediaType,
		Properties: props,
		SrcPath:    srcPath,
	})
}

// AddPage registers a wrapper document and appends it to the spine. The cover
// page is centered on its own spread.
func (p *Package) AddPage(data []byte, cover bool) *Item {
	p.pageIndex++
	id := fmt.Sprintf("p-%04d", p.pageIndex)

	item := p.add(&Item{
		ID:         id,
		Href:       fmt.Sprintf("xhtml/%s.xhtml", id),
		MediaType:  "application/xhtml+xml",
		Properties: "svg",
		Data:       data,
	})

	ref := ItemRef{IDRef: id}
	if cover {
		ref.Properties = "rendition:page-spread-center"
	}
	p.spine = append(p.spine, ref)
	return item
}

// AddStyle registers a stylesheet under style/<href>. Linked styles are
// referenced from every wrapper page; unlinked ones only ride along in the
// manifest.
func (p *Package) AddStyle(href string, data []byte, link bool) *Item {
	p.styleIndex++
	item := p.add(&Item{
		ID:        fmt.Sprintf("s-%04d", p.styleIndex),
		Href:      "style/" + href,
		MediaType: "text/css",
		Data:      data,
	})
	if link {
		p.styles = append(p.styles, item)
	}
	return item
}

// AddNav appends a table-of-contents entry pointing at item.
func (p *Package) AddNav(caption string, item *Item) {
	p.nav = append(p.nav, NavEntry{Caption: caption, Href: item.Href})
}

// Styles returns the linked stylesheets in declaration order.
func (p *Package) Styles() []*Item {
	return p.styles
}

// Item returns the manifest item with the given ID.
func (p *Package) Item(id string) (*Item, bool) {
	item, ok := p.byID[id]
	return item, ok
}

var (
	ErrEmptySpine = errors.New("epub: package has no spine entries")
	ErrNoCover    = errors.New("epub: package has no cover image")
)

// Validate checks the assembled package before any archive output: the spine
// must be non-empty, every spine and navigation reference must resolve, and
// exactly one manifest item must be tagged as the cover image.
func (p *Package) Validate() error {
	if len(p.spine) == 0 {
		return ErrEmptySpine
	}
	for _, ref := range p.spine {
		if _, ok := p.byID[ref.IDRef]; !ok {
			return fmt.Errorf("epub: spine references unknown item %q", ref.IDRef)
		}
	}

	hrefs := make(map[string]bool, len(p.items))
	covers := 0
	for _, item := range p.items {
		hrefs[item.Href] = true
		if item.Properties == "cover-image" {
			covers++
		}
	}
	switch {
	case covers == 0:
		return ErrNoCover
	case covers > 1:
		return fmt.Errorf("epub: %d items are tagged cover-image, want exactly one", covers)
	}

	for _, entry := range p.nav {
		if !hrefs[entry.Href] {
			return fmt.Errorf("epub: navigation references unknown document %q", entry.Href)
		}
	}
	return nil
}

// Entries renders the container documents and returns the complete archive
// entry list in write order: mimetype first, then the container descriptor,
// package document, navigation document, and the manifest items.
func (p *Package) Entries() ([]Entry, error) {
	opf, err := p.packageDocument()
	if err != nil {
		return nil, fmt.Errorf("epub: render package document: %w", err)
	}

	entries := []Entry{
		{Path: "mimetype", Data: []byte(MimeType), Store: true},
		{Path: "META-INF/container.xml", Data: []byte(containerXML)},
		{Path: "item/standard.opf", Data: opf},
		{Path: "item/navigation-documents.xhtml", Data: p.navigationDocument()},
	}
	for _, item := range p.items {
		entries = append(entries, Entry{
			Path:    "item/" + item.Href,
			Data:    item.Data,
			SrcPath: item.SrcPath,
		})
	}
	return entries, nil
}
