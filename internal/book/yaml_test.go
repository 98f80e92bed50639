package book

import (
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const minimalDescription = `
metadata:
  title: Example
  language: ja
chapter:
  page: cover.png
`

func decode(t *testing.T, src string) *Book {
	t.Helper()
	var b Book
	if err := yaml.Unmarshal([]byte(src), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &b
}

func decodeErr(t *testing.T, src string) error {
	t.Helper()
	var b Book
	err := yaml.Unmarshal([]byte(src), &b)
	if err == nil {
		t.Fatalf("unmarshal succeeded, want error")
	}
	return err
}

func TestDecodeMinimal(t *testing.T) {
	b := decode(t, minimalDescription)

	want := &Book{
		Metadata: Metadata{
			Titles:   []Title{{Name: "Example", Type: TitleMain}},
			Language: "ja",
		},
		Chapters: []Chapter{{Pages: []Page{{Src: "cover.png"}}}},
	}
	if !reflect.DeepEqual(b, want) {
		t.Errorf("decoded %+v, want %+v", b, want)
	}
}

func TestDecodeShapesAreEquivalent(t *testing.T) {
	// A single entry, a one-element list and the structured form of the same
	// entry must all decode to the same canonical book.
	variants := map[string]string{
		"scalar": `
metadata:
  title: Example
  creator: Author
  language: ja
chapter:
  page: p1.png
`,
		"list": `
metadata:
  title:
    - Example
  creator:
    - Author
  language: ja
chapter:
  - page:
      - p1.png
`,
		"structured": `
metadata:
  title:
    name: Example
  creator:
    name: Author
  language: ja
chapter:
  page: p1.png
`,
	}

	want := decode(t, variants["scalar"])
	for name, src := range variants {
		if got := decode(t, src); !reflect.DeepEqual(got, want) {
			t.Errorf("%s form decoded %+v, want %+v", name, got, want)
		}
	}
}

func TestDecodeStructuredMetadata(t *testing.T) {
	b := decode(t, `
metadata:
  title:
    - name: 吾輩は猫である
      alternateScript: I Am a Cat
      fileAs: わがはいはねこである
    - name: 上
      type: edition
  creator:
    - name: 夏目漱石
      role: aut
      fileAs: なつめそうせき
  contributor:
    name: 装丁 太郎
    role: ill
  collection:
    name: 猫文学全集
    type: series
    position: 2
  language: ja
  identifier: urn:isbn:9784000000000
chapter:
  - name: 表紙
    page: cover.jpg
    cover: true
  - name: 本編
    page:
      - p1.jpg
      - p2.jpg
`)

	md := b.Metadata
	if len(md.Titles) != 2 || md.Titles[1].Type != TitleEdition {
		t.Errorf("titles = %+v", md.Titles)
	}
	if md.Titles[0].AlternateScript != "I Am a Cat" || md.Titles[0].FileAs != "わがはいはねこである" {
		t.Errorf("title refinements = %+v", md.Titles[0])
	}
	if len(md.Creators) != 1 || md.Creators[0].Role != "aut" {
		t.Errorf("creators = %+v", md.Creators)
	}
	if len(md.Contributors) != 1 || md.Contributors[0].Role != "ill" {
		t.Errorf("contributors = %+v", md.Contributors)
	}
	if len(md.Collections) != 1 || md.Collections[0].Type != CollectionSeries {
		t.Errorf("collections = %+v", md.Collections)
	}
	if md.Collections[0].Position == nil || *md.Collections[0].Position != 2 {
		t.Errorf("collection position = %v", md.Collections[0].Position)
	}
	if md.Identifier != "urn:isbn:9784000000000" {
		t.Errorf("identifier = %q", md.Identifier)
	}

	if len(b.Chapters) != 2 {
		t.Fatalf("chapters = %+v", b.Chapters)
	}
	if !b.Chapters[0].Cover || b.Chapters[0].Name != "表紙" {
		t.Errorf("cover chapter = %+v", b.Chapters[0])
	}
	if got := len(b.Chapters[1].Pages); got != 2 {
		t.Errorf("second chapter has %d pages, want 2", got)
	}
}

func TestDecodeRendition(t *testing.T) {
	b := decode(t, `
metadata:
  title: Example
  language: ja
rendition:
  direction: ltr
  layout: reflowable
  orientation: portrait
  spread: none
  style:
    link: true
    href: extra.css
    src: styles/extra.css
chapter:
  page: p1.png
`)

	r := b.Rendition
	if r.Direction != DirectionLTR || r.Layout != LayoutReflowable ||
		r.Orientation != OrientationPortrait || r.Spread != SpreadNone {
		t.Errorf("rendition = %+v", r)
	}
	if len(r.Styles) != 1 || !r.Styles[0].Link || r.Styles[0].Href != "extra.css" {
		t.Errorf("styles = %+v", r.Styles)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown top-level field",
			src:  "metadata:\n  title: T\n  language: ja\nchapter:\n  page: p.png\nauthor: X\n",
			want: `unknown field "author"`,
		},
		{
			name: "unknown metadata field",
			src:  "metadata:\n  title: T\n  language: ja\n  publisher: X\nchapter:\n  page: p.png\n",
			want: `unknown field "publisher"`,
		},
		{
			name: "missing metadata",
			src:  "chapter:\n  page: p.png\n",
			want: `missing required field "metadata"`,
		},
		{
			name: "missing chapter",
			src:  "metadata:\n  title: T\n  language: ja\n",
			want: `missing required field "chapter"`,
		},
		{
			name: "missing title",
			src:  "metadata:\n  language: ja\nchapter:\n  page: p.png\n",
			want: `missing required field "title"`,
		},
		{
			name: "missing language",
			src:  "metadata:\n  title: T\nchapter:\n  page: p.png\n",
			want: `missing required field "language"`,
		},
		{
			name: "empty language",
			src:  "metadata:\n  title: T\n  language: \"\"\nchapter:\n  page: p.png\n",
			want: `"language" must not be empty`,
		},
		{
			name: "chapter without pages",
			src:  "metadata:\n  title: T\n  language: ja\nchapter:\n  name: Intro\n",
			want: `missing required field "page"`,
		},
		{
			name: "style without src",
			src:  "metadata:\n  title: T\n  language: ja\nrendition:\n  style:\n    href: a.css\nchapter:\n  page: p.png\n",
			want: `missing required field "src"`,
		},
		{
			name: "collection without type",
			src:  "metadata:\n  title: T\n  language: ja\n  collection:\n    name: S\nchapter:\n  page: p.png\n",
			want: `missing required field "type"`,
		},
		{
			name: "bad title type",
			src:  "metadata:\n  title:\n    name: T\n    type: primary\n  language: ja\nchapter:\n  page: p.png\n",
			want: `unknown title type "primary"`,
		},
		{
			name: "bad direction",
			src:  "metadata:\n  title: T\n  language: ja\nrendition:\n  direction: down\nchapter:\n  page: p.png\n",
			want: `unknown direction "down"`,
		},
		{
			name: "negative collection position",
			src:  "metadata:\n  title: T\n  language: ja\n  collection:\n    name: S\n    type: series\n    position: -1\nchapter:\n  page: p.png\n",
			want: `"position" must be a non-negative integer`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeErr(t, tt.src)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestDecodeErrorsCarryLineNumbers(t *testing.T) {
	err := decodeErr(t, "metadata:\n  title: T\n  language: ja\n  publisher: X\nchapter:\n  page: p.png\n")
	if !strings.Contains(err.Error(), "line 4") {
		t.Errorf("error %q does not name line 4", err)
	}
}

func TestMarshalCollapses(t *testing.T) {
	b := decode(t, minimalDescription)

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}

	want := "metadata:\n  title: Example\n  language: ja\nchapter:\n  page: cover.png\n"
	if sb.String() != want {
		t.Errorf("marshalled:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestMarshalOmitsDefaults(t *testing.T) {
	b := decode(t, minimalDescription)
	if err := b.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	out, err := yaml.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	for _, field := range []string{"rendition", "type: main", "cover: true"} {
		if strings.Contains(s, field) {
			t.Errorf("marshalled output contains default %q:\n%s", field, s)
		}
	}
	// The synthesized identifier must survive a round trip.
	if !strings.Contains(s, b.Metadata.Identifier) {
		t.Errorf("marshalled output lost identifier %q:\n%s", b.Metadata.Identifier, s)
	}
}

func TestRoundTrip(t *testing.T) {
	src := `
metadata:
  title:
    - name: 吾輩は猫である
      fileAs: わがはいはねこである
    - name: 上
      type: edition
  creator:
    name: 夏目漱石
    role: aut
  collection:
    name: 猫文学全集
    type: series
    position: 2
  language: ja
  identifier: urn:isbn:9784000000000
rendition:
  orientation: portrait
  style:
    href: extra.css
    src: styles/extra.css
chapter:
  - name: 表紙
    page: cover.jpg
    cover: true
  - page:
      - p1.jpg
      - p2.jpg
`
	first := decode(t, src)

	out, err := yaml.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second := decode(t, string(out))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip changed the book:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
