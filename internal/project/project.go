// Package project handles the book description file on disk: locating it by
// upward search, loading and normalizing it, writing it back, and scaffolding
// a fresh one.
package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orihon/orihon/internal/book"
)

// FileName is the description file every project is rooted at.
const FileName = "orihon.yaml"

// Find walks from start up to the filesystem root looking for the description
// file and returns its path.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("project: resolve %s: %w", start, err)
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("project: could not find %s in %s or any parent directory", FileName, start)
		}
		dir = parent
	}
}

// Load reads and normalizes the description at path.
func Load(path string) (*book.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read description: %w", err)
	}

	var b book.Book
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("project: parse %s: %w", path, err)
	}
	if err := b.Normalize(); err != nil {
		return nil, fmt.Errorf("project: %s: %w", path, err)
	}
	return &b, nil
}

// Save writes the description to path in its collapsed form.
func Save(path string, b *book.Book) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("project: encode description: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("project: encode description: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("project: write description: %w", err)
	}
	return nil
}

// ScaffoldOptions parameterize a fresh description.
type ScaffoldOptions struct {
	Title      string
	Author     string
	Identifier string

	// Files become the initial pages: the first one a cover chapter, the
	// rest a content chapter.
	Files []string
}

// Scaffold builds the initial description for a new project. An empty title
// falls back to the working directory name, the language comes from $LANG,
// and a missing identifier is synthesized.
func Scaffold(opts ScaffoldOptions) *book.Book {
	title := opts.Title
	if title == "" {
		if wd, err := os.Getwd(); err == nil {
			title = filepath.Base(wd)
		}
	}

	md := book.Metadata{
		Titles:     []book.Title{{Name: title, Type: book.TitleMain}},
		Language:   language(),
		Identifier: opts.Identifier,
	}
	if md.Identifier == "" {
		md.Identifier = book.NewIdentifier()
	}
	if opts.Author != "" {
		md.Creators = []book.Creator{{Name: opts.Author, Role: "aut"}}
	}

	return &book.Book{
		Metadata:  md,
		Rendition: book.Rendition{Orientation: book.OrientationPortrait},
		Chapters:  chapters(opts.Title, opts.Files),
	}
}

// chapters splits the scaffold files into a one-page cover chapter and a
// content chapter. The content chapter is named only when a title was given
// explicitly, and is emitted even when empty so the user has a slot to fill.
func chapters(title string, files []string) []book.Chapter {
	var out []book.Chapter

	pages := make([]book.Page, 0, len(files))
	for _, f := range files {
		pages = append(pages, book.Page{Src: filepath.ToSlash(f)})
	}

	if len(pages) > 0 {
		out = append(out, book.Chapter{Name: "表紙", Pages: pages[:1], Cover: true})
		pages = pages[1:]
	}
	return append(out, book.Chapter{Name: title, Pages: pages})
}

// language derives the default description language from $LANG, keeping only
// the language part of a locale like ja_JP.UTF-8.
func language() string {
	lang, _, _ := strings.Cut(os.Getenv("LANG"), "_")
	if lang == "" {
		return "ja"
	}
	return lang
}
