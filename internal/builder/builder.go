// Package builder turns a normalized book description into a validated EPUB
// package: it probes the page images, generates the wrapper documents, and
// assembles the manifest, spine and navigation.
package builder

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/orihon/orihon/internal/book"
	"github.com/orihon/orihon/internal/epub"
)

//go:embed default.css
var defaultCSS []byte

// Builder builds EPUB packages from a book description rooted at a project
// directory. Page paths in the description are resolved against Root.
type Builder struct {
	Root string
	Book *book.Book

	// DescriptionPath, when set, contributes its mtime to the package
	// modification time alongside the page images.
	DescriptionPath string

	Logger *log.Logger
}

// New returns a Builder for a normalized book.
func New(root string, b *book.Book, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{Root: root, Book: b, Logger: logger}
}

// pageRef is one flattened page: its declared source, resolved path, and
// whether it is the cover.
type pageRef struct {
	decl  string
	path  string
	cover bool
}

// Build assembles and validates the package. No output is written; the
// returned package renders its own archive entries.
func (bl *Builder) Build() (*epub.Package, error) {
	b := bl.Book

	coverChapter, err := b.CoverChapter()
	if err != nil {
		return nil, err
	}
	if coverChapter < 0 {
		// No explicit flag: the first page of the first chapter is the cover.
		coverChapter = 0
	}

	var pages []pageRef
	for ci, ch := range b.Chapters {
		if len(ch.Pages) == 0 {
			return nil, fmt.Errorf("builder: chapter %d has no pages", ci+1)
		}
		for pi, pg := range ch.Pages {
			pages = append(pages, pageRef{
				decl:  pg.Src,
				path:  filepath.Join(bl.Root, filepath.FromSlash(pg.Src)),
				cover: ci == coverChapter && pi == 0,
			})
		}
	}

	infos, err := bl.probeAll(pages)
	if err != nil {
		return nil, err
	}
	bl.warnOrientation(pages, infos)

	modified, err := bl.modifiedTime(pages)
	if err != nil {
		return nil, err
	}

	pkg := epub.NewPackage(b, modified)

	if len(b.Rendition.Styles) == 0 {
		bl.Logger.Debug("no styles declared, attaching default stylesheet")
		pkg.AddStyle("default.css", defaultCSS, true)
	} else {
		for _, s := range b.Rendition.Styles {
			pkg.AddStyle(s.Href, []byte(s.Src), s.Link)
		}
	}

	idx := 0
	for _, ch := range b.Chapters {
		name := ch.Name
		if name == "" {
			name = "(untitled)"
		}
		bl.Logger.Info("building chapter", "name", name, "pages", len(ch.Pages))

		for pi := range ch.Pages {
			pg, info := pages[idx], infos[idx]
			idx++

			bl.Logger.Debug("building page", "src", pg.decl, "width", info.Width, "height", info.Height)

			img := pkg.AddImage(info.MediaType, pg.path, pg.cover)
			page := pkg.AddPage(pkg.WrapperPage(info.Width, info.Height, img, pg.cover), pg.cover)
			if pi == 0 && ch.Name != "" {
				pkg.AddNav(ch.Name, page)
			}
		}
	}

	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// probeAll probes every page concurrently. Results land in declaration order
// regardless of completion order.
func (bl *Builder) probeAll(pages []pageRef) ([]ImageInfo, error) {
	infos := make([]ImageInfo, len(pages))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, pg := range pages {
		i, pg := i, pg
		g.Go(func() error {
			info, err := ProbeImage(pg.path)
			if err != nil {
				return err
			}
			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// warnOrientation flags pages whose aspect contradicts the declared
// orientation. Never fatal.
func (bl *Builder) warnOrientation(pages []pageRef, infos []ImageInfo) {
	for i, info := range infos {
		switch bl.Book.Rendition.Orientation {
		case book.OrientationLandscape:
			if info.Width < info.Height {
				bl.Logger.Warn("portrait page in a landscape book", "src", pages[i].decl)
			}
		case book.OrientationPortrait:
			if info.Height < info.Width {
				bl.Logger.Warn("landscape page in a portrait book", "src", pages[i].decl)
			}
		}
	}
}

// modifiedTime returns the newest mtime among the description file and the
// page images. Rebuilding from unchanged input then stamps the archive with
// the same time, keeping the output byte-identical.
func (bl *Builder) modifiedTime(pages []pageRef) (time.Time, error) {
	var newest time.Time

	paths := make([]string, 0, len(pages)+1)
	if bl.DescriptionPath != "" {
		paths = append(paths, bl.DescriptionPath)
	}
	for _, pg := range pages {
		paths = append(paths, pg.path)
	}

	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return time.Time{}, fmt.Errorf("builder: stat %s: %w", path, err)
		}
		if mt := fi.ModTime(); mt.After(newest) {
			newest = mt
		}
	}
	return newest.UTC().Truncate(time.Second), nil
}
