package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container" version="1.0">
  <rootfiles>
    <rootfile full-path="item/standard.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// Entry is one archive member. Data is written when present, otherwise the
// file at SrcPath is streamed. Store marks the entry as uncompressed; it is
// only used for the mimetype entry, which must sit first in the archive at a
// fixed byte offset so readers can sniff the container type.
type Entry struct {
	Path    string
	Data    []byte
	SrcPath string
	Store   bool
}

// WriteArchive writes entries, in order, to a ZIP archive at dest. The write
// is atomic: the archive is assembled in a temp file next to dest and renamed
// into place only on success. All deflated entries share the given modified
// time, keeping the output byte-identical across rebuilds of unchanged input.
func WriteArchive(dest string, entries []Entry, modified time.Time) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".orihon-*")
	if err != nil {
		return fmt.Errorf("epub: create temp archive: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, entry := range entries {
		if err = writeEntry(zw, entry, modified); err != nil {
			return fmt.Errorf("epub: write %s: %w", entry.Path, err)
		}
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("epub: finalize archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("epub: close temp archive: %w", err)
	}

	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("epub: move archive into place: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, entry Entry, modified time.Time) error {
	header := &zip.FileHeader{Name: entry.Path, Method: zip.Deflate, Modified: modified}
	if entry.Store {
		// A zero header keeps stored entries free of extra fields, so the
		// content starts right after the fixed-size local header.
		header = &zip.FileHeader{Name: entry.Path, Method: zip.Store}
	}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	if entry.Data != nil {
		_, err = w.Write(entry.Data)
		return err
	}

	src, err := os.Open(entry.SrcPath)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(w, src)
	return err
}
