package builder

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageInfo is the probed identity of a page image.
type ImageInfo struct {
	MediaType string
	Width     int
	Height    int
}

// formatMediaTypes maps registered image.DecodeConfig format names to the
// media types the container may carry. Formats outside this set are rejected
// even when a decoder for them happens to be linked in.
var formatMediaTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ProbeImage determines media type and pixel dimensions from the file
// content. The file extension is never consulted.
func ProbeImage(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("builder: open page image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("builder: probe %s: %w", path, err)
	}
	mediaType, ok := formatMediaTypes[format]
	if !ok {
		return ImageInfo{}, fmt.Errorf("builder: %s: unsupported image format %q", path, format)
	}
	return ImageInfo{MediaType: mediaType, Width: cfg.Width, Height: cfg.Height}, nil
}
