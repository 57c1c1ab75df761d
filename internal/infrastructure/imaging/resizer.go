package imaging

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

const (
	DefaultMaxWidth = 600
	// DefaultMaxPixels caps width*height before any pixel data is decoded.
	DefaultMaxPixels   = 40_000_000
	defaultJPEGQuality = 85
)

// Resizer scales images down to MaxWidth, keeping the aspect ratio and the
// source format. Images already narrow enough are returned untouched once
// they decode cleanly.
type Resizer struct {
	MaxWidth    int
	MaxPixels   int64
	JPEGQuality int
}

func NewResizer(maxWidth int, maxPixels int64) *Resizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Resizer{MaxWidth: maxWidth, MaxPixels: maxPixels, JPEGQuality: defaultJPEGQuality}
}

// Transform decodes src, resizes it and re-encodes it in the same format. For
// JPEG the EXIF and ICC segments of the source are carried over.
func (r *Resizer) Transform(src []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > r.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", domain.ErrImageDecode, cfg.Width, cfg.Height, r.MaxPixels)
	}

	outFormat, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrImageDecode, format)
	}

	// A valid header says nothing about the pixel data behind it.
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}
	if cfg.Width <= r.MaxWidth {
		return src, nil
	}

	resized := imaging.Resize(img, r.MaxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, outFormat, imaging.JPEGQuality(r.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	if outFormat == imaging.JPEG {
		return spliceJPEGMetadata(src, buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

const (
	markerSOI  = 0xD8
	markerSOS  = 0xDA
	markerAPP1 = 0xE1 // EXIF, XMP
	markerAPP2 = 0xE2 // ICC profile
)

// jpegMetadata returns the raw APP1 and APP2 segments of a JPEG stream, in
// order, stopping at the first scan.
func jpegMetadata(src []byte) []byte {
	if len(src) < 4 || src[0] != 0xFF || src[1] != markerSOI {
		return nil
	}

	var meta []byte
	i := 2
	for i+4 <= len(src) {
		if src[i] != 0xFF {
			return meta
		}
		marker := src[i+1]
		if marker == 0xFF {
			i++
			continue
		}
		if marker == markerSOS {
			return meta
		}
		size := int(binary.BigEndian.Uint16(src[i+2 : i+4]))
		end := i + 2 + size
		if size < 2 || end > len(src) {
			return meta
		}
		if marker == markerAPP1 || marker == markerAPP2 {
			meta = append(meta, src[i:end]...)
		}
		i = end
	}
	return meta
}

// spliceJPEGMetadata inserts the metadata segments of src right after the SOI
// marker of encoded.
func spliceJPEGMetadata(src, encoded []byte) []byte {
	meta := jpegMetadata(src)
	if len(meta) == 0 || len(encoded) < 2 {
		return encoded
	}

	out := make([]byte, 0, len(encoded)+len(meta))
	out = append(out, encoded[:2]...)
	out = append(out, meta...)
	return append(out, encoded[2:]...)
}
