package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/mcodersir/axkhan/internal/models"
)

// Quality is the JPEG quality used when re-encoding lossy output (0.8).
const Quality = 80

// DefaultMimeType is used when the original format has no encoder.
const DefaultMimeType = "image/jpeg"

// Normalize bounds an image to maxDimension on its larger side.
//
// Images already within bounds are returned unchanged, byte for byte.
// Larger images are resized with their aspect ratio preserved and
// re-encoded in their original format when an encoder exists for it,
// otherwise as JPEG. Any decode or encode failure returns the original
// payload: normalization never fails the caller.
func Normalize(p models.ImagePayload, maxDimension int) models.ImagePayload {
	if maxDimension <= 0 {
		return p
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(p.Bytes))
	if err != nil {
		slog.Debug("Skipping normalization, unreadable image", "mime_type", p.MimeType, "err", err)
		return p
	}
	if cfg.Width <= maxDimension && cfg.Height <= maxDimension {
		return p
	}

	out, err := resize(p, format, maxDimension)
	if err != nil {
		slog.Warn("Normalization failed, using original image", "mime_type", p.MimeType, "err", err)
		return p
	}

	slog.Debug("Normalized image",
		"from", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"to", fmt.Sprintf("%dx%d", out.Width, out.Height),
		"bytes_before", p.Size(),
		"bytes_after", out.Size(),
		"mime_type", out.MimeType)
	return out
}

// ScaledSize returns the dimensions of a w x h image scaled so its larger
// side equals maxDimension
func ScaledSize(w, h, maxDimension int) (int, int) {
	if w >= h {
		nh := int(math.Round(float64(h) * float64(maxDimension) / float64(w)))
		return maxDimension, max(nh, 1)
	}
	nw := int(math.Round(float64(w) * float64(maxDimension) / float64(h)))
	return max(nw, 1), maxDimension
}

func resize(p models.ImagePayload, format string, maxDimension int) (models.ImagePayload, error) {
	src, _, err := image.Decode(bytes.NewReader(p.Bytes))
	if err != nil {
		return p, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), maxDimension)
	dst := imaging.Resize(src, w, h, imaging.Lanczos)

	mimeType := outputMimeType(p.MimeType, format)

	var buf bytes.Buffer
	switch mimeType {
	case "image/png":
		err = png.Encode(&buf, dst)
	case "image/gif":
		err = gif.Encode(&buf, dst, nil)
	case "image/bmp":
		err = bmp.Encode(&buf, dst)
	case "image/tiff":
		err = tiff.Encode(&buf, dst, &tiff.Options{Compression: tiff.Deflate})
	default:
		// JPEG has no alpha; flatten onto white so transparent text stays legible
		flat := imaging.New(w, h, color.White)
		flat = imaging.Overlay(flat, dst, image.Pt(0, 0), 1.0)
		err = jpeg.Encode(&buf, flat, &jpeg.Options{Quality: Quality})
	}
	if err != nil {
		return p, fmt.Errorf("failed to encode %s: %w", mimeType, err)
	}

	return models.ImagePayload{
		Bytes:    buf.Bytes(),
		MimeType: mimeType,
		Width:    w,
		Height:   h,
	}, nil
}

// outputMimeType prefers the declared mime type, then the decoded format
func outputMimeType(declared, format string) string {
	if m, ok := encodable[declared]; ok {
		return m
	}
	if m, ok := encodable["image/"+format]; ok {
		return m
	}
	return DefaultMimeType
}

var encodable = map[string]string{
	"image/jpeg":     "image/jpeg",
	"image/jpg":      "image/jpeg",
	"image/pjpeg":    "image/jpeg",
	"image/png":      "image/png",
	"image/gif":      "image/gif",
	"image/bmp":      "image/bmp",
	"image/x-ms-bmp": "image/bmp",
	"image/tiff":     "image/tiff",
}
