package imaging

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/mcodersir/axkhan/internal/models"
)

// IsImage reports whether mimeType names an image type
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// DetectMimeType resolves a payload's mime type. A declared type wins
// unless it is empty or a generic binary type, then the content is
// sniffed, then the file extension is consulted.
func DetectMimeType(data []byte, filename, declared string) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	if len(data) > 0 {
		if sniffed := http.DetectContentType(data); sniffed != "application/octet-stream" {
			if i := strings.Index(sniffed, ";"); i >= 0 {
				sniffed = sniffed[:i]
			}
			return sniffed
		}
	}

	if ext := filepath.Ext(filename); ext != "" {
		if byExt := mime.TypeByExtension(strings.ToLower(ext)); byExt != "" {
			return strings.TrimSpace(strings.SplitN(byExt, ";", 2)[0])
		}
	}
	return "application/octet-stream"
}

// Probe builds a payload and fills in its dimensions. Unreadable images
// keep zero dimensions; the bytes are never altered.
func Probe(data []byte, mimeType string) models.ImagePayload {
	p := models.ImagePayload{Bytes: data, MimeType: mimeType}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		p.Width = cfg.Width
		p.Height = cfg.Height
	}
	return p
}
