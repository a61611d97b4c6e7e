package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/mcodersir/axkhan/internal/models"
)

// encodeTestImage renders a two-tone image in the given format
func encodeTestImage(t *testing.T, width, height int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	default:
		t.Fatalf("unsupported test format %s", format)
	}
	if err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	return cfg.Width, cfg.Height, format
}

func TestNormalizeWithinBoundsIsIdentical(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		max    int
	}{
		{name: "smaller", width: 300, height: 200, max: 1000},
		{name: "exactly max width", width: 1000, height: 400, max: 1000},
		{name: "exactly max both", width: 1000, height: 1000, max: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeTestImage(t, tt.width, tt.height, "png")
			in := models.ImagePayload{Bytes: data, MimeType: "image/png", Width: tt.width, Height: tt.height}

			out := Normalize(in, tt.max)
			if !bytes.Equal(out.Bytes, in.Bytes) {
				t.Error("Expected byte-identical output")
			}
			if out.MimeType != in.MimeType || out.Width != in.Width || out.Height != in.Height {
				t.Errorf("Expected payload unchanged, got %+v", out)
			}
		})
	}
}

func TestNormalizeDownscales(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		height    int
		format    string
		mimeType  string
		expectW   int
		expectH   int
		expectFmt string
	}{
		{name: "wide png", width: 2000, height: 500, format: "png", mimeType: "image/png", expectW: 1000, expectH: 250, expectFmt: "png"},
		{name: "tall jpeg", width: 600, height: 1800, format: "jpeg", mimeType: "image/jpeg", expectW: 333, expectH: 1000, expectFmt: "jpeg"},
		{name: "odd ratio", width: 1234, height: 1100, format: "png", mimeType: "image/png", expectW: 1000, expectH: 891, expectFmt: "png"},
		{name: "unknown mime falls back to decoded format", width: 1500, height: 1500, format: "png", mimeType: "", expectW: 1000, expectH: 1000, expectFmt: "png"},
		{name: "webp has no encoder so jpeg", width: 1600, height: 800, format: "png", mimeType: "image/webp", expectW: 1000, expectH: 500, expectFmt: "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := models.ImagePayload{
				Bytes:    encodeTestImage(t, tt.width, tt.height, tt.format),
				MimeType: tt.mimeType,
				Width:    tt.width,
				Height:   tt.height,
			}

			out := Normalize(in, 1000)

			w, h, format := decodeSize(t, out.Bytes)
			if w != tt.expectW || h != tt.expectH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.expectW, tt.expectH, w, h)
			}
			if out.Width != w || out.Height != h {
				t.Errorf("Payload dimensions %dx%d do not match encoded %dx%d", out.Width, out.Height, w, h)
			}
			if max(w, h) != 1000 {
				t.Errorf("Expected larger side 1000, got %d", max(w, h))
			}
			inRatio := float64(tt.width) / float64(tt.height)
			outRatio := float64(w) / float64(h)
			if math.Abs(inRatio-outRatio)/inRatio > 0.01 {
				t.Errorf("Aspect ratio drifted: %f -> %f", inRatio, outRatio)
			}
			if format != tt.expectFmt {
				t.Errorf("Expected format %s, got %s", tt.expectFmt, format)
			}
			if out.MimeType != "image/"+tt.expectFmt {
				t.Errorf("Expected mime image/%s, got %s", tt.expectFmt, out.MimeType)
			}
		})
	}
}

func TestNormalizeFallsBackOnGarbage(t *testing.T) {
	in := models.ImagePayload{Bytes: []byte("definitely not an image"), MimeType: "image/png"}

	out := Normalize(in, 10)
	if !bytes.Equal(out.Bytes, in.Bytes) || out.MimeType != in.MimeType {
		t.Error("Expected original payload back for undecodable input")
	}
}

func TestNormalizeDisabled(t *testing.T) {
	in := models.ImagePayload{Bytes: encodeTestImage(t, 50, 20, "png"), MimeType: "image/png"}
	out := Normalize(in, 0)
	if !bytes.Equal(out.Bytes, in.Bytes) {
		t.Error("Expected no-op when max dimension is zero")
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h, max int
		eW, eH    int
	}{
		{w: 2000, h: 500, max: 1000, eW: 1000, eH: 250},
		{w: 500, h: 2000, max: 1000, eW: 250, eH: 1000},
		{w: 10000, h: 1, max: 1000, eW: 1000, eH: 1},
		{w: 3000, h: 3000, max: 1000, eW: 1000, eH: 1000},
	}

	for _, tt := range tests {
		w, h := ScaledSize(tt.w, tt.h, tt.max)
		if w != tt.eW || h != tt.eH {
			t.Errorf("ScaledSize(%d, %d, %d) = %dx%d, expected %dx%d", tt.w, tt.h, tt.max, w, h, tt.eW, tt.eH)
		}
	}
}
