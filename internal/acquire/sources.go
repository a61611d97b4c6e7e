package acquire

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"

	"github.com/mcodersir/axkhan/internal/images"
	"github.com/mcodersir/axkhan/internal/imaging"
	"github.com/mcodersir/axkhan/internal/models"
	"github.com/mcodersir/axkhan/internal/ocr"
)

// FromReader reads an image from r. name and declared help resolve the
// mime type when the content cannot be sniffed.
func FromReader(r io.Reader, name, declared string, maxBytes int64) (models.ImagePayload, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return models.ImagePayload{}, images.ErrTooLarge
	}
	if len(data) == 0 {
		return models.ImagePayload{}, fmt.Errorf("empty image")
	}
	return imaging.Probe(data, imaging.DetectMimeType(data, name, declared)), nil
}

// FromFile reads the image at path
func FromFile(path string, maxBytes int64) (models.ImagePayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return FromReader(f, path, "", maxBytes)
}

// FromMultipart reads an uploaded form file
func FromMultipart(fh *multipart.FileHeader, maxBytes int64) (models.ImagePayload, error) {
	f, err := fh.Open()
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()
	return FromReader(f, fh.Filename, fh.Header.Get("Content-Type"), maxBytes)
}

// DecodePaste turns pasted clipboard data into an image. data may be a
// data URI, a bare base64 body, or an http(s) URL that fetcher downloads.
func DecodePaste(ctx context.Context, data, mimeType string, fetcher *images.Fetcher, maxBytes int64) (models.ImagePayload, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return models.ImagePayload{}, fmt.Errorf("nothing was pasted")
	}

	if images.IsURL(data) {
		if fetcher == nil {
			return models.ImagePayload{}, fmt.Errorf("pasting image urls is not enabled")
		}
		body, contentType, err := fetcher.Fetch(ctx, data)
		if err != nil {
			return models.ImagePayload{}, err
		}
		if mimeType == "" {
			mimeType = contentType
		}
		return imaging.Probe(body, imaging.DetectMimeType(body, data, mimeType)), nil
	}

	body := data
	if uriMime, b64, ok := ocr.SplitDataURI(data); ok {
		body = b64
		if mimeType == "" {
			mimeType = uriMime
		}
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to decode pasted image: %w", err)
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return models.ImagePayload{}, images.ErrTooLarge
	}
	return imaging.Probe(raw, imaging.DetectMimeType(raw, "", mimeType)), nil
}
