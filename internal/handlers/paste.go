package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mcodersir/axkhan/internal/acquire"
)

// HandlePaste is the clipboard channel. The body is either the raw image
// with its content type, or JSON carrying a data URI, bare base64 or an
// image URL.
func (h *Handler) HandlePaste(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleJSONPaste(w, r)
		return
	}

	payload, err := acquire.FromReader(r.Body, "", contentType, h.maxUploadBytes)
	if err != nil {
		h.readError(w, err)
		return
	}
	h.submit(r.Context(), w, payload, acquire.SourceClipboard)
}

func (h *Handler) handleJSONPaste(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Data     string `json:"data"`
		MimeType string `json:"mime_type"`
	}

	// base64 inflates by a third
	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes*4/3+1<<10)
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	payload, err := acquire.DecodePaste(r.Context(), request.Data, request.MimeType, h.fetcher, h.maxUploadBytes)
	if err != nil {
		h.readError(w, err)
		return
	}
	h.submit(r.Context(), w, payload, acquire.SourceClipboard)
}
