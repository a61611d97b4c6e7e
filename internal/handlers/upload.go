package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mcodersir/axkhan/internal/acquire"
	"github.com/mcodersir/axkhan/internal/imaging"
)

// HandleUpload is the file-picker channel
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Check if this is a JSON request with image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	// Handle file upload
	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}
	if h.fetcher == nil {
		h.writeError(w, "Image URLs are not enabled", http.StatusBadRequest)
		return
	}

	data, declared, err := h.fetcher.Fetch(r.Context(), request.ImageURL)
	if err != nil {
		h.readError(w, err)
		return
	}

	payload := imaging.Probe(data, imaging.DetectMimeType(data, request.ImageURL, declared))
	h.submit(r.Context(), w, payload, acquire.SourceFilePicker)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}

	_, header, err := r.FormFile("files")
	if err != nil {
		_, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	payload, err := acquire.FromMultipart(header, h.maxUploadBytes)
	if err != nil {
		h.readError(w, err)
		return
	}

	h.submit(r.Context(), w, payload, acquire.SourceFilePicker)
}
