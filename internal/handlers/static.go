package handlers

import (
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// KeyParam is the load-time query parameter that supplies an API key
const KeyParam = "key"

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	// Check if an API key parameter is provided
	if r.URL.Query().Has(KeyParam) {
		h.adoptKey(w, r)
		return
	}

	filepath := strings.TrimPrefix(r.URL.Path, "/static/")
	filepath = strings.TrimPrefix(filepath, "/")
	if filepath == "" {
		filepath = "index.html"
	}

	// Prevent directory traversal attacks
	if strings.Contains(filepath, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	// Set appropriate content type based on file extension
	switch {
	case strings.HasSuffix(filepath, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(filepath, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(filepath, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	// Serve files from the static directory
	http.ServeFile(w, r, path.Join(h.staticDir, filepath))
}

// adoptKey persists the key from the query string and redirects to the
// same address without it, so the key does not linger in the address bar
func (h *Handler) adoptKey(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if key := strings.TrimSpace(query.Get(KeyParam)); key != "" {
		if err := h.settings.SetAPIKey(key); err != nil {
			slog.Warn("Unable to persist API key from query", "err", err)
		} else {
			slog.Info("Adopted API key from query parameter")
		}
	}
	query.Del(KeyParam)

	target := *r.URL
	target.RawQuery = query.Encode()
	target.Scheme = ""
	target.Host = ""
	http.Redirect(w, r, target.RequestURI(), http.StatusFound)
}
