package handlers

import (
	"log/slog"
	"net/http"
)

// Routes registers every endpoint. Submission endpoints are rate limited
// per client.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload", h.limiter.Limit(h.HandleUpload))
	mux.HandleFunc("/api/paste", h.limiter.Limit(h.HandlePaste))
	mux.HandleFunc("/api/state", h.HandleState)
	mux.HandleFunc("/api/preview", h.HandlePreview)
	mux.HandleFunc("/api/result", h.HandleResult)
	mux.HandleFunc("/api/instructions", h.HandleInstructions)
	mux.HandleFunc("/api/viewer", h.HandleViewer)
	mux.HandleFunc("/api/settings", h.HandleSettings)
	mux.HandleFunc("/api/usage", h.HandleUsage)
	mux.HandleFunc("/api/notifications", h.HandleNotifications)
	mux.HandleFunc("/api/export", h.HandleExport)
	mux.HandleFunc("/", h.HandleStatic)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}
