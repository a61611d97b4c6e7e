package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcodersir/axkhan/internal/acquire"
	"github.com/mcodersir/axkhan/internal/images"
	"github.com/mcodersir/axkhan/internal/models"
	"github.com/mcodersir/axkhan/internal/notify"
	"github.com/mcodersir/axkhan/internal/quota"
	"github.com/mcodersir/axkhan/internal/settings"
)

type Handler struct {
	coord    *acquire.Coordinator
	settings *settings.Manager
	quota    *quota.Tracker
	feed     *notify.Feed
	fetcher  *images.Fetcher
	limiter  *RateLimiter

	envKeySet      bool
	model          string
	maxUploadBytes int64
	staticDir      string
}

// Deps are the collaborators a Handler serves
type Deps struct {
	Coordinator    *acquire.Coordinator
	Settings       *settings.Manager
	Quota          *quota.Tracker
	Feed           *notify.Feed
	Fetcher        *images.Fetcher
	Limiter        *RateLimiter
	EnvKeySet      bool
	Model          string
	MaxUploadBytes int64
	StaticDir      string
}

func New(d Deps) *Handler {
	if d.StaticDir == "" {
		d.StaticDir = "static"
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		coord:          d.Coordinator,
		settings:       d.Settings,
		quota:          d.Quota,
		feed:           d.Feed,
		fetcher:        d.Fetcher,
		limiter:        d.Limiter,
		envKeySet:      d.EnvKeySet,
		model:          d.Model,
		maxUploadBytes: d.MaxUploadBytes,
		staticDir:      d.StaticDir,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Submission helpers
func (h *Handler) submit(ctx context.Context, w http.ResponseWriter, payload models.ImagePayload, source acquire.Source) {
	run, err := h.coord.Submit(ctx, payload, source)
	switch {
	case errors.Is(err, acquire.ErrNotImage):
		h.writeError(w, acquire.MsgNotImage, http.StatusUnsupportedMediaType)
		return
	case errors.Is(err, acquire.ErrBusy):
		h.writeError(w, acquire.MsgBusy, http.StatusConflict)
		return
	case err != nil:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSONStatus(w, http.StatusAccepted, map[string]any{
		"run_id": run.ID,
		"source": run.Source,
		"state":  h.coord.State(),
		"image":  payload,
	})
}

func (h *Handler) readError(w http.ResponseWriter, err error) {
	if errors.Is(err, images.ErrTooLarge) {
		h.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	h.writeError(w, "Failed to read image: "+err.Error(), http.StatusBadRequest)
}
