package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mcodersir/axkhan/internal/export"
	"github.com/mcodersir/axkhan/internal/models"
	"github.com/mcodersir/axkhan/internal/viewer"
)

type usageResponse struct {
	models.UsageRecord
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

func (h *Handler) usage() usageResponse {
	return usageResponse{
		UsageRecord: h.quota.Record(),
		Limit:       h.quota.Limit(),
		Remaining:   h.quota.Remaining(),
	}
}

func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, map[string]any{
		"workspace": h.coord.Snapshot(),
		"usage":     h.usage(),
	})
}

func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.usage())
}

// HandlePreview serves the original bytes of the current image
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, ok := h.coord.Preview()
	if !ok {
		h.writeError(w, "No image", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", p.MimeType)
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(p.Bytes))
}

func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.coord.Result())
	case "PUT":
		var update struct {
			Text      *string `json:"text"`
			Direction *string `json:"direction"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if update.Direction != nil {
			d, err := viewer.ParseDirection(*update.Direction)
			if err != nil {
				h.writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.coord.SetDirection(d)
		}
		if update.Text != nil {
			h.coord.EditResult(*update.Text)
		}
		h.writeJSON(w, h.coord.Result())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleInstructions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, map[string]string{"instructions": h.coord.Instructions()})
	case "PUT":
		var request struct {
			Instructions string `json:"instructions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		h.coord.SetInstructions(request.Instructions)
		h.writeJSON(w, map[string]string{"instructions": request.Instructions})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleViewer(w http.ResponseWriter, r *http.Request) {
	t := h.coord.Viewer()
	switch r.Method {
	case "GET":
		h.writeJSON(w, t.State())
	case "POST":
		var request struct {
			Action string  `json:"action"`
			X      float64 `json:"x"`
			Y      float64 `json:"y"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		p := viewer.Point{X: request.X, Y: request.Y}
		switch request.Action {
		case "zoom_in":
			t.ZoomIn()
		case "zoom_out":
			t.ZoomOut()
		case "reset":
			t.Reset()
		case "drag_start":
			t.StartDrag(p)
		case "drag_move":
			t.DragTo(p)
		case "drag_end":
			t.EndDrag()
		default:
			h.writeError(w, "Invalid action. Must be 'zoom_in', 'zoom_out', 'reset', 'drag_start', 'drag_move' or 'drag_end'", http.StatusBadRequest)
			return
		}
		h.writeJSON(w, t.State())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var after uint64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			h.writeError(w, "Invalid after parameter", http.StatusBadRequest)
			return
		}
		after = n
	}
	h.writeJSON(w, h.feed.Since(after))
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.coord.Result()
	if !result.Loaded {
		h.writeError(w, "No result to export", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	doc := export.Document{Text: result.Text, Direction: result.Direction, Model: h.model, ExportedAt: time.Now()}
	if err := export.Write(&buf, format, doc); err != nil {
		h.writeError(w, "Failed to export: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	_, _ = w.Write(buf.Bytes())
}
