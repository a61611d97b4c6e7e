package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcodersir/axkhan/internal/settings"
)

type settingsResponse struct {
	APIKey    string `json:"api_key"` // masked
	HasKey    bool   `json:"has_key"`
	EnvKeySet bool   `json:"env_key_set"`
	Theme     string `json:"theme"`
	Language  string `json:"language"`
	FontSize  int    `json:"font_size"`
	EcoMode   bool   `json:"eco_mode"`
}

func (h *Handler) settingsView(s settings.Settings) settingsResponse {
	return settingsResponse{
		APIKey:    s.MaskedKey(),
		HasKey:    s.APIKey != "",
		EnvKeySet: h.envKeySet,
		Theme:     s.Theme,
		Language:  s.Language,
		FontSize:  s.FontSize,
		EcoMode:   s.EcoMode,
	}
}

func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.settingsView(h.settings.Get()))
	case "PUT":
		var update struct {
			APIKey   *string `json:"api_key"`
			Theme    *string `json:"theme"`
			Language *string `json:"language"`
			FontSize *int    `json:"font_size"`
			EcoMode  *bool   `json:"eco_mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		s, err := h.settings.Update(func(s *settings.Settings) {
			if update.APIKey != nil {
				s.APIKey = strings.TrimSpace(*update.APIKey)
			}
			if update.Theme != nil {
				s.Theme = *update.Theme
			}
			if update.Language != nil {
				s.Language = *update.Language
			}
			if update.FontSize != nil {
				s.FontSize = *update.FontSize
			}
			if update.EcoMode != nil {
				s.EcoMode = *update.EcoMode
			}
		})
		if errors.Is(err, settings.ErrInvalid) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			// applied in memory, only the write failed
			slog.Warn("Unable to persist settings", "err", err)
		}
		h.writeJSON(w, h.settingsView(s))
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
