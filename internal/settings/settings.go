package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mcodersir/axkhan/internal/storage"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	DefaultLanguage = "fa"
	DefaultFontSize = 16
	MinFontSize     = 12
	MaxFontSize     = 32
)

var languages = map[string]bool{"fa": true, "en": true}

// ErrInvalid marks an update rejected by validation
var ErrInvalid = errors.New("invalid settings")

// Settings are the user preferences persisted between sessions
type Settings struct {
	APIKey   string `json:"api_key"`
	Theme    string `json:"theme"`
	Language string `json:"language"`
	FontSize int    `json:"font_size"`
	EcoMode  bool   `json:"eco_mode"`
}

// Defaults returns the settings used when nothing has been saved
func Defaults() Settings {
	return Settings{
		Theme:    ThemeLight,
		Language: DefaultLanguage,
		FontSize: DefaultFontSize,
	}
}

// Validate rejects values the workspace cannot render
func (s Settings) Validate() error {
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		return fmt.Errorf("invalid theme %q (must be %q or %q)", s.Theme, ThemeLight, ThemeDark)
	}
	if !languages[s.Language] {
		return fmt.Errorf("unsupported language %q", s.Language)
	}
	if s.FontSize < MinFontSize || s.FontSize > MaxFontSize {
		return fmt.Errorf("font size %d out of range [%d, %d]", s.FontSize, MinFontSize, MaxFontSize)
	}
	return nil
}

// MaskedKey hides all but the first and last four characters of the key
func (s Settings) MaskedKey() string {
	k := s.APIKey
	if len(k) <= 8 {
		return strings.Repeat("*", len(k))
	}
	return k[:4] + "…" + k[len(k)-4:]
}

// Manager owns the process-wide settings. Values are read once from the
// store (falling back to defaults) and written back only through Update
// or SetAPIKey.
type Manager struct {
	mu  sync.RWMutex
	kv  storage.KV
	cur Settings
}

// Load reads every setting from kv, using defaults for missing or
// malformed values
func Load(kv storage.KV) *Manager {
	s := Defaults()
	if v, ok := kv.Get(storage.KeyAPIKey); ok {
		s.APIKey = v
	}
	if v, ok := kv.Get(storage.KeyTheme); ok && (v == ThemeLight || v == ThemeDark) {
		s.Theme = v
	}
	if v, ok := kv.Get(storage.KeyLanguage); ok && languages[v] {
		s.Language = v
	}
	if v, ok := kv.Get(storage.KeyFontSize); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= MinFontSize && n <= MaxFontSize {
			s.FontSize = n
		}
	}
	if v, ok := kv.Get(storage.KeyEcoMode); ok {
		s.EcoMode = v == "true"
	}
	return &Manager{kv: kv, cur: s}
}

// Get returns a copy of the current settings
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Update applies fn to a copy of the settings, validates it and saves it.
// The in-memory value is updated even when persisting fails; the write
// error is returned for the caller to report.
func (m *Manager) Update(fn func(*Settings)) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.cur
	fn(&next)
	if err := next.Validate(); err != nil {
		return m.cur, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	m.cur = next
	return next, m.save(next)
}

// SetAPIKey adopts and persists a key
func (m *Manager) SetAPIKey(key string) error {
	_, err := m.Update(func(s *Settings) { s.APIKey = strings.TrimSpace(key) })
	return err
}

func (m *Manager) save(s Settings) error {
	return errors.Join(
		m.kv.Set(storage.KeyAPIKey, s.APIKey),
		m.kv.Set(storage.KeyTheme, s.Theme),
		m.kv.Set(storage.KeyLanguage, s.Language),
		m.kv.Set(storage.KeyFontSize, strconv.Itoa(s.FontSize)),
		m.kv.Set(storage.KeyEcoMode, strconv.FormatBool(s.EcoMode)),
	)
}
