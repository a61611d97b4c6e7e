package viewer

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Direction is the text direction of the result editor
type Direction string

const (
	RTL Direction = "rtl"
	LTR Direction = "ltr"
)

// ParseDirection accepts "rtl" or "ltr" in any case
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case RTL:
		return RTL, nil
	case LTR:
		return LTR, nil
	}
	return "", fmt.Errorf("invalid direction %q (must be rtl or ltr)", s)
}

// DetectDirection is right-to-left unless the trimmed text starts with a
// Latin letter
func DetectDirection(text string) Direction {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(text))
	if r != utf8.RuneError && unicode.IsLetter(r) && unicode.Is(unicode.Latin, r) {
		return LTR
	}
	return RTL
}

// Editor owns the result text once an extraction completes
type Editor struct {
	mu       sync.RWMutex
	text     string
	dir      Direction
	override bool
	loaded   bool
}

// EditorState is a snapshot of an Editor
type EditorState struct {
	Text      string    `json:"text"`
	Direction Direction `json:"direction"`
	Override  bool      `json:"direction_override"`
	Loaded    bool      `json:"loaded"`
}

func NewEditor() *Editor {
	return &Editor{dir: RTL}
}

// Load replaces the buffer with a new extraction result, detecting the
// direction and dropping any manual override
func (e *Editor) Load(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
	e.dir = DetectDirection(text)
	e.override = false
	e.loaded = true
}

// Clear empties the editor ahead of a new run
func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = ""
	e.dir = RTL
	e.override = false
	e.loaded = false
}

// SetText records a user edit. Direction is left alone.
func (e *Editor) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// SetDirection manually overrides the detected direction
func (e *Editor) SetDirection(d Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dir = d
	e.override = true
}

func (e *Editor) State() EditorState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return EditorState{Text: e.text, Direction: e.dir, Override: e.override, Loaded: e.loaded}
}
