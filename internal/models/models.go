package models

import "time"

// ImagePayload is an acquired image. It is never mutated once captured; a
// normalized copy may replace it for transmission only.
type ImagePayload struct {
	Bytes    []byte `json:"-"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Size returns the payload length in bytes
func (p ImagePayload) Size() int {
	return len(p.Bytes)
}

// ExtractionRequest is built fresh for every submission and never reused.
type ExtractionRequest struct {
	ImageBase64 string `json:"image_base64"` // no data URI prefix
	MimeType    string `json:"mime_type"`
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
}

// ExtractionResult is the text returned for a single request
type ExtractionResult struct {
	Text string `json:"text"`
}

// UsageRecord is the persisted daily usage counter
type UsageRecord struct {
	Date  string `json:"date"` // YYYY-MM-DD, local time
	Count int    `json:"count"`
}

// ProcessingState is the acquisition pipeline state
type ProcessingState string

const (
	StateIdle       ProcessingState = "idle"
	StateUploading  ProcessingState = "uploading"
	StateAnalyzing  ProcessingState = "analyzing"
	StateFormatting ProcessingState = "formatting"
	StateDone       ProcessingState = "done"
	StateFailed     ProcessingState = "failed"
)

// Terminal reports whether no run is in flight in this state
func (s ProcessingState) Terminal() bool {
	switch s {
	case StateIdle, StateDone, StateFailed:
		return true
	default:
		return false
	}
}

// RunInfo describes the current or most recent acquisition
type RunInfo struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	State      ProcessingState `json:"state"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Error      string          `json:"error,omitempty"`
}
