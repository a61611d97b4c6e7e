package providers

import (
	"context"
)

// Config represents one call to a vision model
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	Prompt      string
	ImageBase64 string // no data URI prefix
	MimeType    string
}

// Provider defines the interface for a vision model provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// RemoteError marks a failure reported by, or while talking to, the remote
// model, as opposed to a local failure before the call was made.
type RemoteError struct {
	Err error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Remote wraps err as a RemoteError
func Remote(err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Err: err}
}
