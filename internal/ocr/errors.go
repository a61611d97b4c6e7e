package ocr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mcodersir/axkhan/internal/providers"
)

// Kind classifies extraction failures
type Kind string

const (
	KindMissingKey    Kind = "missing_key"
	KindInvalidKey    Kind = "invalid_key"
	KindRemoteFailure Kind = "remote_failure"
	KindUnknown       Kind = "unknown"
)

// User-facing messages
const (
	MsgMissingKey = "No API key is set. Add your Gemini API key in settings to extract text."
	MsgInvalidKey = "The API key was rejected. Check that it is correct and allowed to use the Gemini API."
	MsgGeneric    = "Something went wrong while reading the image. Please try again."
)

// Error is an extraction failure with a message fit to show the user
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, KindUnknown when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-facing message for err
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return MsgGeneric
	}
	return err.Error()
}

var keyHints = []string{"403", "key", "authoriz", "unauthenticated", "permission"}

// Classify maps a provider failure onto the error taxonomy. The upstream
// service has no stable error codes for key problems, so besides HTTP and
// gRPC status this falls back to matching the message text; keep every
// such rule in this function.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	if isAuthStatus(err) {
		return &Error{Kind: KindInvalidKey, Message: MsgInvalidKey, Err: err}
	}

	msg := strings.TrimSpace(err.Error())
	lower := strings.ToLower(msg)
	for _, hint := range keyHints {
		if strings.Contains(lower, hint) {
			return &Error{Kind: KindInvalidKey, Message: MsgInvalidKey, Err: err}
		}
	}

	if msg == "" {
		msg = MsgGeneric
	}

	var remote *providers.RemoteError
	if errors.As(err, &remote) {
		return &Error{Kind: KindRemoteFailure, Message: msg, Err: err}
	}
	return &Error{Kind: KindUnknown, Message: msg, Err: err}
}

func isAuthStatus(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden {
			return true
		}
	}

	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return true
	}
	return false
}
