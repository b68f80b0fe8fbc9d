package voicedetect

import (
	"errors"
	"fmt"
)

// ErrorKind is a short machine-readable error category. The boundary layer
// maps kinds to transport status codes.
type ErrorKind string

const (
	// KindDecode marks unusable or corrupt PCM from the decode step.
	KindDecode ErrorKind = "decode_error"
	// KindDuration marks a signal outside the [0.5s, 300s] window.
	KindDuration ErrorKind = "duration_error"
	// KindSilence marks a signal whose energy is below the usable floor.
	KindSilence ErrorKind = "silence_error"
	// KindFeatureExtraction marks total extraction failure: no frame
	// yielded a usable estimate.
	KindFeatureExtraction ErrorKind = "feature_extraction_error"
	// KindConfiguration marks a malformed rule or language table. It is
	// fatal at startup and never occurs mid-request.
	KindConfiguration ErrorKind = "configuration_error"
)

// Error is a typed pipeline failure. The message never carries raw sample
// data or frame-level traces.
type Error struct {
	Kind    ErrorKind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// KindOf extracts the ErrorKind from err, or "" when err is not a pipeline
// error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}
