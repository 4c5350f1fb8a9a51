package domain

import (
	"errors"
	"strconv"
)

// Domain errors.
var (
	// ErrFetchInFlight is returned when a fetch is submitted while another is loading.
	ErrFetchInFlight = errors.New("fetch already in progress")

	// ErrNoVideo is returned when a download is requested before metadata is loaded.
	ErrNoVideo = errors.New("no video loaded")

	// ErrInvalidFormat is returned for formats other than mp4 and mp3.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidQuality is returned when a quality is not offered for the active format.
	ErrInvalidQuality = errors.New("invalid quality")
)

// GenericFetchMessage is shown when the backend fails without saying why.
const GenericFetchMessage = "Failed to fetch video information"

// Validation reasons.
const (
	ReasonMissingURL = "missing URL"
	ReasonNotYouTube = "not a YouTube URL"
)

// ValidationError reports a query rejected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + e.Reason
}

// Message returns the text shown to the user.
func (e *ValidationError) Message() string {
	switch e.Reason {
	case ReasonMissingURL:
		return "Please enter a YouTube video URL"
	case ReasonNotYouTube:
		return "Please enter a valid YouTube URL"
	}
	return e.Reason
}

// BackendError is a non-2xx response from the backend.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return "backend (" + strconv.Itoa(e.StatusCode) + "): " + e.Message
}

// TransportError wraps a network or decoding failure talking to the backend.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{
		Op:  op,
		Err: err,
	}
}

// UserMessage returns the text to display for err in the Error state.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message()
	}

	var be *BackendError
	if errors.As(err, &be) {
		if be.Message == "" {
			return GenericFetchMessage
		}
		return be.Message
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Err.Error()
	}

	return err.Error()
}
