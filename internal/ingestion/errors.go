package ingestion

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/your-org/blobingest/pkg/formdata"
)

// Kind classifies a failed ingestion.
type Kind int

const (
	// KindBadRequest means the client sent an unusable request.
	KindBadRequest Kind = iota + 1
	// KindStorage means the object store rejected a call.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindStorage:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Reason is a stable code for the failure cause.
type Reason string

const (
	ReasonMissingContentType Reason = "missing_content_type"
	ReasonMissingBoundary    Reason = "missing_boundary"
	ReasonInvalidBoundary    Reason = "invalid_boundary"
	ReasonMalformedBody      Reason = "malformed_body"
	ReasonBodyTooLarge       Reason = "body_too_large"
	ReasonStorage            Reason = "storage_failure"
)

// Message is the client facing text for r.
func (r Reason) Message() string {
	switch r {
	case ReasonMissingContentType:
		return "Expected multipart/form-data request."
	case ReasonMissingBoundary:
		return "Missing multipart boundary."
	case ReasonInvalidBoundary:
		return "Invalid multipart boundary."
	case ReasonMalformedBody:
		return "Malformed multipart body."
	case ReasonBodyTooLarge:
		return "Request body too large."
	default:
		return "Storage failure."
	}
}

// Error is returned by Service.Ingest for every failed request.
type Error struct {
	Kind   Kind
	Reason Reason
	// Object is the file name being written when a storage call failed.
	Object string
	Err    error
}

func (e *Error) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Object, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newBadRequest(err error) *Error {
	reason := ReasonMalformedBody
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		reason = ReasonBodyTooLarge
	case errors.Is(err, formdata.ErrMissingContentType):
		reason = ReasonMissingContentType
	case errors.Is(err, formdata.ErrMissingBoundary):
		reason = ReasonMissingBoundary
	case errors.Is(err, formdata.ErrInvalidBoundary):
		reason = ReasonInvalidBoundary
	}
	return &Error{Kind: KindBadRequest, Reason: reason, Err: err}
}

func newStorageFailure(object string, err error) *Error {
	return &Error{Kind: KindStorage, Reason: ReasonStorage, Object: object, Err: err}
}

// FailurePolicy decides what happens after a storage write fails.
type FailurePolicy int

const (
	// FailFast stops at the first failed write.
	FailFast FailurePolicy = iota
	// ContinueOnError keeps writing the remaining files and reports every
	// failure in the Outcome.
	ContinueOnError
)

// ParseFailurePolicy maps "fail_fast" and "continue" to a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "fail_fast":
		return FailFast, nil
	case "continue":
		return ContinueOnError, nil
	default:
		return FailFast, fmt.Errorf("unknown failure policy: %s", s)
	}
}
