// Package formdata reads multipart/form-data request bodies as a forward-only
// stream of parts.
package formdata

import (
	"errors"
	"mime"
	"strings"
)

const (
	mediaTypeFormData = "multipart/form-data"

	// maxBoundaryLen is the RFC 2046 upper bound for a boundary token.
	maxBoundaryLen = 70
)

var (
	ErrMissingContentType = errors.New("expected multipart/form-data content type")
	ErrMissingBoundary    = errors.New("missing multipart boundary")
	ErrInvalidBoundary    = errors.New("invalid multipart boundary")
	ErrMalformedBody      = errors.New("malformed multipart body")
)

// ResolveBoundary extracts the boundary token from a Content-Type header value.
// Quotes around the token are removed; nothing else is normalized.
func ResolveBoundary(contentType string) (string, error) {
	if strings.TrimSpace(contentType) == "" {
		return "", ErrMissingContentType
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "", ErrMissingContentType
	}
	if mediaType != mediaTypeFormData {
		return "", ErrMissingContentType
	}

	if err != nil {
		// Some parameter did not parse, so params is nil. A boundary that was
		// sent is still reported as invalid rather than missing.
		if strings.TrimSpace(rawBoundary(contentType)) == "" {
			return "", ErrMissingBoundary
		}
		return "", ErrInvalidBoundary
	}

	boundary := params["boundary"]
	if strings.TrimSpace(boundary) == "" {
		return "", ErrMissingBoundary
	}
	if len(boundary) > maxBoundaryLen {
		return "", ErrInvalidBoundary
	}

	return boundary, nil
}

// rawBoundary scans the header parameters for a boundary value without
// validating the others.
func rawBoundary(contentType string) string {
	_, rest, _ := strings.Cut(contentType, ";")
	for _, param := range strings.Split(rest, ";") {
		key, value, ok := strings.Cut(param, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "boundary") {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"`)
	}
	return ""
}
