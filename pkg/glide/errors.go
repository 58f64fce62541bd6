package glide

import (
	"errors"
	"net/http"

	internalhttp "github.com/fivetwenty-io/glide-client/internal/http"
)

// APIError is returned by the transport for responses with status >= 400.
type APIError = internalhttp.APIError

// Static errors for err113 compliance.
var (
	ErrNoCredentialsFound = errors.New("no API credentials found")
	ErrNoInstanceFound    = errors.New("no instance found")
	ErrFetchFailed        = errors.New("failed to fetch from table API")
	ErrDeserializeFailed  = errors.New("failed to deserialize response")
	ErrSerializeFailed    = errors.New("failed to serialize record")
	ErrRecordNotFound     = errors.New("record not found")
	ErrTableRequired      = errors.New("table name is required")
	ErrSysIDRequired      = errors.New("sys_id is required")
	ErrMissingResult      = errors.New("response has no result")
	ErrNoResponse         = errors.New("transport returned no response")
)

// IsNotFound reports whether err is a 404 from the API or ErrRecordNotFound.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrRecordNotFound) {
		return true
	}

	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is a 403 from the API.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}
