package http

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// APIError is a non-success response from the Table API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Detail     string `json:"detail"`
	Status     string `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("table API %d: %s (%s)", e.StatusCode, e.Message, e.Detail)
	}

	return fmt.Sprintf("table API %d: %s", e.StatusCode, e.Message)
}

// errorEnvelope is the body ServiceNow sends with failed requests:
// {"error": {"message": "...", "detail": "..."}, "status": "failure"}.
type errorEnvelope struct {
	Error  *APIError `json:"error"`
	Status string    `json:"status"`
}

// ParseAPIError builds an *APIError from a status code and response body.
// Bodies that are not a ServiceNow error envelope fall back to the status text.
func ParseAPIError(statusCode int, body []byte) *APIError {
	var envelope errorEnvelope

	err := json.Unmarshal(body, &envelope)
	if err != nil || envelope.Error == nil {
		return &APIError{
			StatusCode: statusCode,
			Message:    http.StatusText(statusCode),
		}
	}

	apiErr := envelope.Error
	apiErr.StatusCode = statusCode
	apiErr.Status = envelope.Status

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}

	return apiErr
}
