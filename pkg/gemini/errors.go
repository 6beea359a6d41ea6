package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrEmptyModel is returned when no model identifier was supplied.
	ErrEmptyModel = errors.New("model must not be empty")

	// ErrEmptyAPIKey is returned when no API key was supplied.
	ErrEmptyAPIKey = errors.New("API key must not be empty")
)

// APIError is returned when the streaming endpoint answers with a non-2xx
// status. Body holds the raw response document.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini API returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini API returned status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && hasError(env.Error) {
		var detail apiErrorBody
		if err := json.Unmarshal(env.Error, &detail); err == nil {
			apiErr.Message = detail.Message
			apiErr.Status = detail.Status
		}
	}

	return apiErr
}

func hasError(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// redactKey strips the API key from the URL embedded in transport errors so
// it never reaches the terminal or the logs.
func redactKey(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	urlErr.URL = redactURL(urlErr.URL)
	return err
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
