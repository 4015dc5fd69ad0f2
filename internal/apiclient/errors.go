package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"onetap-admin/internal/model"
)

var (
	// ErrTransport means the request never produced a usable response.
	ErrTransport = errors.New("backend unreachable")
	// ErrDecode means the response body was not the expected JSON.
	ErrDecode = errors.New("unreadable backend response")
)

// APIError is a non-success response from the backend. Message is the
// server's detail text and is empty when the body could not be parsed.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
}

// ServerMessage returns the detail text carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	var body model.ErrorBody
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Text()
	}
	return apiErr
}
