package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func newError(code int, body []byte) *Error {
	apiErr := &Error{StatusCode: code}

	var payload struct {
		Message string            `json:"message"`
		Error   string            `json:"error"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message == "" {
			payload.Message = payload.Error
		}
		apiErr.Message = payload.Message
		apiErr.Fields = payload.Errors
		return apiErr
	}

	// plain text bodies, e.g. "Username already exists"
	msg := strings.TrimSpace(string(body))
	if strings.HasPrefix(msg, "<") {
		msg = ""
	}
	var quoted string
	if err := json.Unmarshal(body, &quoted); err == nil {
		msg = quoted
	}
	apiErr.Message = msg
	return apiErr
}

func (err *Error) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("api: %d %s", err.StatusCode, http.StatusText(err.StatusCode))
	}
	return fmt.Sprintf("api: %d %s", err.StatusCode, err.Message)
}

// Detail is the server message followed by any field errors, empty when the server sent none.
func (err *Error) Detail() string {
	if len(err.Fields) == 0 {
		return err.Message
	}
	msgs := make([]string, 0, len(err.Fields))
	for fld, msg := range err.Fields {
		msgs = append(msgs, fld+": "+msg)
	}
	sort.Strings(msgs)
	return err.Message + " (" + strings.Join(msgs, "; ") + ")"
}

// AsError unwraps err to an *Error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func hasStatus(err error, code int) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.StatusCode == code
}

func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

func IsForbidden(err error) bool { return hasStatus(err, http.StatusForbidden) }

func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// Message returns the server message carried by err, or "".
func Message(err error) string {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Detail()
	}
	return ""
}
