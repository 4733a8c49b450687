package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GenericErrorMessage is the fallback shown when the server gave us nothing
// structured to display.
const GenericErrorMessage = "An unexpected error occurred."

// Error is a failed backend call. The backend reports errors in one of three
// body fields depending on the endpoint; UserMessage walks them in order.
type Error struct {
	Status  int
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Err     string `json:"error"`
}

func (e *Error) Error() string {
	if msg := e.structured(); msg != "" {
		return fmt.Sprintf("api: %s (status %d)", msg, e.Status)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

func (e *Error) structured() string {
	// Most specific first: detail, then message, then the catch-all field.
	for _, s := range []string{e.Detail, e.Message, e.Err} {
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// UserMessage is the text surfaced in a notification.
func (e *Error) UserMessage() string {
	if msg := e.structured(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}

// IsAuthError reports whether the failure means the credential is missing or
// expired, i.e. the user should be sent back to login.
func (e *Error) IsAuthError() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// errorFromResponse decodes a non-2xx response into *Error. Bodies that are
// not JSON (proxies, HTML error pages) yield a status-only error.
func errorFromResponse(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	_ = json.Unmarshal(body, apiErr)
	return apiErr
}
