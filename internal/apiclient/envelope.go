package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable wraps transport failures where no reply was received.
var ErrUnavailable = errors.New("backend unavailable")

// Response is a decoded backend reply in the {success, data} envelope.
type Response struct {
	StatusCode int
	Success    bool
	Message    string
	Data       json.RawMessage
	Raw        []byte
}

// DecodeData decodes the data member into out. Replies without a data member
// are decoded whole.
func (r *Response) DecodeData(out any) error {
	payload := r.Data
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		payload = r.Raw
	}
	if len(payload) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Error reports a non-2xx reply or one with success=false.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d", e.StatusCode)
	}
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsRejected reports whether the backend answered but refused the request
// (4xx or success=false), as opposed to failing.
func IsRejected(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode < http.StatusInternalServerError
}

func hasStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// parseResponse validates the status code and envelope of a raw reply.
func parseResponse(status int, body []byte) (*Response, error) {
	resp := &Response{StatusCode: status, Raw: body, Success: status >= 200 && status < 300}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			if resp.Success {
				return nil, fmt.Errorf("malformed envelope: %w", err)
			}
		} else {
			resp.Data = env.Data
			resp.Message = env.Message
			if resp.Message == "" {
				resp.Message = errorText(env.Error)
			}
			if env.Success != nil && !*env.Success {
				resp.Success = false
			}
		}
	} else if resp.Success && len(trimmed) > 0 && trimmed[0] == '[' {
		resp.Data = trimmed
	}

	if !resp.Success {
		return resp, &Error{StatusCode: status, Message: resp.Message}
	}
	return resp, nil
}

// errorText reads an error member that may be a string or {message}.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}
