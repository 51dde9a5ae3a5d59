/**
 * @description
 * Error normalization for backend responses. Every non-2xx response is
 * parsed into an APIError that keeps the server payload intact (top-level
 * detail/code plus field-level validation messages) so callers can interpret
 * business rejections themselves. FormatErrorPayload flattens any of the
 * shapes the backend emits into a single human-readable string, preferring a
 * top-level detail/error message before falling back to field messages.
 */

package marketclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is a normalized non-2xx backend response. The raw payload fields
// are preserved for caller-side interpretation.
type APIError struct {
	Status int
	Code   string
	Detail string
	Fields map[string][]string
}

// Error implements the error interface with a flattened, display-ready
// message.
func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return msg
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Message flattens the payload: detail first, then field messages.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return formatFields(e.Fields)
}

// TokenInvalid reports whether the error carries the backend's
// invalid-token marker. The backend sets code=token_not_valid on expired or
// malformed access tokens; older deployments only mention the token in the
// detail message.
func (e *APIError) TokenInvalid() bool {
	if e.Status != http.StatusUnauthorized {
		return false
	}
	if e.Code == "token_not_valid" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Detail), "token")
}

// parseAPIError builds an APIError from a response body. Unparsable bodies
// still yield a usable error with the HTTP status.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Detail = strings.TrimSpace(string(body))
		return apiErr
	}

	for _, key := range []string{"detail", "error", "message"} {
		var s string
		if raw, ok := payload[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			apiErr.Detail = s
			delete(payload, key)
			break
		}
	}
	if raw, ok := payload["code"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			apiErr.Code = s
		}
		delete(payload, "code")
	}

	for key, raw := range payload {
		var list []string
		if json.Unmarshal(raw, &list) == nil {
			apiErr.ensureFields()[key] = list
			continue
		}
		var single string
		if json.Unmarshal(raw, &single) == nil && single != "" {
			apiErr.ensureFields()[key] = []string{single}
		}
	}
	return apiErr
}

func (e *APIError) ensureFields() map[string][]string {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	return e.Fields
}

// FormatErrorPayload flattens an arbitrary error payload into one string.
// A plain string comes back unchanged, so formatting is idempotent; a
// field-error map such as {"phone": ["Invalid format"]} yields a string
// containing both the field name and the message.
func FormatErrorPayload(payload interface{}) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	case error:
		return v.Error()
	case map[string]interface{}:
		for _, key := range []string{"detail", "error", "message"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
		fields := make(map[string][]string)
		for key, val := range v {
			switch fv := val.(type) {
			case string:
				fields[key] = []string{fv}
			case []interface{}:
				var msgs []string
				for _, item := range fv {
					if s, ok := item.(string); ok {
						msgs = append(msgs, s)
					}
				}
				if len(msgs) > 0 {
					fields[key] = msgs
				}
			}
		}
		return formatFields(fields)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatFields renders field validation messages deterministically.
func formatFields(fields map[string][]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, strings.Join(fields[key], ", ")))
	}
	return strings.Join(parts, "; ")
}
