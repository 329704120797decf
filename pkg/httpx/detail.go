package httpx

import (
	"encoding/json"
	"strings"
)

// ErrorDetail extracts a human-readable message from a structured error body.
// Understands FastAPI-style {"detail": ...} and {"error": "..."} payloads and
// falls back to the raw body text.
func ErrorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if len(payload.Detail) > 0 {
			var s string
			if err := json.Unmarshal(payload.Detail, &s); err == nil {
				return s
			}
			// detail can be a validation structure; keep it verbatim
			return string(payload.Detail)
		}
	}
	return strings.TrimSpace(string(body))
}
