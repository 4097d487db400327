package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorEnvelope is the JSON body of every error answered to a JSON client.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// WantsJSON reports whether the client asked for JSON.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

// WriteError answers with an ErrorEnvelope, adding the response's request id to meta.
func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	if requestID := strings.TrimSpace(w.Header().Get("X-Request-Id")); requestID != "" {
		if meta == nil {
			meta = map[string]string{}
		}
		meta["request_id"] = requestID
	}
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}
