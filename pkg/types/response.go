// Package types holds the JSON envelopes shared by every HTTP response.
package types

// SuccessEnvelope is {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError carries a stable code plus a client-safe message.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorEnvelope is {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
