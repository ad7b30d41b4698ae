// Package types holds the wire shapes shared by every API surface.
package types

// SuccessEnvelope wraps every 2xx body: the payload always sits under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body: a stable machine code, a message safe
// to show a caller, and optional field-level details when the code allows
// them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
