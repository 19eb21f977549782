package dto

// ErrorResponse represents an API error.
// Errors is set for validation failures only.
type ErrorResponse struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
