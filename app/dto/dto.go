package dto

// APIResponse is the envelope of every /api/v1 response. The intake endpoint keeps its own bare shape.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// ErrorDetail carries a machine readable code and optional context
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Success wraps data in a successful envelope
func Success(message string, data any) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// Failure builds an error envelope with code and optional details
func Failure(message, code string, details any) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   ErrorDetail{Code: code, Details: details},
	}
}
