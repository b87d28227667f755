package dto

// Response is the envelope of every API response
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo carries the machine-readable part of a failed response
type ErrorInfo struct {
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewMessageResponse creates a success response with a human-readable message
func NewMessageResponse(message string, data any) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return NewErrorResponseWithRequestID(code, message, "")
}

// NewErrorResponseWithRequestID creates an error response tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Message: message,
		Error: &ErrorInfo{
			Code:      NormalizeErrorCode(code),
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates a 400 response body listing the offending fields
func NewValidationErrorResponse(message, requestID string, fields map[string]string) Response {
	if message == "" {
		message = "Validation failed"
	}
	return Response{
		Success: false,
		Message: message,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			RequestID: requestID,
			Fields:    fields,
		},
	}
}

// IDRequest binds a numeric :id path parameter
type IDRequest struct {
	ID uint `uri:"id" binding:"required,gt=0"`
}
