package models

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse builds the wire payload for an AppError.
func NewErrorResponse(err *AppError) ErrorResponse {
	return ErrorResponse{Code: err.Kind.HTTPStatus(), Message: err.Message}
}
