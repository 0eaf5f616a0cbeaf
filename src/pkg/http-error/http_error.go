package httperror

import "net/http"

// CommonError is the error payload returned to HTTP clients.
type CommonError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e CommonError) Error() string {
	return e.Message
}

func NewBadRequest() CommonError {
	return CommonError{Code: http.StatusBadRequest, Message: "Bad Request"}
}

func NewUnauthorized() CommonError {
	return CommonError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
}

func NewNotFound() CommonError {
	return CommonError{Code: http.StatusNotFound, Message: "Not Found"}
}

func NewConflict() CommonError {
	return CommonError{Code: http.StatusConflict, Message: "Conflict"}
}

func NewUnprocessableEntity() CommonError {
	return CommonError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable Entity"}
}

func NewInternalServerError() CommonError {
	return CommonError{Code: http.StatusInternalServerError, Message: "Internal Server Error"}
}
