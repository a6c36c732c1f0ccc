package app_error

import (
	"encoding/json"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e AppError) Error() string {
	return e.Message
}

func (e AppError) JSON(w http.ResponseWriter) error {
	return json.NewEncoder(w).Encode(e)
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Message: msg,
		Field:   field,
	}
}

// Error taxonomy of the lifecycle engine. Storage failures must never be
// followed by a broadcast, so every caller checks the returned *AppError
// before notifying clients.

func UnsafeContent(msg string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, msg, "unsafe-content")
}

func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, msg, "not-found")
}

func StorageFailure(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, msg, "storage")
}

func (e *AppError) IsNotFound() bool {
	return e != nil && e.Field == "not-found"
}
