package service

import (
	"errors"
	"fmt"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeAuth       = "AUTH_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeStore      = "STORE_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: reason,
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewAuthError(reason string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeAuth,
		Message: reason,
		Details: map[string]any{},
		Err:     err,
	}
}

// сообщение зависит только от запрошенного id:
// чужая задача неотличима от несуществующей
func NewNotFound(id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("task %s not found", id),
		Details: map[string]any{
			"resource": "task",
			"id":       id,
		},
	}
}

// подробности ошибки хранилища клиенту не отдаются, только в лог
func NewStoreError(operation string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeStore,
		Message: "storage operation failed",
		Details: map[string]any{
			"operation": operation,
		},
		Err: err,
	}
}

// CodeOf возвращает код бизнес-ошибки или пустую строку
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
