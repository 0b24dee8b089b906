package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
)

// Ошибки движка.
var (
	// ErrNotFound — execution или schedule с таким ID не существует.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — ID уже занят (повторный start или create schedule).
	ErrAlreadyExists = errors.New("already exists")

	// ErrConnectivity — не удалось связаться с движком (транспорт, TLS, конфигурация).
	ErrConnectivity = errors.New("engine unreachable")
)

// ConnectivityError — ошибка соединения с движком с контекстом операции.
type ConnectivityError struct {
	Op  string // операция, на которой произошла ошибка
	Err error  // базовая ошибка транспорта
}

// Error реализует интерфейс error.
func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrConnectivity, e.Err)
}

// Unwrap возвращает базовую ошибку.
func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// Is позволяет errors.Is(err, ErrConnectivity).
func (e *ConnectivityError) Is(target error) bool {
	return target == ErrConnectivity
}

// NewConnectivityError создаёт ConnectivityError.
func NewConnectivityError(op string, err error) *ConnectivityError {
	return &ConnectivityError{Op: op, Err: err}
}

// WorkflowFailedError — execution завершилась неуспешно.
// Возвращается из GetWorkflowResult вместо результата.
type WorkflowFailedError struct {
	WorkflowID string
	Status     domain.ExecutionStatus
	Message    string
}

// Error реализует интерфейс error.
func (e *WorkflowFailedError) Error() string {
	msg := fmt.Sprintf("workflow %s finished with status %s", e.WorkflowID, e.Status.Short())
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// ResultLabel классифицирует ошибку для метрик.
func ResultLabel(err error) string {
	var failed *WorkflowFailedError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrConnectivity):
		return "connectivity"
	case errors.As(err, &failed):
		return "workflow_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
