package domain

import "strings"

// ExecutionStatus — статус durable execution, как его сообщает движок.
//
// Жизненный цикл:
//
//	RUNNING → COMPLETED
//	        ↘ FAILED | CANCELED | TERMINATED | TIMED_OUT
//	        ↘ CONTINUED_AS_NEW (execution продолжается под новым run)
type ExecutionStatus string

const (
	// ExecutionStatusUnspecified — движок не сообщил статус.
	ExecutionStatusUnspecified ExecutionStatus = "WORKFLOW_EXECUTION_STATUS_UNSPECIFIED"

	// ExecutionStatusRunning — execution выполняется.
	ExecutionStatusRunning ExecutionStatus = "WORKFLOW_EXECUTION_STATUS_RUNNING"

	// ExecutionStatusCompleted — execution успешно завершена.
	ExecutionStatusCompleted ExecutionStatus = "WORKFLOW_EXECUTION_STATUS_COMPLETED"

	// ExecutionStatusFailed — execution завершилась с ошибкой.
	ExecutionStatusFailed ExecutionStatus = "WORKFLOW_EXECUTION_STATUS_FAILED"

	// ExecutionStatusCanceled — execution отменена.
	ExecutionStatusCanceled ExecutionStatus = "WORKFLOW_EXECUTION_STATUS_CANCELED"

	// ExecutionStatusTerminated — execution принудительно остановлена.
	ExecutionStatusTerminated ExecutionStatus = "WORKFLOW_EXECUTION_STATUS_TERMINATED"

	// ExecutionStatusContinuedAsNew — execution продолжена новым run.
	ExecutionStatusContinuedAsNew ExecutionStatus = "WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW"

	// ExecutionStatusTimedOut — execution превысила таймаут.
	ExecutionStatusTimedOut ExecutionStatus = "WORKFLOW_EXECUTION_STATUS_TIMED_OUT"
)

const statusPrefix = "WORKFLOW_EXECUTION_STATUS_"

// IsTerminal возвращает true, если статус финальный (execution завершена).
// CONTINUED_AS_NEW не считается финальным: результат вернёт следующий run.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCanceled,
		ExecutionStatusTerminated, ExecutionStatusTimedOut:
		return true
	default:
		return false
	}
}

// IsFailure возвращает true для финальных статусов, кроме COMPLETED.
func (s ExecutionStatus) IsFailure() bool {
	return s.IsTerminal() && s != ExecutionStatusCompleted
}

// Short возвращает короткое имя статуса: "FAILED" вместо
// "WORKFLOW_EXECUTION_STATUS_FAILED".
func (s ExecutionStatus) Short() string {
	return strings.TrimPrefix(string(s), statusPrefix)
}

// String возвращает строковое представление ExecutionStatus.
func (s ExecutionStatus) String() string {
	return string(s)
}

// ParseExecutionStatus парсит строку в ExecutionStatus.
// Принимает полную ("WORKFLOW_EXECUTION_STATUS_RUNNING") и короткую ("RUNNING")
// форму без учёта регистра. Неизвестные значения дают UNSPECIFIED.
func ParseExecutionStatus(s string) ExecutionStatus {
	name := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(name, statusPrefix) {
		name = statusPrefix + name
	}

	switch st := ExecutionStatus(name); st {
	case ExecutionStatusRunning, ExecutionStatusCompleted, ExecutionStatusFailed,
		ExecutionStatusCanceled, ExecutionStatusTerminated,
		ExecutionStatusContinuedAsNew, ExecutionStatusTimedOut:
		return st
	default:
		return ExecutionStatusUnspecified
	}
}
