package transfer

import (
	"errors"
	"fmt"
)

// ErrInvalidInput — запрос не прошёл валидацию, в движок ничего не отправлено.
var ErrInvalidInput = errors.New("invalid input")

// Фазы создания schedule.
const (
	PhaseValidate = "validate"
	PhaseCreate   = "create"
	PhaseUpdate   = "update"
)

// ScheduleError — ошибка создания schedule.
//
// Возвращается вместе с пустым ID: вызывающая сторона видит и отсутствие
// schedule, и причину.
type ScheduleError struct {
	ScheduleID string // ID, под которым создавался schedule
	Phase      string // validate, create или update
	Err        error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ScheduleError) Error() string {
	return fmt.Sprintf("schedule %s: %s: %v", e.ScheduleID, e.Phase, e.Err)
}

// Unwrap возвращает базовую ошибку.
func (e *ScheduleError) Unwrap() error {
	return e.Err
}
