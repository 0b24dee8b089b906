package pgengine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
	"github.com/steveandroulakis/money-transfer-demo/internal/scheduler"
)

// executionRow — строка executions для describe.
type executionRow struct {
	WorkflowID   string
	RunID        uuid.UUID
	WorkflowType string
	TaskQueue    string
	Status       string
	StartTime    time.Time
	CloseTime    *time.Time
}

func (r executionRow) description() *engine.WorkflowDescription {
	start := r.StartTime
	return &engine.WorkflowDescription{
		WorkflowID:   r.WorkflowID,
		RunID:        r.RunID.String(),
		WorkflowType: r.WorkflowType,
		TaskQueue:    r.TaskQueue,
		Status:       domain.ParseExecutionStatus(r.Status),
		StartTime:    &start,
		CloseTime:    r.CloseTime,
	}
}

// resultRow — строка executions для ожидания результата.
type resultRow struct {
	Status         string
	Result         []byte
	FailureMessage *string
}

// outcome возвращает done=false, пока execution не завершилась.
func (r resultRow) outcome(workflowID string, result any) (bool, error) {
	status := domain.ParseExecutionStatus(r.Status)
	switch {
	case !status.IsTerminal():
		return false, nil
	case status == domain.ExecutionStatusCompleted:
		return true, decodeInto(r.Result, result)
	default:
		failed := &engine.WorkflowFailedError{WorkflowID: workflowID, Status: status}
		if r.FailureMessage != nil {
			failed.Message = *r.FailureMessage
		}
		return true, failed
	}
}

// scheduleRow — строка schedules.
type scheduleRow struct {
	Action     []byte
	Spec       []byte
	State      []byte
	Policy     []byte
	NumActions int
	NextDueAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

func scanSchedule(row pgx.Row) (*scheduleRow, error) {
	var r scheduleRow
	err := row.Scan(
		&r.Action,
		&r.Spec,
		&r.State,
		&r.Policy,
		&r.NumActions,
		&r.NextDueAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *scheduleRow) description(id string) (*engine.ScheduleDescription, error) {
	var sched engine.Schedule
	parts := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"action", r.Action, &sched.Action},
		{"spec", r.Spec, &sched.Spec},
		{"state", r.State, &sched.State},
		{"policy", r.Policy, &sched.Policy},
	}
	for _, p := range parts {
		if err := json.Unmarshal(p.raw, p.dst); err != nil {
			return nil, fmt.Errorf("unmarshal schedule %s %s: %w", id, p.name, err)
		}
	}

	info := engine.ScheduleInfo{
		NumActions: r.NumActions,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.NextDueAt != nil {
		info.NextActionTimes = []time.Time{*r.NextDueAt}
	}

	return &engine.ScheduleDescription{ID: id, Schedule: sched, Info: info}, nil
}

// scheduleColumns — JSONB-колонки schedule.
type scheduleColumns struct {
	action, spec, state, policy []byte
}

func marshalSchedule(sched engine.Schedule) (scheduleColumns, error) {
	var cols scheduleColumns
	var err error
	if cols.action, err = json.Marshal(sched.Action); err != nil {
		return cols, fmt.Errorf("marshal schedule action: %w", err)
	}
	if cols.spec, err = json.Marshal(sched.Spec); err != nil {
		return cols, fmt.Errorf("marshal schedule spec: %w", err)
	}
	if cols.state, err = json.Marshal(sched.State); err != nil {
		return cols, fmt.Errorf("marshal schedule state: %w", err)
	}
	sched.Policy.Overlap = sched.Policy.Overlap.OrDefault()
	if cols.policy, err = json.Marshal(sched.Policy); err != nil {
		return cols, fmt.Errorf("marshal schedule policy: %w", err)
	}
	return cols, nil
}

// nextDueAt вычисляет next_due_at. nil — schedule не должен срабатывать:
// он на паузе, исчерпал лимит запусков или не задаёт ни одного повторения.
func nextDueAt(sched engine.Schedule, now time.Time) (*time.Time, error) {
	if sched.State.Paused || sched.State.Exhausted() || sched.Spec.IsEmpty() {
		return nil, nil
	}
	next, err := scheduler.NextDue(sched.Spec, now)
	if err != nil {
		return nil, fmt.Errorf("compute next due: %w", err)
	}
	return &next, nil
}

// decodeInto декодирует JSON в result; nil result или пустой JSON игнорируются.
func decodeInto(raw []byte, result any) error {
	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
