package engine

import (
	"context"
	"slices"
	"time"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
)

// Client — RPC-интерфейс движка, которым пользуется фасад переводов.
//
// Все методы — одиночные запросы без retry. GetWorkflowResult — единственный
// долго блокирующий вызов; он завершается при отмене ctx.
type Client interface {
	// StartWorkflow асинхронно создаёт execution и возвращается,
	// как только движок её принял.
	StartWorkflow(ctx context.Context, workflowType string, opts StartOptions, args any) error

	// DescribeWorkflow возвращает описание execution в namespace.
	DescribeWorkflow(ctx context.Context, namespace, workflowID string) (*WorkflowDescription, error)

	// QueryWorkflow выполняет query к execution и декодирует ответ в result.
	QueryWorkflow(ctx context.Context, workflowID, queryType string, result any) error

	// GetWorkflowResult блокируется до завершения execution и декодирует
	// её результат в result. Для неуспешной execution возвращает *WorkflowFailedError.
	GetWorkflowResult(ctx context.Context, workflowID string, result any) error

	// CreateSchedule создаёт schedule с указанным ID.
	CreateSchedule(ctx context.Context, scheduleID string, sched Schedule, opts ScheduleOptions) error

	// DescribeSchedule возвращает текущее описание schedule.
	DescribeSchedule(ctx context.Context, scheduleID string) (*ScheduleDescription, error)

	// UpdateSchedule читает schedule, передаёт его описание в fn и
	// сохраняет то, что fn вернула.
	UpdateSchedule(ctx context.Context, scheduleID string, fn ScheduleUpdater) error

	// UnpauseSchedule снимает schedule с паузы.
	UnpauseSchedule(ctx context.Context, scheduleID, note string) error

	// Close освобождает соединения драйвера.
	Close() error
}

// StartOptions — параметры запуска execution.
type StartOptions struct {
	// WorkflowID — идентификатор execution (reference number перевода).
	WorkflowID string `json:"workflow_id"`

	// TaskQueue — очередь, из которой воркеры забирают задачи.
	TaskQueue string `json:"task_queue"`
}

// WorkflowDescription — ответ describe execution.
type WorkflowDescription struct {
	WorkflowID   string                 `json:"workflow_id"`
	RunID        string                 `json:"run_id,omitempty"`
	WorkflowType string                 `json:"workflow_type,omitempty"`
	TaskQueue    string                 `json:"task_queue,omitempty"`
	Status       domain.ExecutionStatus `json:"status"`
	StartTime    *time.Time             `json:"start_time,omitempty"`
	CloseTime    *time.Time             `json:"close_time,omitempty"`
}

// ScheduleAction — действие schedule: запуск workflow с аргументами.
type ScheduleAction struct {
	WorkflowType string       `json:"workflow_type"`
	Args         any          `json:"args"`
	Options      StartOptions `json:"options"`
}

// Schedule — описание schedule целиком.
type Schedule struct {
	Action ScheduleAction        `json:"action"`
	Spec   domain.ScheduleSpec   `json:"spec"`
	State  domain.ScheduleState  `json:"state"`
	Policy domain.SchedulePolicy `json:"policy"`
}

// Clone возвращает копию schedule, не делящую срезы с оригиналом.
func (s Schedule) Clone() Schedule {
	out := s
	out.Spec.Intervals = slices.Clone(s.Spec.Intervals)
	out.Spec.CronExpressions = slices.Clone(s.Spec.CronExpressions)
	return out
}

// ScheduleOptions — параметры создания schedule.
type ScheduleOptions struct {
	// TriggerImmediately — запустить action сразу после создания.
	TriggerImmediately bool `json:"trigger_immediately,omitempty"`

	// Memo — произвольные метаданные schedule.
	Memo map[string]any `json:"memo,omitempty"`
}

// ScheduleInfo — сведения о работе schedule, которые ведёт движок.
type ScheduleInfo struct {
	NumActions      int         `json:"num_actions"`
	RecentActions   []string    `json:"recent_actions,omitempty"`
	NextActionTimes []time.Time `json:"next_action_times,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty"`
}

// ScheduleDescription — ответ describe schedule.
type ScheduleDescription struct {
	ID       string       `json:"id"`
	Schedule Schedule     `json:"schedule"`
	Info     ScheduleInfo `json:"info"`
}

// ScheduleUpdateInput — то, что получает ScheduleUpdater.
type ScheduleUpdateInput struct {
	Description ScheduleDescription
}

// ScheduleUpdate — результат ScheduleUpdater.
// Schedule == nil означает "ничего не менять".
type ScheduleUpdate struct {
	Schedule *Schedule
}

// ScheduleUpdater строит новое описание schedule из текущего.
type ScheduleUpdater func(in ScheduleUpdateInput) (*ScheduleUpdate, error)
