// Package pgengine — драйвер engine.Client поверх Postgres-хранилища движка.
//
// Драйвер только записывает строки executions/schedules и анонсирует новые
// executions в RabbitMQ; выполняют их воркеры движка, которые читают те же таблицы.
package pgengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
	"github.com/steveandroulakis/money-transfer-demo/internal/mq"
)

// Announcer публикует события драйвера. Реализуется *mq.Publisher.
type Announcer interface {
	PublishExecutionPending(ctx context.Context, payload mq.ExecutionPendingPayload) error
	PublishScheduleChanged(ctx context.Context, scheduleID, change string) error
}

// Изменения schedule, которые попадают в schedule.changed.
const (
	changeCreated  = "created"
	changeUpdated  = "updated"
	changeUnpaused = "unpaused"
)

// Config — конфигурация драйвера.
type Config struct {
	Pool      *pgxpool.Pool
	Namespace string

	// Announcer — опционально; без него воркеры находят executions опросом таблицы.
	Announcer Announcer

	// PollInterval — период опроса в GetWorkflowResult (по умолчанию 1s).
	PollInterval time.Duration

	Logger *slog.Logger
}

// Client — engine.Client поверх Postgres.
type Client struct {
	pool         *pgxpool.Pool
	namespace    string
	announcer    Announcer
	pollInterval time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

var _ engine.Client = (*Client)(nil)

// New создаёт новый Client.
func New(cfg Config) *Client {
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		pool:         cfg.Pool,
		namespace:    cfg.Namespace,
		announcer:    cfg.Announcer,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// --- Executions ---

// StartWorkflow записывает execution в статусе RUNNING и анонсирует её.
func (c *Client) StartWorkflow(ctx context.Context, workflowType string, opts engine.StartOptions, args any) error {
	input, err := json.Marshal([]any{args})
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}

	runID := uuid.New()
	_, err = c.pool.Exec(ctx, `
		INSERT INTO executions (namespace, workflow_id, run_id, workflow_type, task_queue,
		                        status, input, start_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.namespace, opts.WorkflowID, runID, workflowType, opts.TaskQueue,
		string(domain.ExecutionStatusRunning), input, c.now())
	if err != nil {
		return c.mapError("start workflow", opts.WorkflowID, err)
	}

	c.announceExecution(ctx, mq.ExecutionPendingPayload{
		WorkflowID:   opts.WorkflowID,
		RunID:        runID,
		WorkflowType: workflowType,
		TaskQueue:    opts.TaskQueue,
	})
	return nil
}

// DescribeWorkflow возвращает описание execution.
func (c *Client) DescribeWorkflow(ctx context.Context, namespace, workflowID string) (*engine.WorkflowDescription, error) {
	if namespace == "" {
		namespace = c.namespace
	}

	var row executionRow
	err := c.pool.QueryRow(ctx, `
		SELECT workflow_id, run_id, workflow_type, task_queue, status, start_time, close_time
		FROM executions
		WHERE namespace = $1 AND workflow_id = $2
	`, namespace, workflowID).Scan(
		&row.WorkflowID,
		&row.RunID,
		&row.WorkflowType,
		&row.TaskQueue,
		&row.Status,
		&row.StartTime,
		&row.CloseTime,
	)
	if err != nil {
		return nil, c.mapError("describe workflow", workflowID, err)
	}
	return row.description(), nil
}

// QueryWorkflow читает последнее опубликованное воркером значение query.
// Воркер хранит ответы query в колонке state под ключом queryType.
func (c *Client) QueryWorkflow(ctx context.Context, workflowID, queryType string, result any) error {
	var raw []byte
	err := c.pool.QueryRow(ctx, `
		SELECT state -> $3::text
		FROM executions
		WHERE namespace = $1 AND workflow_id = $2
	`, c.namespace, workflowID, queryType).Scan(&raw)
	if err != nil {
		return c.mapError("query workflow", workflowID, err)
	}
	if raw == nil {
		return fmt.Errorf("query %s on %s: %w: handler has not reported a value", queryType, workflowID, engine.ErrNotFound)
	}
	return decodeInto(raw, result)
}

// GetWorkflowResult опрашивает execution до терминального статуса.
func (c *Client) GetWorkflowResult(ctx context.Context, workflowID string, result any) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var row resultRow
		err := c.pool.QueryRow(ctx, `
			SELECT status, result, failure_message
			FROM executions
			WHERE namespace = $1 AND workflow_id = $2
		`, c.namespace, workflowID).Scan(&row.Status, &row.Result, &row.FailureMessage)
		if err != nil {
			return c.mapError("get workflow result", workflowID, err)
		}

		done, err := row.outcome(workflowID, result)
		if done {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// --- Schedules ---

// CreateSchedule записывает новый schedule.
func (c *Client) CreateSchedule(ctx context.Context, scheduleID string, sched engine.Schedule, opts engine.ScheduleOptions) error {
	now := c.now()

	var nextDue *time.Time
	if opts.TriggerImmediately {
		nextDue = &now
	} else {
		var err error
		if nextDue, err = nextDueAt(sched, now); err != nil {
			return err
		}
	}

	cols, err := marshalSchedule(sched)
	if err != nil {
		return err
	}
	memo, err := json.Marshal(opts.Memo)
	if err != nil {
		return fmt.Errorf("marshal memo: %w", err)
	}

	_, err = c.pool.Exec(ctx, `
		INSERT INTO schedules (namespace, id, action, spec, state, policy, memo, next_due_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.namespace, scheduleID, cols.action, cols.spec, cols.state, cols.policy, memo, nextDue, now)
	if err != nil {
		return c.mapError("create schedule", scheduleID, err)
	}

	c.announceSchedule(ctx, scheduleID, changeCreated)
	return nil
}

// DescribeSchedule возвращает описание schedule.
func (c *Client) DescribeSchedule(ctx context.Context, scheduleID string) (*engine.ScheduleDescription, error) {
	row, err := scanSchedule(c.pool.QueryRow(ctx, selectScheduleSQL, c.namespace, scheduleID))
	if err != nil {
		return nil, c.mapError("describe schedule", scheduleID, err)
	}
	return row.description(scheduleID)
}

// UpdateSchedule читает schedule под блокировкой строки, применяет fn
// и сохраняет результат в той же транзакции.
func (c *Client) UpdateSchedule(ctx context.Context, scheduleID string, fn engine.ScheduleUpdater) error {
	return c.updateSchedule(ctx, scheduleID, changeUpdated, fn)
}

// UnpauseSchedule снимает schedule с паузы и пересчитывает next_due_at.
func (c *Client) UnpauseSchedule(ctx context.Context, scheduleID, note string) error {
	return c.updateSchedule(ctx, scheduleID, changeUnpaused, func(in engine.ScheduleUpdateInput) (*engine.ScheduleUpdate, error) {
		sched := in.Description.Schedule.Clone()
		sched.State.Paused = false
		sched.State.Note = note
		return &engine.ScheduleUpdate{Schedule: &sched}, nil
	})
}

func (c *Client) updateSchedule(ctx context.Context, scheduleID, change string, fn engine.ScheduleUpdater) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return c.mapError("begin schedule update", scheduleID, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row, err := scanSchedule(tx.QueryRow(ctx, selectScheduleSQL+" FOR UPDATE", c.namespace, scheduleID))
	if err != nil {
		return c.mapError("update schedule", scheduleID, err)
	}
	desc, err := row.description(scheduleID)
	if err != nil {
		return err
	}

	update, err := fn(engine.ScheduleUpdateInput{Description: *desc})
	if err != nil {
		return err
	}
	if update == nil || update.Schedule == nil {
		return nil
	}

	now := c.now()
	nextDue, err := nextDueAt(*update.Schedule, now)
	if err != nil {
		return err
	}
	cols, err := marshalSchedule(*update.Schedule)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE schedules
		SET action = $3, spec = $4, state = $5, policy = $6, next_due_at = $7, updated_at = $8
		WHERE namespace = $1 AND id = $2
	`, c.namespace, scheduleID, cols.action, cols.spec, cols.state, cols.policy, nextDue, now)
	if err != nil {
		return c.mapError("update schedule", scheduleID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return c.mapError("commit schedule update", scheduleID, err)
	}

	c.announceSchedule(ctx, scheduleID, change)
	return nil
}

// Close закрывает пул соединений.
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// --- Helpers ---

const selectScheduleSQL = `
	SELECT action, spec, state, policy, num_actions, next_due_at, created_at, updated_at
	FROM schedules
	WHERE namespace = $1 AND id = $2`

// mapError переводит ошибки pgx в ошибки engine.
func (c *Client) mapError(op, id string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s %s: %w", op, id, engine.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s %s: %w", op, id, engine.ErrAlreadyExists)
	case isPgError(err):
		return fmt.Errorf("%s %s: %w", op, id, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return engine.NewConnectivityError(op, err)
	}
}

// announceExecution публикует execution.pending. Ошибка публикации не
// отменяет запуск: строка уже записана и будет найдена опросом.
func (c *Client) announceExecution(ctx context.Context, payload mq.ExecutionPendingPayload) {
	if c.announcer == nil {
		return
	}
	if err := c.announcer.PublishExecutionPending(ctx, payload); err != nil {
		c.logger.Warn("failed to announce execution",
			"workflow_id", payload.WorkflowID,
			"task_queue", payload.TaskQueue,
			"error", err,
		)
	}
}

func (c *Client) announceSchedule(ctx context.Context, scheduleID, change string) {
	if c.announcer == nil {
		return
	}
	if err := c.announcer.PublishScheduleChanged(ctx, scheduleID, change); err != nil {
		c.logger.Warn("failed to announce schedule change",
			"schedule_id", scheduleID,
			"change", change,
			"error", err,
		)
	}
}
