package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/steveandroulakis/money-transfer-demo/internal/telemetry"
)

// Имена операций для метрик и логов.
const (
	OpStartWorkflow     = "start_workflow"
	OpDescribeWorkflow  = "describe_workflow"
	OpQueryWorkflow     = "query_workflow"
	OpGetWorkflowResult = "get_workflow_result"
	OpCreateSchedule    = "create_schedule"
	OpDescribeSchedule  = "describe_schedule"
	OpUpdateSchedule    = "update_schedule"
	OpUnpauseSchedule   = "unpause_schedule"
)

// instrumented оборачивает Client, записывая метрики и debug-логи каждого вызова.
type instrumented struct {
	next    Client
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// Instrument возвращает Client, который пишет метрики в m и логи в logger.
// Оба параметра могут быть nil.
func Instrument(next Client, m *telemetry.Metrics, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &instrumented{next: next, metrics: m, logger: logger}
}

func (c *instrumented) observe(op, id string, start time.Time, err error) {
	result := ResultLabel(err)
	elapsed := time.Since(start)
	c.metrics.ObserveEngineCall(op, result, elapsed)

	if err != nil {
		c.logger.Debug("engine call failed",
			"op", op,
			"id", id,
			"result", result,
			"duration", elapsed,
			"error", err,
		)
		return
	}
	c.logger.Debug("engine call", "op", op, "id", id, "duration", elapsed)
}

func (c *instrumented) StartWorkflow(ctx context.Context, workflowType string, opts StartOptions, args any) (err error) {
	defer func(start time.Time) { c.observe(OpStartWorkflow, opts.WorkflowID, start, err) }(time.Now())
	return c.next.StartWorkflow(ctx, workflowType, opts, args)
}

func (c *instrumented) DescribeWorkflow(ctx context.Context, namespace, workflowID string) (desc *WorkflowDescription, err error) {
	defer func(start time.Time) { c.observe(OpDescribeWorkflow, workflowID, start, err) }(time.Now())
	return c.next.DescribeWorkflow(ctx, namespace, workflowID)
}

func (c *instrumented) QueryWorkflow(ctx context.Context, workflowID, queryType string, result any) (err error) {
	defer func(start time.Time) { c.observe(OpQueryWorkflow, workflowID, start, err) }(time.Now())
	return c.next.QueryWorkflow(ctx, workflowID, queryType, result)
}

func (c *instrumented) GetWorkflowResult(ctx context.Context, workflowID string, result any) (err error) {
	defer func(start time.Time) { c.observe(OpGetWorkflowResult, workflowID, start, err) }(time.Now())
	return c.next.GetWorkflowResult(ctx, workflowID, result)
}

func (c *instrumented) CreateSchedule(ctx context.Context, scheduleID string, sched Schedule, opts ScheduleOptions) (err error) {
	defer func(start time.Time) { c.observe(OpCreateSchedule, scheduleID, start, err) }(time.Now())
	return c.next.CreateSchedule(ctx, scheduleID, sched, opts)
}

func (c *instrumented) DescribeSchedule(ctx context.Context, scheduleID string) (desc *ScheduleDescription, err error) {
	defer func(start time.Time) { c.observe(OpDescribeSchedule, scheduleID, start, err) }(time.Now())
	return c.next.DescribeSchedule(ctx, scheduleID)
}

func (c *instrumented) UpdateSchedule(ctx context.Context, scheduleID string, fn ScheduleUpdater) (err error) {
	defer func(start time.Time) { c.observe(OpUpdateSchedule, scheduleID, start, err) }(time.Now())
	return c.next.UpdateSchedule(ctx, scheduleID, fn)
}

func (c *instrumented) UnpauseSchedule(ctx context.Context, scheduleID, note string) (err error) {
	defer func(start time.Time) { c.observe(OpUnpauseSchedule, scheduleID, start, err) }(time.Now())
	return c.next.UnpauseSchedule(ctx, scheduleID, note)
}

func (c *instrumented) Close() error {
	return c.next.Close()
}
