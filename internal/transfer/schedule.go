package transfer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
	"github.com/steveandroulakis/money-transfer-demo/internal/scheduler"
	"github.com/steveandroulakis/money-transfer-demo/internal/telemetry"
)

// CreateSchedule создаёт периодический перевод и возвращает ID schedule.
//
// Создание двухфазное:
//  1. create — schedule с action "запустить перевод" и пустым spec
//  2. update — интервал (или cron), лимит запусков и политика SKIP
//
// Schedule остаётся на паузе: запускать его нужно явно через UnpauseSchedule.
// При любой ошибке возвращается пустой ID и *ScheduleError.
// Schedule с уже занятым ID не переиспользуется.
func (s *Service) CreateSchedule(ctx context.Context, req domain.ScheduleRequest) (scheduleID string, err error) {
	base := s.newID()
	id := ScheduleID(base)
	logger := telemetry.WithScheduleID(s.logger, id)

	ctx, span := tracer.Start(ctx, "transfer.CreateSchedule", trace.WithAttributes(
		attribute.String("schedule_id", id),
		attribute.Int("amount", req.Amount),
		attribute.Int("interval_sec", req.IntervalSec),
		attribute.Int("count", req.Count),
	))
	defer func() { endSpan(span, err) }()

	fail := func(phase string, cause error) (string, error) {
		logger.Error("failed to create schedule", "phase", phase, "error", cause)
		s.metrics.ScheduleCreated(phase)
		return "", &ScheduleError{ScheduleID: id, Phase: phase, Err: cause}
	}

	input := domain.TransferInput{
		Amount:      req.Amount,
		FromAccount: s.fromAccount,
		ToAccount:   s.toAccount,
	}
	spec, err := scheduleSpec(req)
	if err == nil {
		err = input.Validate()
	}
	if err != nil {
		return fail(PhaseValidate, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	sched := engine.Schedule{
		Action: engine.ScheduleAction{
			WorkflowType: WorkflowTypeTransfer,
			Args:         input,
			Options:      s.startOptions(base),
		},
		Spec: domain.ScheduleSpec{},
	}
	if err := s.engine.CreateSchedule(ctx, id, sched, engine.ScheduleOptions{}); err != nil {
		return fail(PhaseCreate, err)
	}

	err = s.engine.UpdateSchedule(ctx, id, func(in engine.ScheduleUpdateInput) (*engine.ScheduleUpdate, error) {
		return applyScheduleRequest(in.Description.Schedule, spec, req.Count), nil
	})
	if err != nil {
		return fail(PhaseUpdate, err)
	}

	s.metrics.ScheduleCreated("ok")
	logger.Info("schedule created",
		"amount", domain.MinorUnits(req.Amount).StringFixed(2),
		"interval_sec", req.IntervalSec,
		"cron", req.CronExpr,
		"remaining_actions", req.Count,
		"paused", true,
	)

	return id, nil
}

// scheduleSpec строит spec из запроса. Cron имеет приоритет над интервалом.
func scheduleSpec(req domain.ScheduleRequest) (domain.ScheduleSpec, error) {
	if req.Count <= 0 {
		return domain.ScheduleSpec{}, fmt.Errorf("count must be positive, got %d", req.Count)
	}

	var spec domain.ScheduleSpec
	if req.CronExpr != "" {
		spec.CronExpressions = []string{req.CronExpr}
	} else {
		if req.IntervalSec <= 0 {
			return domain.ScheduleSpec{}, fmt.Errorf("interval must be positive, got %d", req.IntervalSec)
		}
		spec.Intervals = []time.Duration{time.Duration(req.IntervalSec) * time.Second}
	}

	if err := scheduler.ValidateSpec(spec); err != nil {
		return domain.ScheduleSpec{}, err
	}
	return spec, nil
}

// applyScheduleRequest возвращает обновление, которое выставляет
// spec, ограничение запусков и политику SKIP поверх текущего schedule.
func applyScheduleRequest(current engine.Schedule, spec domain.ScheduleSpec, count int) *engine.ScheduleUpdate {
	next := current.Clone()
	next.Spec = spec
	next.State = domain.ScheduleState{
		Paused:           true,
		Note:             "created paused, unpause to activate",
		LimitedActions:   true,
		RemainingActions: count,
	}
	next.Policy = domain.SchedulePolicy{Overlap: domain.OverlapPolicySkip}
	return &engine.ScheduleUpdate{Schedule: &next}
}

// UnpauseSchedule снимает schedule с паузы.
func (s *Service) UnpauseSchedule(ctx context.Context, scheduleID, note string) (err error) {
	ctx, span := tracer.Start(ctx, "transfer.UnpauseSchedule",
		trace.WithAttributes(attribute.String("schedule_id", scheduleID)))
	defer func() { endSpan(span, err) }()

	if scheduleID == "" {
		return fmt.Errorf("%w: schedule id is required", ErrInvalidInput)
	}
	if note == "" {
		note = "unpaused by operator"
	}

	if err := s.engine.UnpauseSchedule(ctx, scheduleID, note); err != nil {
		return fmt.Errorf("unpause schedule %s: %w", scheduleID, err)
	}

	telemetry.WithScheduleID(s.logger, scheduleID).Info("schedule unpaused", "note", note)
	return nil
}

// DescribeSchedule возвращает описание schedule.
func (s *Service) DescribeSchedule(ctx context.Context, scheduleID string) (desc *engine.ScheduleDescription, err error) {
	ctx, span := tracer.Start(ctx, "transfer.DescribeSchedule",
		trace.WithAttributes(attribute.String("schedule_id", scheduleID)))
	defer func() { endSpan(span, err) }()

	desc, err = s.engine.DescribeSchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("describe schedule %s: %w", scheduleID, err)
	}
	return desc, nil
}
