package transfer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
)

const testBaseID = "TRANSFER-QRS-007"

// captureSchedule настраивает моки CreateSchedule/UpdateSchedule: запоминает,
// что отправил сервис, и применяет updater к созданному schedule.
type captureSchedule struct {
	created *engine.Schedule
	update  *engine.ScheduleUpdate
}

func (c *captureSchedule) expect(eng *MockEngine, id string) {
	eng.On("CreateSchedule", mock.Anything, id, mock.AnythingOfType("engine.Schedule"), engine.ScheduleOptions{}).
		Run(func(args mock.Arguments) {
			s := args.Get(2).(engine.Schedule)
			c.created = &s
		}).
		Return(nil).Once()

	eng.On("UpdateSchedule", mock.Anything, id, mock.AnythingOfType("engine.ScheduleUpdater")).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(engine.ScheduleUpdater)
			upd, err := fn(engine.ScheduleUpdateInput{
				Description: engine.ScheduleDescription{ID: id, Schedule: *c.created},
			})
			if err != nil {
				panic(err)
			}
			c.update = upd
		}).
		Return(nil).Once()
}

func TestCreateSchedule_TwoPhase(t *testing.T) {
	eng := new(MockEngine)
	svc := newTestService(eng, testBaseID)
	capture := &captureSchedule{}
	capture.expect(eng, testBaseID+"-schedule")

	id, err := svc.CreateSchedule(context.Background(), domain.ScheduleRequest{Amount: 10, IntervalSec: 60, Count: 5})

	require.NoError(t, err)
	assert.Equal(t, testBaseID+"-schedule", id)
	assert.True(t, strings.HasSuffix(id, "-schedule"))

	eng.AssertNumberOfCalls(t, "CreateSchedule", 1)
	eng.AssertNumberOfCalls(t, "UpdateSchedule", 1)

	// Фаза 1: пустой spec, action запускает workflow перевода
	require.NotNil(t, capture.created)
	assert.True(t, capture.created.Spec.IsEmpty())
	assert.Equal(t, WorkflowTypeTransfer, capture.created.Action.WorkflowType)
	assert.Equal(t, engine.StartOptions{WorkflowID: testBaseID, TaskQueue: testTaskQueue}, capture.created.Action.Options)
	assert.Equal(t, domain.TransferInput{Amount: 10, FromAccount: "account1", ToAccount: "account2"}, capture.created.Action.Args)

	// Фаза 2: интервал, лимит запусков, SKIP
	require.NotNil(t, capture.update)
	require.NotNil(t, capture.update.Schedule)
	updated := capture.update.Schedule
	assert.Equal(t, []time.Duration{60 * time.Second}, updated.Spec.Intervals)
	assert.Empty(t, updated.Spec.CronExpressions)
	assert.True(t, updated.State.LimitedActions)
	assert.Equal(t, 5, updated.State.RemainingActions)
	assert.True(t, updated.State.Paused)
	assert.Equal(t, domain.OverlapPolicySkip, updated.Policy.Overlap)
	// Action из фазы 1 сохраняется после update
	assert.Equal(t, capture.created.Action, updated.Action)
}

func TestCreateSchedule_Cron(t *testing.T) {
	eng := new(MockEngine)
	svc := newTestService(eng, testBaseID)
	capture := &captureSchedule{}
	capture.expect(eng, testBaseID+"-schedule")

	_, err := svc.CreateSchedule(context.Background(), domain.ScheduleRequest{Amount: 10, IntervalSec: 60, Count: 3, CronExpr: "0 9 * * *"})

	require.NoError(t, err)
	assert.Equal(t, []string{"0 9 * * *"}, capture.update.Schedule.Spec.CronExpressions)
	assert.Empty(t, capture.update.Schedule.Spec.Intervals)
}

func TestCreateSchedule_CreateFails(t *testing.T) {
	eng := new(MockEngine)
	svc := newTestService(eng, testBaseID)

	cause := errors.New("schedule service unavailable")
	eng.On("CreateSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cause).Once()

	id, err := svc.CreateSchedule(context.Background(), domain.ScheduleRequest{Amount: 10, IntervalSec: 60, Count: 5})

	assert.Empty(t, id, "failed creation must not return a handle")
	var se *ScheduleError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, PhaseCreate, se.Phase)
	assert.Equal(t, testBaseID+"-schedule", se.ScheduleID)
	assert.ErrorIs(t, err, cause)
	eng.AssertNotCalled(t, "UpdateSchedule", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateSchedule_DuplicateIsNotAdopted(t *testing.T) {
	eng := new(MockEngine)
	svc := newTestService(eng, testBaseID)

	eng.On("CreateSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(engine.ErrAlreadyExists)

	id, err := svc.CreateSchedule(context.Background(), domain.ScheduleRequest{Amount: 10, IntervalSec: 60, Count: 5})

	assert.Empty(t, id)
	assert.ErrorIs(t, err, engine.ErrAlreadyExists)
	eng.AssertNumberOfCalls(t, "CreateSchedule", 1)
	eng.AssertNotCalled(t, "UpdateSchedule", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateSchedule_UpdateFails(t *testing.T) {
	eng := new(MockEngine)
	svc := newTestService(eng, testBaseID)

	eng.On("CreateSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	eng.On("UpdateSchedule", mock.Anything, mock.Anything, mock.Anything).Return(engine.ErrNotFound)

	id, err := svc.CreateSchedule(context.Background(), domain.ScheduleRequest{Amount: 10, IntervalSec: 60, Count: 5})

	assert.Empty(t, id)
	var se *ScheduleError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, PhaseUpdate, se.Phase)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestCreateSchedule_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.ScheduleRequest
	}{
		{"zero interval", domain.ScheduleRequest{Amount: 10, IntervalSec: 0, Count: 5}},
		{"zero count", domain.ScheduleRequest{Amount: 10, IntervalSec: 60, Count: 0}},
		{"zero amount", domain.ScheduleRequest{Amount: 0, IntervalSec: 60, Count: 5}},
		{"bad cron", domain.ScheduleRequest{Amount: 10, Count: 5, CronExpr: "every minute"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := new(MockEngine)
			svc := newTestService(eng, testBaseID)

			id, err := svc.CreateSchedule(context.Background(), tt.req)

			assert.Empty(t, id)
			assert.ErrorIs(t, err, ErrInvalidInput)
			var se *ScheduleError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, PhaseValidate, se.Phase)
			eng.AssertNotCalled(t, "CreateSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestApplyScheduleRequest_DoesNotMutateCurrent(t *testing.T) {
	current := engine.Schedule{
		Spec: domain.ScheduleSpec{Intervals: []time.Duration{time.Hour}},
	}
	spec := domain.ScheduleSpec{Intervals: []time.Duration{time.Minute}}

	upd := applyScheduleRequest(current, spec, 2)

	assert.Equal(t, []time.Duration{time.Hour}, current.Spec.Intervals)
	assert.Equal(t, []time.Duration{time.Minute}, upd.Schedule.Spec.Intervals)
	assert.False(t, current.State.LimitedActions)
}

func TestUnpauseSchedule(t *testing.T) {
	eng := new(MockEngine)
	svc := newTestService(eng)

	eng.On("UnpauseSchedule", mock.Anything, "TRANSFER-ABC-001-schedule", "approved").Return(nil).Once()
	require.NoError(t, svc.UnpauseSchedule(context.Background(), "TRANSFER-ABC-001-schedule", "approved"))

	eng.On("UnpauseSchedule", mock.Anything, "TRANSFER-ABC-002-schedule", "unpaused by operator").Return(nil).Once()
	require.NoError(t, svc.UnpauseSchedule(context.Background(), "TRANSFER-ABC-002-schedule", ""))

	assert.ErrorIs(t, svc.UnpauseSchedule(context.Background(), "", ""), ErrInvalidInput)
	eng.AssertExpectations(t)
}

func TestDescribeSchedule(t *testing.T) {
	eng := new(MockEngine)
	svc := newTestService(eng)

	desc := &engine.ScheduleDescription{ID: "TRANSFER-ABC-001-schedule"}
	eng.On("DescribeSchedule", mock.Anything, desc.ID).Return(desc, nil).Once()
	eng.On("DescribeSchedule", mock.Anything, "missing").Return(nil, engine.ErrNotFound).Once()

	got, err := svc.DescribeSchedule(context.Background(), desc.ID)
	require.NoError(t, err)
	assert.Same(t, desc, got)

	_, err = svc.DescribeSchedule(context.Background(), "missing")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}
