package transfer

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
)

// MockEngine — testify-мок engine.Client
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) StartWorkflow(ctx context.Context, workflowType string, opts engine.StartOptions, args any) error {
	ret := m.Called(ctx, workflowType, opts, args)
	return ret.Error(0)
}

func (m *MockEngine) DescribeWorkflow(ctx context.Context, namespace, workflowID string) (*engine.WorkflowDescription, error) {
	ret := m.Called(ctx, namespace, workflowID)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*engine.WorkflowDescription), ret.Error(1)
}

func (m *MockEngine) QueryWorkflow(ctx context.Context, workflowID, queryType string, result any) error {
	ret := m.Called(ctx, workflowID, queryType, result)
	return ret.Error(0)
}

func (m *MockEngine) GetWorkflowResult(ctx context.Context, workflowID string, result any) error {
	ret := m.Called(ctx, workflowID, result)
	return ret.Error(0)
}

func (m *MockEngine) CreateSchedule(ctx context.Context, scheduleID string, sched engine.Schedule, opts engine.ScheduleOptions) error {
	ret := m.Called(ctx, scheduleID, sched, opts)
	return ret.Error(0)
}

func (m *MockEngine) DescribeSchedule(ctx context.Context, scheduleID string) (*engine.ScheduleDescription, error) {
	ret := m.Called(ctx, scheduleID)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*engine.ScheduleDescription), ret.Error(1)
}

func (m *MockEngine) UpdateSchedule(ctx context.Context, scheduleID string, fn engine.ScheduleUpdater) error {
	ret := m.Called(ctx, scheduleID, fn)
	return ret.Error(0)
}

func (m *MockEngine) UnpauseSchedule(ctx context.Context, scheduleID, note string) error {
	ret := m.Called(ctx, scheduleID, note)
	return ret.Error(0)
}

func (m *MockEngine) Close() error {
	return m.Called().Error(0)
}

const testNamespace = "default"
const testTaskQueue = "MoneyTransfer"

func newTestService(eng engine.Client, ids ...string) *Service {
	cfg := Config{
		Engine:    eng,
		Namespace: testNamespace,
		TaskQueue: testTaskQueue,
	}
	if len(ids) > 0 {
		next := 0
		cfg.IDGenerator = func() string {
			id := ids[next%len(ids)]
			next++
			return id
		}
	}
	return New(cfg)
}
