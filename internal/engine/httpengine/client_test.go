package httpengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
)

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"code": code, "message": message}})
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Namespace: "default", PollInterval: 10 * time.Millisecond})
}

const wfPath = "/api/v1/namespaces/default/workflows/TRANSFER-ABC-001"

func TestStartWorkflow(t *testing.T) {
	var got startWorkflowRequest
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+wfPath, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeData(w, http.StatusCreated, map[string]string{"run_id": "r1"})
	})
	c := newTestClient(t, mux)

	in := domain.TransferInput{Amount: 45, FromAccount: "account1", ToAccount: "account2"}
	err := c.StartWorkflow(context.Background(), "AccountTransferWorkflow",
		engine.StartOptions{WorkflowID: "TRANSFER-ABC-001", TaskQueue: "MoneyTransfer"}, in)

	require.NoError(t, err)
	assert.Equal(t, "AccountTransferWorkflow", got.WorkflowType)
	assert.Equal(t, "MoneyTransfer", got.TaskQueue)
	require.Len(t, got.Input, 1)
	assert.Equal(t, map[string]any{"amount": 45.0, "fromAccount": "account1", "toAccount": "account2"}, got.Input[0])
}

func TestStartWorkflow_Conflict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+wfPath, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusConflict, "CONFLICT", "workflow already started")
	})
	c := newTestClient(t, mux)

	err := c.StartWorkflow(context.Background(), "AccountTransferWorkflow",
		engine.StartOptions{WorkflowID: "TRANSFER-ABC-001"}, nil)

	assert.ErrorIs(t, err, engine.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "workflow already started")
}

func TestDescribeWorkflow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+wfPath, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"workflow_id": "TRANSFER-ABC-001", "status": "FAILED"})
	})
	c := newTestClient(t, mux)

	desc, err := c.DescribeWorkflow(context.Background(), "default", "TRANSFER-ABC-001")

	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusFailed, desc.Status)
}

func TestDescribeWorkflow_NotFound(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	_, err := c.DescribeWorkflow(context.Background(), "default", "TRANSFER-ABC-001")

	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestQueryWorkflow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+wfPath+"/query/transferStatus", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"result": map[string]any{
			"progressPercentage": 25,
			"transferState":      "starting",
			"workflowStatus":     "RUNNING",
		}})
	})
	c := newTestClient(t, mux)

	var state domain.TransferState
	err := c.QueryWorkflow(context.Background(), "TRANSFER-ABC-001", "transferStatus", &state)

	require.NoError(t, err)
	assert.Equal(t, 25, state.ProgressPercentage)
	assert.Equal(t, "RUNNING", state.WorkflowStatus)
}

func TestGetWorkflowResult_PollsUntilCompleted(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+wfPath+"/result", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n < 3 {
			writeData(w, http.StatusOK, map[string]any{"status": "RUNNING"})
			return
		}
		writeData(w, http.StatusOK, map[string]any{
			"status": "COMPLETED",
			"result": map[string]any{"chargeResult": map[string]string{"chargeId": "ch_1"}},
		})
	})
	c := newTestClient(t, mux)

	var out domain.TransferOutput
	err := c.GetWorkflowResult(context.Background(), "TRANSFER-ABC-001", &out)

	require.NoError(t, err)
	assert.Equal(t, "ch_1", out.ChargeResult.ChargeID)
	assert.Equal(t, 3, calls)
}

func TestGetWorkflowResult_Failed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+wfPath+"/result", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{
			"status":  "WORKFLOW_EXECUTION_STATUS_FAILED",
			"failure": map[string]string{"message": "account frozen"},
		})
	})
	c := newTestClient(t, mux)

	err := c.GetWorkflowResult(context.Background(), "TRANSFER-ABC-001", &domain.TransferOutput{})

	var failed *engine.WorkflowFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, domain.ExecutionStatusFailed, failed.Status)
	assert.Equal(t, "account frozen", failed.Message)
}

func TestGetWorkflowResult_Cancel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+wfPath+"/result", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"status": "RUNNING"})
	})
	c := newTestClient(t, mux)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.GetWorkflowResult(ctx, "TRANSFER-ABC-001", &domain.TransferOutput{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, engine.ErrConnectivity)
}

func TestGetWorkflowResult_LongPollOutlivesRequestTimeout(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+wfPath+"/result", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		// Сервер держит long-poll дольше, чем RequestTimeout клиента
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		if n < 2 {
			writeData(w, http.StatusOK, map[string]any{"status": "RUNNING"})
			return
		}
		writeData(w, http.StatusOK, map[string]any{
			"status": "COMPLETED",
			"result": map[string]any{"chargeResult": map[string]string{"chargeId": "ch_1"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(Config{
		BaseURL:        srv.URL,
		Namespace:      "default",
		RequestTimeout: 100 * time.Millisecond,
		PollInterval:   10 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out domain.TransferOutput
	err := c.GetWorkflowResult(ctx, "TRANSFER-ABC-001", &out)

	require.NoError(t, err)
	assert.Equal(t, "ch_1", out.ChargeResult.ChargeID)
	assert.Equal(t, 2, calls)
}

func TestDescribeWorkflow_RequestTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+wfPath, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		writeData(w, http.StatusOK, map[string]any{"workflow_id": "TRANSFER-ABC-001"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, Namespace: "default", RequestTimeout: 50 * time.Millisecond})

	// Обычные запросы по-прежнему ограничены RequestTimeout
	_, err := c.DescribeWorkflow(context.Background(), "default", "TRANSFER-ABC-001")

	assert.ErrorIs(t, err, engine.ErrConnectivity)
}

func TestConnectivityError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(Config{BaseURL: srv.URL, Namespace: "default"})

	_, err := c.DescribeWorkflow(context.Background(), "default", "TRANSFER-ABC-001")

	assert.ErrorIs(t, err, engine.ErrConnectivity)
}

func TestSchedule_CreateUpdateUnpause(t *testing.T) {
	const schedPath = "/api/v1/namespaces/default/schedules/TRANSFER-ABC-001-schedule"

	var mu sync.Mutex
	var stored engine.Schedule
	var unpaused string

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+schedPath, func(w http.ResponseWriter, r *http.Request) {
		var req createScheduleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		stored = req.Schedule
		mu.Unlock()
		writeData(w, http.StatusCreated, map[string]string{"id": "TRANSFER-ABC-001-schedule"})
	})
	mux.HandleFunc("GET "+schedPath, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeData(w, http.StatusOK, engine.ScheduleDescription{ID: "TRANSFER-ABC-001-schedule", Schedule: stored})
	})
	mux.HandleFunc("PUT "+schedPath, func(w http.ResponseWriter, r *http.Request) {
		var req updateScheduleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		stored = req.Schedule
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST "+schedPath+"/unpause", func(w http.ResponseWriter, r *http.Request) {
		var req unpauseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		unpaused = req.Note
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	sched := engine.Schedule{Action: engine.ScheduleAction{
		WorkflowType: "AccountTransferWorkflow",
		Options:      engine.StartOptions{WorkflowID: "TRANSFER-ABC-001", TaskQueue: "MoneyTransfer"},
	}}
	require.NoError(t, c.CreateSchedule(ctx, "TRANSFER-ABC-001-schedule", sched, engine.ScheduleOptions{}))

	err := c.UpdateSchedule(ctx, "TRANSFER-ABC-001-schedule", func(in engine.ScheduleUpdateInput) (*engine.ScheduleUpdate, error) {
		next := in.Description.Schedule.Clone()
		next.Spec.Intervals = []time.Duration{time.Minute}
		next.State = domain.ScheduleState{Paused: true, LimitedActions: true, RemainingActions: 5}
		next.Policy.Overlap = domain.OverlapPolicySkip
		return &engine.ScheduleUpdate{Schedule: &next}, nil
	})
	require.NoError(t, err)

	desc, err := c.DescribeSchedule(ctx, "TRANSFER-ABC-001-schedule")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Minute}, desc.Schedule.Spec.Intervals)
	assert.Equal(t, 5, desc.Schedule.State.RemainingActions)
	assert.Equal(t, domain.OverlapPolicySkip, desc.Schedule.Policy.Overlap)
	assert.Equal(t, "TRANSFER-ABC-001", desc.Schedule.Action.Options.WorkflowID)

	require.NoError(t, c.UnpauseSchedule(ctx, "TRANSFER-ABC-001-schedule", "approved"))
	assert.Equal(t, "approved", unpaused)
}

func TestUpdateSchedule_NilUpdateSkipsPut(t *testing.T) {
	const schedPath = "/api/v1/namespaces/default/schedules/s1"
	putCalled := false

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+schedPath, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, engine.ScheduleDescription{ID: "s1"})
	})
	mux.HandleFunc("PUT "+schedPath, func(w http.ResponseWriter, r *http.Request) {
		putCalled = true
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)

	err := c.UpdateSchedule(context.Background(), "s1", func(engine.ScheduleUpdateInput) (*engine.ScheduleUpdate, error) {
		return nil, nil
	})

	require.NoError(t, err)
	assert.False(t, putCalled)
}
