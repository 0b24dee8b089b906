// Package httpengine — драйвер engine.Client для JSON/HTTP API движка.
//
// Все ответы приходят в обёртках {"data": ...} или {"error": {"code", "message"}}.
// Транспортные ошибки и ошибки TLS возвращаются как *engine.ConnectivityError,
// 404 — как engine.ErrNotFound, 409 — как engine.ErrAlreadyExists.
package httpengine

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
)

// --- Wire types ---

type startWorkflowRequest struct {
	WorkflowType string `json:"workflow_type"`
	TaskQueue    string `json:"task_queue"`
	Input        []any  `json:"input"`
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type failureInfo struct {
	Message string `json:"message"`
}

type resultResponse struct {
	Status  domain.ExecutionStatus `json:"status"`
	Result  json.RawMessage        `json:"result,omitempty"`
	Failure *failureInfo           `json:"failure,omitempty"`
}

type createScheduleRequest struct {
	Schedule engine.Schedule        `json:"schedule"`
	Options  engine.ScheduleOptions `json:"options"`
}

type updateScheduleRequest struct {
	Schedule engine.Schedule `json:"schedule"`
}

type unpauseRequest struct {
	Note string `json:"note"`
}

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-драйвер движка.
type Client struct {
	baseURL      string
	namespace    string
	httpClient   *http.Client
	waitClient   *http.Client // long-poll результата, без Timeout
	pollInterval time.Duration
	logger       *slog.Logger
}

// Config — конфигурация Client.
type Config struct {
	BaseURL   string
	Namespace string

	// TLS — клиентский TLS (nil для plain HTTP).
	TLS *tls.Config

	// RequestTimeout — таймаут одного запроса (default: 30s).
	// На long-poll результата не действует: ожидание ограничено только ctx.
	RequestTimeout time.Duration

	// PollInterval — пауза между long-poll запросами результата (default: 1s).
	PollInterval time.Duration

	Logger *slog.Logger
}

// New создаёт HTTP-драйвер.
func New(cfg Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = cfg.TLS

	return &Client{
		baseURL:   cfg.BaseURL,
		namespace: cfg.Namespace,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		waitClient:   &http.Client{Transport: transport},
		pollInterval: poll,
		logger:       logger,
	}
}

var _ engine.Client = (*Client)(nil)

func (c *Client) workflowPath(namespace, workflowID string) string {
	return "/api/v1/namespaces/" + url.PathEscape(namespace) + "/workflows/" + url.PathEscape(workflowID)
}

func (c *Client) schedulePath(scheduleID string) string {
	return "/api/v1/namespaces/" + url.PathEscape(c.namespace) + "/schedules/" + url.PathEscape(scheduleID)
}

// --- Workflows ---

// StartWorkflow создаёт execution.
func (c *Client) StartWorkflow(ctx context.Context, workflowType string, opts engine.StartOptions, args any) error {
	body := startWorkflowRequest{
		WorkflowType: workflowType,
		TaskQueue:    opts.TaskQueue,
		Input:        []any{args},
	}
	return c.doData(ctx, engine.OpStartWorkflow, http.MethodPost, c.workflowPath(c.namespace, opts.WorkflowID), body, nil)
}

// DescribeWorkflow возвращает описание execution.
func (c *Client) DescribeWorkflow(ctx context.Context, namespace, workflowID string) (*engine.WorkflowDescription, error) {
	var desc engine.WorkflowDescription
	if err := c.doData(ctx, engine.OpDescribeWorkflow, http.MethodGet, c.workflowPath(namespace, workflowID), nil, &desc); err != nil {
		return nil, err
	}
	desc.Status = domain.ParseExecutionStatus(string(desc.Status))
	return &desc, nil
}

// QueryWorkflow выполняет query.
func (c *Client) QueryWorkflow(ctx context.Context, workflowID, queryType string, result any) error {
	path := c.workflowPath(c.namespace, workflowID) + "/query/" + url.PathEscape(queryType)

	var resp queryResponse
	if err := c.doData(ctx, engine.OpQueryWorkflow, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("decode query %s result: %w", queryType, err)
	}
	return nil
}

// GetWorkflowResult ждёт завершения execution через long-poll.
//
// Пока сервер отвечает нефинальным статусом, запрос повторяется
// через PollInterval. Ожидание прерывается отменой ctx.
func (c *Client) GetWorkflowResult(ctx context.Context, workflowID string, result any) error {
	path := c.workflowPath(c.namespace, workflowID) + "/result?wait=true"

	for {
		var resp resultResponse
		if err := c.doDataWith(ctx, c.waitClient, engine.OpGetWorkflowResult, http.MethodGet, path, nil, &resp); err != nil {
			return err
		}

		status := domain.ParseExecutionStatus(string(resp.Status))
		switch {
		case status == domain.ExecutionStatusCompleted:
			if len(resp.Result) == 0 || result == nil {
				return nil
			}
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("decode workflow %s result: %w", workflowID, err)
			}
			return nil

		case status.IsFailure():
			failed := &engine.WorkflowFailedError{WorkflowID: workflowID, Status: status}
			if resp.Failure != nil {
				failed.Message = resp.Failure.Message
			}
			return failed
		}

		c.logger.Debug("workflow not finished yet", "workflow_id", workflowID, "status", status.Short())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// --- Schedules ---

// CreateSchedule создаёт schedule.
func (c *Client) CreateSchedule(ctx context.Context, scheduleID string, sched engine.Schedule, opts engine.ScheduleOptions) error {
	body := createScheduleRequest{Schedule: sched, Options: opts}
	return c.doData(ctx, engine.OpCreateSchedule, http.MethodPost, c.schedulePath(scheduleID), body, nil)
}

// DescribeSchedule возвращает описание schedule.
func (c *Client) DescribeSchedule(ctx context.Context, scheduleID string) (*engine.ScheduleDescription, error) {
	var desc engine.ScheduleDescription
	if err := c.doData(ctx, engine.OpDescribeSchedule, http.MethodGet, c.schedulePath(scheduleID), nil, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

// UpdateSchedule читает schedule, применяет fn и сохраняет результат.
func (c *Client) UpdateSchedule(ctx context.Context, scheduleID string, fn engine.ScheduleUpdater) error {
	desc, err := c.DescribeSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}

	upd, err := fn(engine.ScheduleUpdateInput{Description: *desc})
	if err != nil {
		return fmt.Errorf("build schedule update: %w", err)
	}
	if upd == nil || upd.Schedule == nil {
		return nil
	}

	body := updateScheduleRequest{Schedule: *upd.Schedule}
	return c.doData(ctx, engine.OpUpdateSchedule, http.MethodPut, c.schedulePath(scheduleID), body, nil)
}

// UnpauseSchedule снимает schedule с паузы.
func (c *Client) UnpauseSchedule(ctx context.Context, scheduleID, note string) error {
	return c.doData(ctx, engine.OpUnpauseSchedule, http.MethodPost, c.schedulePath(scheduleID)+"/unpause", unpauseRequest{Note: note}, nil)
}

// Close закрывает простаивающие соединения.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// --- Transport ---

func (c *Client) doData(ctx context.Context, op, method, path string, body any, result any) error {
	return c.doDataWith(ctx, c.httpClient, op, method, path, body, result)
}

func (c *Client) doDataWith(ctx context.Context, hc *http.Client, op, method, path string, body any, result any) error {
	resp, err := c.do(ctx, hc, op, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent || result == nil {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	if err := json.Unmarshal(dr.Data, result); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, op, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, engine.NewConnectivityError(op, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := hc.Do(req)
	if err != nil {
		// Отмена вызывающей стороной — не проблема соединения
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, engine.NewConnectivityError(op, err)
	}
	return resp, nil
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = engine.ErrNotFound
	case http.StatusConflict:
		sentinel = engine.ErrAlreadyExists
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error.Message == "" {
		if sentinel != nil {
			return sentinel
		}
		return fmt.Errorf("engine API error: HTTP %d", resp.StatusCode)
	}

	if sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, er.Error.Message)
	}
	return errors.New(er.Error.Code + ": " + er.Error.Message)
}
