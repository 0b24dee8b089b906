package transfer

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
	"github.com/steveandroulakis/money-transfer-demo/internal/telemetry"
)

// WorkflowTypeTransfer — тип workflow, который выполняет перевод.
const WorkflowTypeTransfer = "AccountTransferWorkflow"

// QueryTransferStatus — имя query, возвращающего TransferState.
const QueryTransferStatus = "transferStatus"

// Счета по умолчанию для периодических переводов.
const (
	DefaultScheduleFromAccount = "account1"
	DefaultScheduleToAccount   = "account2"
)

var tracer = otel.Tracer("github.com/steveandroulakis/money-transfer-demo/internal/transfer")

// Service — фасад операций с переводами.
type Service struct {
	engine      engine.Client
	namespace   string
	taskQueue   string
	logger      *slog.Logger
	metrics     *telemetry.Metrics
	newID       func() string
	fromAccount string
	toAccount   string
}

// Config — конфигурация Service.
type Config struct {
	Engine    engine.Client
	Namespace string
	TaskQueue string
	Logger    *slog.Logger
	Metrics   *telemetry.Metrics // опционально

	// IDGenerator подменяет GenerateReferenceID (для тестов).
	IDGenerator func() string

	// Счета периодического перевода (default: account1 → account2).
	ScheduleFromAccount string
	ScheduleToAccount   string
}

// New создаёт новый Service.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	newID := cfg.IDGenerator
	if newID == nil {
		newID = GenerateReferenceID
	}

	from, to := cfg.ScheduleFromAccount, cfg.ScheduleToAccount
	if from == "" {
		from = DefaultScheduleFromAccount
	}
	if to == "" {
		to = DefaultScheduleToAccount
	}

	return &Service{
		engine:      cfg.Engine,
		namespace:   cfg.Namespace,
		taskQueue:   cfg.TaskQueue,
		logger:      logger,
		metrics:     cfg.Metrics,
		newID:       newID,
		fromAccount: from,
		toAccount:   to,
	}
}

// startOptions строит параметры запуска для reference number.
func (s *Service) startOptions(workflowID string) engine.StartOptions {
	return engine.StartOptions{
		WorkflowID: workflowID,
		TaskQueue:  s.taskQueue,
	}
}

// endSpan закрывает span, отмечая ошибку.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
