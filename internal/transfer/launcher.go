package transfer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
	"github.com/steveandroulakis/money-transfer-demo/internal/telemetry"
)

// StartTransfer запускает execution перевода и возвращает её reference number.
//
// Возвращается сразу после того, как движок принял start; завершения
// execution не ждёт. Ошибки движка возвращаются обёрнутыми через %w.
// Повторный ID (engine.ErrAlreadyExists) не перезапускается с новым ID.
func (s *Service) StartTransfer(ctx context.Context, in domain.TransferInput) (id string, err error) {
	if err := in.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id = s.newID()

	ctx, span := tracer.Start(ctx, "transfer.StartTransfer", trace.WithAttributes(
		attribute.String("workflow_id", id),
		attribute.Int("amount", in.Amount),
	))
	defer func() { endSpan(span, err) }()

	if err := s.engine.StartWorkflow(ctx, WorkflowTypeTransfer, s.startOptions(id), in); err != nil {
		return "", fmt.Errorf("start transfer %s: %w", id, err)
	}

	s.metrics.TransferStarted()
	telemetry.WithWorkflowID(s.logger, id).Info("transfer requested",
		"amount", in.AmountDecimal().StringFixed(2),
		"from_account", in.FromAccount,
		"to_account", in.ToAccount,
		"task_queue", s.taskQueue,
	)

	return id, nil
}
