package transfer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
)

// AwaitResult блокируется до завершения execution и возвращает её результат.
//
// timeout > 0 ограничивает ожидание; timeout == 0 ждёт, пока не отменят ctx.
// Для неуспешной execution возвращается ошибка, содержащая
// *engine.WorkflowFailedError.
func (s *Service) AwaitResult(ctx context.Context, workflowID string, timeout time.Duration) (out *domain.TransferOutput, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "transfer.AwaitResult",
		trace.WithAttributes(attribute.String("workflow_id", workflowID)))
	defer func() { endSpan(span, err) }()

	out = &domain.TransferOutput{}
	if err := s.engine.GetWorkflowResult(ctx, workflowID, out); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", workflowID, err)
	}

	return out, nil
}
