package transfer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
	"github.com/steveandroulakis/money-transfer-demo/internal/telemetry"
)

// Status возвращает статус execution по версии движка.
func (s *Service) Status(ctx context.Context, workflowID string) (status domain.ExecutionStatus, err error) {
	ctx, span := tracer.Start(ctx, "transfer.Status",
		trace.WithAttributes(attribute.String("workflow_id", workflowID)))
	defer func() { endSpan(span, err) }()

	return s.describeStatus(ctx, workflowID)
}

func (s *Service) describeStatus(ctx context.Context, workflowID string) (domain.ExecutionStatus, error) {
	desc, err := s.engine.DescribeWorkflow(ctx, s.namespace, workflowID)
	if err != nil {
		return domain.ExecutionStatusUnspecified, fmt.Errorf("describe workflow %s: %w", workflowID, err)
	}
	return desc.Status, nil
}

// QueryState возвращает снимок состояния перевода.
//
// Если движок сообщает FAILED, поле WorkflowStatus снимка перезаписывается
// на "FAILED" независимо от того, что вернула сама execution.
func (s *Service) QueryState(ctx context.Context, workflowID string) (state *domain.TransferState, err error) {
	ctx, span := tracer.Start(ctx, "transfer.QueryState",
		trace.WithAttributes(attribute.String("workflow_id", workflowID)))
	defer func() { endSpan(span, err) }()

	logger := telemetry.WithWorkflowID(s.logger, workflowID)

	status, err := s.describeStatus(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	logger.Info("workflow status", "status", status.Short())

	state = &domain.TransferState{}
	if err := s.engine.QueryWorkflow(ctx, workflowID, QueryTransferStatus, state); err != nil {
		return nil, fmt.Errorf("query %s on %s: %w", QueryTransferStatus, workflowID, err)
	}

	if status == domain.ExecutionStatusFailed && state.WorkflowStatus != domain.WorkflowStatusFailed {
		logger.Debug("overriding workflow status from engine",
			"reported", state.WorkflowStatus,
			"engine", status.Short(),
		)
		state.WorkflowStatus = domain.WorkflowStatusFailed
		s.metrics.StateOverridden()
	}

	return state, nil
}
