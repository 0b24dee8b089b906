package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
	"github.com/steveandroulakis/money-transfer-demo/internal/transfer"
)

// Transfers — операции фасада, которые использует CLI. Реализуется *transfer.Service.
type Transfers interface {
	StartTransfer(ctx context.Context, in domain.TransferInput) (string, error)
	Status(ctx context.Context, workflowID string) (domain.ExecutionStatus, error)
	QueryState(ctx context.Context, workflowID string) (*domain.TransferState, error)
	AwaitResult(ctx context.Context, workflowID string, timeout time.Duration) (*domain.TransferOutput, error)
	CreateSchedule(ctx context.Context, req domain.ScheduleRequest) (string, error)
	UnpauseSchedule(ctx context.Context, scheduleID, note string) error
	DescribeSchedule(ctx context.Context, scheduleID string) (*engine.ScheduleDescription, error)
}

var _ Transfers = (*transfer.Service)(nil)

// Параметры перевода по умолчанию.
const (
	defaultAmount      = 45
	defaultFromAccount = transfer.DefaultScheduleFromAccount
	defaultToAccount   = transfer.DefaultScheduleToAccount
)

// NewTransferCmd создаёт группу команд для переводов.
func NewTransferCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Start and inspect transfers",
	}

	cmd.AddCommand(
		newTransferStartCmd(clientFn, outputFn),
		newTransferRunCmd(clientFn, outputFn),
		newTransferStatusCmd(clientFn, outputFn),
		newTransferStateCmd(clientFn, outputFn),
		newTransferResultCmd(clientFn, outputFn),
	)

	return cmd
}

// transferFlags регистрирует флаги суммы и счетов.
func transferFlags(cmd *cobra.Command, in *domain.TransferInput) {
	cmd.Flags().IntVar(&in.Amount, "amount", defaultAmount, "Amount in minor units (cents)")
	cmd.Flags().StringVar(&in.FromAccount, "from", defaultFromAccount, "Source account")
	cmd.Flags().StringVar(&in.ToAccount, "to", defaultToAccount, "Destination account")
}

func newTransferStartCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	var in domain.TransferInput

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a transfer without waiting for it",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := client.StartTransfer(cmd.Context(), in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Transfer %s of %s started", id, formatAmount(in.AmountDecimal())))
			return out.Fields([][2]string{
				{"Reference", id},
				{"From", in.FromAccount},
				{"To", in.ToAccount},
				{"Amount", formatAmount(in.AmountDecimal())},
			}, map[string]any{
				"reference":   id,
				"fromAccount": in.FromAccount,
				"toAccount":   in.ToAccount,
				"amount":      in.Amount,
			})
		},
	}

	transferFlags(cmd, &in)
	return cmd
}

func newTransferRunCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	var in domain.TransferInput
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a transfer and wait for its result",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := client.StartTransfer(cmd.Context(), in)
			if err != nil {
				return err
			}
			out.Success(fmt.Sprintf("Transfer %s started, waiting for result", id))

			res, err := client.AwaitResult(cmd.Context(), id, timeout)
			if err != nil {
				return fmt.Errorf("transfer %s: %w", id, err)
			}
			return printResult(out, id, res)
		},
	}

	transferFlags(cmd, &in)
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Maximum time to wait (0 waits until interrupted)")
	return cmd
}

func newTransferStatusCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status REFERENCE",
		Short: "Show the engine status of a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			status, err := client.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return out.Fields([][2]string{
				{"Reference", args[0]},
				{"Status", status.Short()},
			}, map[string]any{
				"reference": args[0],
				"status":    status,
			})
		},
	}
}

func newTransferStateCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "state REFERENCE",
		Short: "Query the live state of a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			state, err := client.QueryState(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return out.Fields([][2]string{
				{"Reference", args[0]},
				{"Workflow status", state.WorkflowStatus},
				{"Transfer state", state.TransferState},
				{"Progress", fmt.Sprintf("%d%%", state.ProgressPercentage)},
				{"Approval time", fmt.Sprintf("%ds", state.ApprovalTime)},
				{"Charge ID", state.ChargeResult.ChargeID},
			}, state)
		},
	}
}

func newTransferResultCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "result REFERENCE",
		Short: "Wait for a transfer to finish and show its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			res, err := client.AwaitResult(cmd.Context(), args[0], timeout)
			if err != nil {
				return err
			}
			return printResult(out, args[0], res)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Maximum time to wait (0 waits until interrupted)")
	return cmd
}

func printResult(out *Output, id string, res *domain.TransferOutput) error {
	return out.Fields([][2]string{
		{"Reference", id},
		{"Charge ID", res.ChargeResult.ChargeID},
	}, res)
}
