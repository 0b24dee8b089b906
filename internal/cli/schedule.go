package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
)

// NewScheduleCmd создаёт группу команд для управления schedules.
func NewScheduleCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage recurring transfers",
	}

	cmd.AddCommand(
		newScheduleCreateCmd(clientFn, outputFn),
		newScheduleShowCmd(clientFn, outputFn),
		newScheduleUnpauseCmd(clientFn, outputFn),
	)

	return cmd
}

func newScheduleCreateCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	var req domain.ScheduleRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a paused schedule of recurring transfers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := client.CreateSchedule(cmd.Context(), req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule %s created (paused)", id))
			return out.Fields([][2]string{
				{"Schedule", id},
				{"Amount", formatAmount(domain.MinorUnits(req.Amount))},
				{"Every", describeEvery(req)},
				{"Count", strconv.Itoa(req.Count)},
			}, map[string]any{
				"scheduleId": id,
				"request":    req,
			})
		},
	}

	cmd.Flags().IntVar(&req.Amount, "amount", defaultAmount, "Amount in minor units (cents) per transfer")
	cmd.Flags().IntVar(&req.IntervalSec, "interval", 0, "Interval between transfers in seconds")
	cmd.Flags().StringVar(&req.CronExpr, "cron", "", "Cron expression (overrides --interval)")
	cmd.Flags().IntVar(&req.Count, "count", 1, "Number of transfers to run")

	return cmd
}

func newScheduleShowCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show SCHEDULE_ID",
		Short: "Show schedule details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			desc, err := client.DescribeSchedule(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			sched := desc.Schedule
			next := ""
			if len(desc.Info.NextActionTimes) > 0 {
				next = desc.Info.NextActionTimes[0].Format(time.RFC3339)
			}

			return out.Fields([][2]string{
				{"Schedule", desc.ID},
				{"Workflow", sched.Action.WorkflowType},
				{"Spec", describeSpec(sched.Spec)},
				{"Paused", strconv.FormatBool(sched.State.Paused)},
				{"Remaining", strconv.Itoa(sched.State.RemainingActions)},
				{"Overlap", string(sched.Policy.Overlap.OrDefault())},
				{"Actions", strconv.Itoa(desc.Info.NumActions)},
				{"Next", next},
			}, desc)
		},
	}
}

func newScheduleUnpauseCmd(clientFn func() Transfers, outputFn func() *Output) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "unpause SCHEDULE_ID",
		Short: "Unpause a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.UnpauseSchedule(cmd.Context(), args[0], note); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule %s unpaused", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Note recorded with the unpause")

	return cmd
}

func describeEvery(req domain.ScheduleRequest) string {
	if req.CronExpr != "" {
		return req.CronExpr
	}
	return (time.Duration(req.IntervalSec) * time.Second).String()
}

func describeSpec(spec domain.ScheduleSpec) string {
	parts := make([]string, 0, len(spec.Intervals)+len(spec.CronExpressions))
	for _, iv := range spec.Intervals {
		parts = append(parts, "every "+iv.String())
	}
	for _, expr := range spec.CronExpressions {
		parts = append(parts, "cron "+expr)
	}
	return strings.Join(parts, ", ")
}
