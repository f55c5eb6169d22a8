package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkoval/kadrovik/internal/domain"
	"github.com/dkoval/kadrovik/internal/repo"
)

// NewOutboxCmd создаёт группу команд для работы с outbox.
func NewOutboxCmd(reposFn func() (*Repos, error), outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and manage the notification outbox",
	}

	cmd.AddCommand(
		newOutboxListCmd(reposFn, outputFn),
		newOutboxStatsCmd(reposFn, outputFn),
		newOutboxRequeueCmd(reposFn, outputFn),
	)

	return cmd
}

func newOutboxListCmd(reposFn func() (*Repos, error), outputFn func() *Output) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List outbox entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := reposFn()
			if err != nil {
				return err
			}
			defer repos.Close()
			out := outputFn()

			entries, err := repos.Outbox.List(cmd.Context(), repo.OutboxFilter{
				Status: domain.OutboxStatus(status),
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"KEY", "RECIPIENT", "STATUS", "ATTEMPTS", "NEXT ATTEMPT", "LAST ERROR"}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{
					e.Key,
					strconv.FormatInt(e.RecipientID, 10),
					string(e.Status),
					strconv.Itoa(e.Attempts),
					e.NextAttemptAt.Format(time.RFC3339),
					e.LastError,
				}
			}

			out.Print(headers, rows, entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, SENDING, SENT, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries")
	return cmd
}

func newOutboxStatsCmd(reposFn func() (*Repos, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := reposFn()
			if err != nil {
				return err
			}
			defer repos.Close()
			out := outputFn()

			stats, err := repos.Outbox.Stats(cmd.Context())
			if err != nil {
				return err
			}

			statuses := []domain.OutboxStatus{
				domain.OutboxStatusPending,
				domain.OutboxStatusSending,
				domain.OutboxStatusSent,
				domain.OutboxStatusFailed,
			}

			headers := []string{"STATUS", "COUNT"}
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, []string{string(s), strconv.FormatInt(stats[s], 10)})
			}

			out.Print(headers, rows, stats)
			return nil
		},
	}
}

func newOutboxRequeueCmd(reposFn func() (*Repos, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <key>",
		Short: "Force an undelivered entry back to PENDING, eligible immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := reposFn()
			if err != nil {
				return err
			}
			defer repos.Close()
			out := outputFn()

			if err := repos.Outbox.Requeue(cmd.Context(), args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Entry %s requeued", args[0]))
			return nil
		},
	}
}
