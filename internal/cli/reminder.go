package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// NewReminderCmd создаёт группу команд для просмотра журнала напоминаний.
func NewReminderCmd(reposFn func() (*Repos, error), outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminder",
		Short: "Inspect the issued-reminder journal",
	}

	cmd.AddCommand(newReminderListCmd(reposFn, outputFn))

	return cmd
}

func newReminderListCmd(reposFn func() (*Repos, error), outputFn func() *Output) *cobra.Command {
	var days int
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recently issued reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := reposFn()
			if err != nil {
				return err
			}
			defer repos.Close()
			out := outputFn()

			since := time.Now().AddDate(0, 0, -days)
			reminders, err := repos.Reminders.ListSince(cmd.Context(), since, limit)
			if err != nil {
				return err
			}

			headers := []string{"KEY", "ENTITY", "CATEGORY", "LANE", "ISSUED"}
			rows := make([][]string, len(reminders))
			for i, r := range reminders {
				rows[i] = []string{
					r.Key,
					strconv.FormatInt(r.EntityID, 10),
					string(r.Category),
					r.Lane,
					r.CreatedAt.Format(time.RFC3339),
				}
			}

			out.Print(headers, rows, reminders)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "How many days back to look")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of reminders")
	return cmd
}
