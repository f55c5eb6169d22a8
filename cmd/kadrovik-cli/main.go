// Kadrovik CLI — операторская утилита фоновых job'ов HR-системы.
// Работает напрямую с базой (переменная окружения DB_URL).
//
// Использование:
//
//	kadrovik [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	outbox    Очередь доставки уведомлений
//	reminder  Журнал выданных напоминаний
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkoval/kadrovik/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "kadrovik",
		Short:         "Kadrovik CLI — HR background jobs operations tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	reposFn := func() (*cli.Repos, error) { return cli.NewRepos(context.Background()) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewOutboxCmd(reposFn, outputFn),
		cli.NewReminderCmd(reposFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
