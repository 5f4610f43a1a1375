package main

import (
	"os"

	"github.com/spf13/cobra"

	"paranoid/internal/interfaces/cli/migrate"
	"paranoid/internal/interfaces/cli/trash"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paranoid",
		Short: "Paranoid - soft-delete administration",
		Long:  `Administrative tooling for the soft-delete engine: schema migrations, demo seed data, and trash management (list, restore, purge).`,
	}

	rootCmd.AddCommand(
		migrate.NewCommand(),
		trash.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
