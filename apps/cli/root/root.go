package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the gym admin CLI. Subcommands (auth, migrate, tenant) are attached here.
var rootCmd = &cobra.Command{
	Use:           "palmyra-gym",
	Short:         "Palmyra Gym admin CLI",
	Long:          "Administrative utilities for Palmyra Gym (database migrations, dev tokens, tenant registration).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
