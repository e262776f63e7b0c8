package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/zjrosen/dread/cmd.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version",
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "dread %s\n", Version)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
