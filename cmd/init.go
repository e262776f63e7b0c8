package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/dread/internal/config"
)

var flagInitForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long:  `Create a commented config file at --config, or ~/.config/dread/config.yaml.`,
	// Runs before any config exists.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&flagInitForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if flagConfig != "" {
		path = config.ExpandHome(flagConfig)
	}
	if _, err := os.Stat(path); err == nil && !flagInitForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return err
}
