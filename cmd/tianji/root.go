package main

import (
	"github.com/spf13/cobra"

	"github.com/jhsu-tw/tianji/internal/api"
	"github.com/jhsu-tw/tianji/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "tianji",
	Short: "Divination chat backend with LLM-guided readings",
	Long: `Tianji is a divination chat backend that pairs deterministic Chinese
divination computation with LLM-generated interpretation.

Each session is a small state machine that collects the user's
information, runs the reading, and carries a follow-up conversation.

Available modules:
  - Life numbers (生命靈數) with nine-grid analysis
  - Angel number readings
  - Coin block divination (擲筊)
  - Auspicious date selection (擇日)`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.tianji/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "tianji home directory (default: ~/.tianji)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
