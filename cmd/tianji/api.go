package main

import (
	"github.com/spf13/cobra"

	"github.com/jhsu-tw/tianji/internal/server/endpoints"
	"github.com/jhsu-tw/tianji/internal/session"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Tianji server via HTTP.

These commands require a running server (tianji serve).
Use --server to specify a custom server URL.

Examples:
  tianji api health                             # Check server health
  tianji api angel free init --tone friendly    # Start a free angel number session
  tianji api angel free chat <session-id> "我常看到 1111"
  tianji api angel free reset <session-id>      # Discard a session`,
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

// moduleCommand builds the free/paid command tree for one divination module.
func moduleCommand(use, short, module string) *cobra.Command {
	moduleCmd := &cobra.Command{
		Use:   use,
		Short: short,
	}
	for _, tier := range []string{session.TierFree, session.TierPaid} {
		tierCmd := &cobra.Command{
			Use:   tier,
			Short: short + " (" + tier + " tier)",
		}
		tierCmd.AddCommand((&endpoints.InitEndpoint{Module: module, Tier: tier}).Command(getServerURL))
		tierCmd.AddCommand((&endpoints.ChatEndpoint{Module: module, Tier: tier}).Command(getServerURL))
		tierCmd.AddCommand((&endpoints.ResetEndpoint{Module: module, Tier: tier}).Command(getServerURL))
		moduleCmd.AddCommand(tierCmd)
	}
	return moduleCmd
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.RootEndpoint{}).Command(getServerURL))

	// One command group per divination module
	apiCmd.AddCommand(moduleCommand("life", "Life number readings", session.ModuleLifenum))
	apiCmd.AddCommand(moduleCommand("angel", "Angel number readings", session.ModuleAngelnum))
	apiCmd.AddCommand(moduleCommand("divination", "Coin block divination", session.ModuleDivination))
	apiCmd.AddCommand(moduleCommand("auspicious", "Auspicious date selection", session.ModuleAuspicious))

	rootCmd.AddCommand(apiCmd)
}
