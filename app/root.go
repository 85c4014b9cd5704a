// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
)

var (
	cfg        config.Config
	configPath string // directory holding main.toml

	rootCmd = &cobra.Command{
		Use:   "go-insights-admin",
		Short: "GoInsights-Admin is a login and administration service for BI dashboards",
		Long: `GoInsights-Admin is a web-based administration service for a
business-intelligence dashboard platform. It provides local and OAuth2 logins
(onadata, openlmis) and provisions custom roles from configuration at startup.`,
		Args: cobra.OnlyValidArgs,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(
		&configPath,
		"config",
		"",
		"Path to the configuration directory (default ./etc/)",
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
