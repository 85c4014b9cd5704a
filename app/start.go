package app

import (
	"github.com/spf13/cobra"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/daemon"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/logger"
)

var (
	devMode      bool
	browseStatic bool
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false,
		"dev mode: plain http session cookies, verbose database log")
	startCmd.Flags().BoolVar(&browseStatic, "browse", false,
		"serve directory listings for static assets, development only")

	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the GoInsights-Admin web service",
	// config and logger have to stand before the daemon starts
	PreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err
		}

		// the command line flags win over the config file
		if devMode {
			cfg.DevMode = true
		}

		if browseStatic {
			cfg.Webserver.BrowseStatic = true
		}

		return logger.Init(cfg.Log)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return daemon.New(&cfg).Start()
	},
}
