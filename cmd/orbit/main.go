package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

// GetVersionInfo returns the current version and commit information.
func GetVersionInfo() (string, string) {
	return version, commit
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "orbit",
		Short:         "Orbit authentication service",
		Long:          "Orbit issues and verifies signed session tokens for the orbit terminal client.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath, cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.SetVersionTemplate(versionText())

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $HOME/.config/orbit/config.yml)")
	cmd.Flags().String("addr", "", "listen address (host:port)")
	cmd.Flags().String("env", "", "development or production")
	cmd.Flags().String("log-level", "", "trace, debug, info, warn or error")
	cmd.Flags().String("log-format", "", "console or json")

	cmd.AddCommand(newHashPasswordCmd())
	return cmd
}

func versionText() string {
	return fmt.Sprintf("Orbit - Authentication Service\n"+
		"  Version:    %s\n"+
		"  Commit:     %s\n"+
		"  Built:      %s\n"+
		"  Go version: %s\n", version, commit, buildTime, goVersion)
}
