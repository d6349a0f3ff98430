// Package commands implements the kdcd CLI, grounded on
// marmos91-dittofs's cmd/dittofs/commands package: one file per
// subcommand, a root command that owns the --config persistent flag
// and SilenceUsage/SilenceErrors, and package-level Version/Commit/Date
// vars meant to be set via -ldflags at build time.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chemikadze/dirkdc/config"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "kdcd",
	Short: "dirkdc - an embeddable Kerberos V5 ticket-granting service",
	Long: `kdcd runs the dirkdc ticket-granting service: a TGS-REQ/TGS-REP
state machine implementing RFC 4120's ticket-granting exchange.

Use "kdcd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main().
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, exposed for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/dirkdc/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(genKeysCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the --config flag value, or
// config.DefaultConfigPath() when the flag is unset.
func GetConfigFile() string {
	if cfgFile == "" {
		return config.DefaultConfigPath()
	}
	return cfgFile
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
