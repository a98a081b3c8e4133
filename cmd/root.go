package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Persistent flags shared by every command.
var (
	configFile string
	logLevel   string
	logFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jstestctl",
	Short: "Run JavaScript shell tests against MongoDB with one or more clients",
	Long: `jstestctl runs JavaScript test scripts through the mongo shell.

Each script becomes a test case that can run with several concurrent clients.
Every client gets its own copy of the test's settings, told apart by
TestData.threadID, and the test case passes only when every client succeeds.
Test cases run on a fixed number of jobs, each owning a data directory and
a range of ports.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. a failing suite)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "jstestctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newRunCmd())

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default layers ~/.config/jstestctl/config.yaml and .jstestctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", completeLogLevelFlag)
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", completeLogFormatFlag)
}

// completeLogLevelFlag provides shell completion for the log-level flag
func completeLogLevelFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
}

// completeLogFormatFlag provides shell completion for the log-format flag
func completeLogFormatFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
}
