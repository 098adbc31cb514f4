// Package commands implements the eventringctl subcommand tree.
package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"

	logLevel string
	log      = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "eventringctl",
	Short: "Create, record into, and tail shared-memory event rings",
	Long: `eventringctl operates event rings: fixed-capacity, single-writer/
many-reader, lock-free broadcast buffers backed by a memory-mapped file.

Use "eventringctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		lvl, err := logrus.ParseLevel(logLevel)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		log.SetLevel(lvl)
	},
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(inspectCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print eventringctl's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("eventringctl %s (commit: %s)\n", Version, Commit)
		return nil
	},
}
