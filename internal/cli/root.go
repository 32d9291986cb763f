package cli

import (
	"os"

	"github.com/milou-sh/milou-cli/internal/logger"
	"github.com/milou-sh/milou-cli/internal/output"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	quiet      bool
	verbose    bool
	sslDir     string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "milou",
	Short: "SSL certificate lifecycle management CLI",
	Long: `milou manages the SSL certificate pair of a single deployment.

It acquires certificates (self-signed, Let's Encrypt, or imported from an
existing source), validates them, and keeps timestamped backups so every
overwrite can be rolled back.`,
}

// Execute runs the root command
func Execute() {
	// Initialize logger and output based on flags (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
		output.SetQuiet(quiet)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVar(&sslDir, "ssl-dir", "", "Override the SSL directory from config")
}
