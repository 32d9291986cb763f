package cli

import (
	"github.com/milou-sh/milou-cli/internal/output"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove the installed certificate pair",
	Long: `Remove the installed certificate pair from the SSL directory.

The pair and its metadata are archived into the backup directory before
removal, so a later setup can be rolled back to them manually. Removing
when nothing is installed is not an error.

Examples:
  milou cleanup
  milou cleanup --ssl-dir /opt/milou/ssl`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	_, ctl, err := loadController()
	if err != nil {
		return err
	}

	hadPair := ctl.Store().Exists()
	if err := ctl.Cleanup(); err != nil {
		return err
	}

	if !hadPair {
		output.Info("No certificate installed, nothing to remove")
		return nil
	}
	return outputResult(
		map[string]interface{}{"success": true, "removed": true},
		"SSL certificates removed (backup kept in %s)", ctl.Store().Layout().BackupDir(),
	)
}
