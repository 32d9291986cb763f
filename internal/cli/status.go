package cli

import (
	"fmt"
	"strconv"

	"github.com/milou-sh/milou-cli/internal/lifecycle"
	"github.com/milou-sh/milou-cli/internal/output"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [domain]",
	Short: "Show certificate status",
	Long: `Show the health of the installed certificate pair.

Health is derived from the PEM files themselves; the metadata sidecar is
shown for context only. The command exits non-zero when the certificate
needs attention (missing, malformed, mismatched, or expired).

Examples:
  milou status
  milou status shop.example.com
  milou status --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, ctl, err := loadController()
	if err != nil {
		return err
	}
	domain := resolveDomain(args, cfg)

	st, err := ctl.Status(domain)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := output.JSON(st); err != nil {
			return err
		}
	} else {
		printStatus(st, ctl.Store().Layout().CertPath())
	}

	if !st.Healthy {
		return fmt.Errorf("certificate for %s needs attention", domain)
	}
	return nil
}

func printStatus(st *lifecycle.Status, certPath string) {
	if !st.Installed {
		output.Warn("No certificate installed at %s", certPath)
		return
	}

	rows := [][]string{
		{"Domain", st.Domain},
		{"Certificate", certPath},
		{"Healthy", yesNo(st.Healthy)},
	}
	if st.Type != "" {
		rows = append(rows, []string{"Acquired via", typeLabel(st.Type)})
	}
	if r := st.Report; r != nil {
		if !r.NotAfter.IsZero() {
			rows = append(rows, []string{"Expires", r.NotAfter.Format("2006-01-02")})
			rows = append(rows, []string{"Days remaining", strconv.Itoa(r.DaysUntilExpiry)})
		}
		rows = append(rows, []string{"Covers domain", yesNo(r.DomainMatches)})
	}
	output.Table([]string{"FIELD", "VALUE"}, rows)

	if r := st.Report; r != nil {
		if r.ExpiringSoon && !r.Expired {
			output.Warn("Certificate expires in %d days, consider renewing", r.DaysUntilExpiry)
		}
		for _, problem := range r.Problems {
			output.Error("%s", problem)
		}
	}
}
