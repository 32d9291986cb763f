package cli

import (
	"fmt"

	"github.com/milou-sh/milou-cli/internal/lifecycle"
	"github.com/milou-sh/milou-cli/internal/output"
	"github.com/milou-sh/milou-cli/internal/store"
	"github.com/spf13/cobra"
)

var (
	setupMode   string
	setupSource string
	setupForce  bool
	setupEmail  string
)

var setupCmd = &cobra.Command{
	Use:   "setup [domain]",
	Short: "Acquire and install an SSL certificate",
	Long: `Acquire and install the SSL certificate pair for a domain.

The default mode picks a strategy automatically: an existing valid pair is
preserved, local domains get a self-signed certificate, and public domains
try Let's Encrypt with a self-signed fallback. The prior pair is backed up
before any overwrite and restored if the new pair fails validation.

Examples:
  milou setup
  milou setup shop.example.com
  milou setup shop.example.com --mode letsencrypt --email ops@example.com
  milou setup --mode existing --source /etc/letsencrypt/live/shop.example.com
  milou setup --mode generate --force
  milou setup --mode none`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVarP(&setupMode, "mode", "m", "auto", "Acquisition mode (auto, generate, existing, letsencrypt, none)")
	setupCmd.Flags().StringVarP(&setupSource, "source", "s", "", "Certificate source path (for existing mode)")
	setupCmd.Flags().BoolVarP(&setupForce, "force", "f", false, "Replace an existing valid certificate")
	setupCmd.Flags().StringVarP(&setupEmail, "email", "e", "", "Account email for Let's Encrypt registration")

	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	mode, err := lifecycle.ParseMode(setupMode)
	if err != nil {
		return err
	}
	if mode == lifecycle.ModeExisting && setupSource == "" {
		return fmt.Errorf("--source is required for mode existing")
	}

	cfg, ctl, err := loadController()
	if err != nil {
		return err
	}
	if setupEmail != "" {
		cfg.Email = setupEmail
	}
	domain := resolveDomain(args, cfg)

	result, err := ctl.Setup(lifecycle.SetupOptions{
		Domain: domain,
		Mode:   mode,
		Source: setupSource,
		Force:  setupForce,
	})
	if err != nil {
		return err
	}

	switch {
	case result.Removed:
		return outputResult(result, "SSL certificates removed for %s", domain)
	case result.Preserved:
		return outputResult(result, "Existing certificate for %s is valid, preserved", domain)
	}

	if result.Report != nil && result.Report.ExpiringSoon {
		output.Warn("Certificate expires in %d days", result.Report.DaysUntilExpiry)
	}
	return outputResult(result, "Certificate (%s) installed for %s", typeLabel(result.Type), domain)
}

func typeLabel(t store.AcquisitionType) string {
	switch t {
	case store.TypeSelfSigned:
		return "self-signed"
	case store.TypeLetsEncrypt:
		return "Let's Encrypt"
	case store.TypeExisting:
		return "imported"
	case store.TypePreserved:
		return "preserved"
	}
	return string(t)
}
