package cli

import (
	"fmt"
	"strings"

	"github.com/milou-sh/milou-cli/internal/output"
	"github.com/spf13/cobra"
)

var validateMinDays int

var validateCmd = &cobra.Command{
	Use:   "validate [domain]",
	Short: "Validate the installed certificate pair",
	Long: `Run the full validation pipeline against the installed pair: PEM
structure of both halves, key/certificate match, expiry against a minimum
remaining validity, and domain coverage.

A domain mismatch is reported but does not fail validation on its own.

Examples:
  milou validate
  milou validate shop.example.com
  milou validate --min-days 30`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().IntVar(&validateMinDays, "min-days", 0, "Minimum days of remaining validity (default from config)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, ctl, err := loadController()
	if err != nil {
		return err
	}
	domain := resolveDomain(args, cfg)

	minDays := validateMinDays
	if minDays == 0 {
		minDays = cfg.MinDaysValid
	}

	report := ctl.Validate(domain, minDays)

	if jsonOutput {
		if err := output.JSON(report); err != nil {
			return err
		}
		if !report.Passed {
			return fmt.Errorf("validation failed for %s", domain)
		}
		return nil
	}

	if !report.Passed {
		for _, problem := range report.Problems {
			output.Error("%s", problem)
		}
		return fmt.Errorf("validation failed for %s: %s", domain, strings.Join(report.Problems, "; "))
	}

	for _, warning := range report.Warnings {
		output.Warn("%s", warning)
	}
	output.Success("Certificate for %s is valid (%d days remaining)", domain, report.DaysUntilExpiry)
	return nil
}
