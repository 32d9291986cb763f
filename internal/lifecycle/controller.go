// Package lifecycle orchestrates the certificate lifecycle: strategy
// selection, the backup/acquire/validate/commit-or-rollback sequence,
// and status queries. It is the only caller that mutates the store, and
// it assumes single-writer access; concurrent setups against the same
// store are not supported.
package lifecycle

import (
	"fmt"
	"os"
	"strings"

	"github.com/milou-sh/milou-cli/internal/acquire"
	"github.com/milou-sh/milou-cli/internal/ca"
	"github.com/milou-sh/milou-cli/internal/config"
	"github.com/milou-sh/milou-cli/internal/errors"
	"github.com/milou-sh/milou-cli/internal/executor"
	"github.com/milou-sh/milou-cli/internal/logger"
	"github.com/milou-sh/milou-cli/internal/output"
	"github.com/milou-sh/milou-cli/internal/store"
	"github.com/milou-sh/milou-cli/internal/validate"
)

// Mode selects the acquisition strategy.
type Mode string

// Acquisition modes.
const (
	ModeAuto        Mode = "auto"
	ModeGenerate    Mode = "generate"
	ModeExisting    Mode = "existing"
	ModeLetsEncrypt Mode = "letsencrypt"
	ModeNone        Mode = "none"
)

// ParseMode converts a user-supplied string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeGenerate, ModeExisting, ModeLetsEncrypt, ModeNone:
		return Mode(s), nil
	case "":
		return ModeAuto, nil
	}
	return "", errors.Validation(fmt.Sprintf("invalid mode %q (valid: auto, generate, existing, letsencrypt, none)", s))
}

// Controller sequences certificate operations against a single store.
type Controller struct {
	cfg       *config.Config
	store     *store.Store
	authority ca.Authority
	exec      executor.CommandExecutor

	// LetsEncryptStrategy replaces the default Let's Encrypt strategy.
	// Tests use it to avoid binding real ports.
	LetsEncryptStrategy acquire.Strategy
}

// New creates a Controller over the store rooted at cfg.SSLDir.
func New(cfg *config.Config, st *store.Store, authority ca.Authority, exec executor.CommandExecutor) *Controller {
	return &Controller{
		cfg:       cfg,
		store:     st,
		authority: authority,
		exec:      exec,
	}
}

// Store exposes the underlying store (status queries, tests).
func (c *Controller) Store() *store.Store {
	return c.store
}

// SetupOptions carries the arguments of a setup run.
type SetupOptions struct {
	Domain string
	Mode   Mode
	Source string
	Force  bool
}

// SetupResult reports what a setup run did.
type SetupResult struct {
	Domain    string                `json:"domain"`
	Type      store.AcquisitionType `json:"type,omitempty"`
	Preserved bool                  `json:"preserved"`
	Removed   bool                  `json:"removed,omitempty"`
	Report    *validate.Report      `json:"report,omitempty"`
}

// Setup acquires and installs a certificate pair for the requested mode.
// Every mutating path runs backup, then the strategy, then a full
// validation whose result is the commit signal: on failure the prior
// backup is restored and the error carries the causes.
func (c *Controller) Setup(opts SetupOptions) (*SetupResult, error) {
	if opts.Domain == "" {
		return nil, errors.Validation("domain cannot be empty")
	}
	if strings.ContainsAny(opts.Domain, " /") {
		return nil, errors.Validation(fmt.Sprintf("invalid domain %q", opts.Domain))
	}

	switch opts.Mode {
	case ModeNone:
		if err := c.Cleanup(); err != nil {
			return nil, err
		}
		return &SetupResult{Domain: opts.Domain, Removed: true}, nil

	case ModeGenerate:
		return c.runStrategy(c.selfSigned(), opts)

	case ModeLetsEncrypt:
		return c.runStrategy(c.letsEncrypt(), opts)

	case ModeExisting:
		return c.runStrategy(&acquire.Imported{Store: c.store, Source: opts.Source}, opts)

	case ModeAuto, "":
		return c.setupAuto(opts)
	}

	return nil, errors.Validation(fmt.Sprintf("invalid mode %q", opts.Mode))
}

// setupAuto implements the default decision: preserve a valid existing
// pair unless forced, self-sign for local domains, and try Let's Encrypt
// with a self-signed fallback for public ones.
func (c *Controller) setupAuto(opts SetupOptions) (*SetupResult, error) {
	if !opts.Force && c.store.Exists() {
		layout := c.store.Layout()
		report := validate.FullCheck(layout.CertPath(), layout.KeyPath(), opts.Domain, c.cfg.MinDaysValid)
		if report.Passed {
			// Zero mutation of the pair; only the advisory metadata moves
			if err := c.store.WriteMetadata(c.metadataFor(opts.Domain, store.TypePreserved)); err != nil {
				return nil, err
			}
			output.Info("Existing certificate is valid, preserving it")
			return &SetupResult{Domain: opts.Domain, Type: store.TypePreserved, Preserved: true, Report: report}, nil
		}
		logger.Info("Existing certificate failed validation, reacquiring: %v", report.Problems)
	}

	if isLocalDomain(opts.Domain) {
		return c.runStrategy(c.selfSigned(), opts)
	}

	if acquire.Eligible(opts.Domain) {
		result, err := c.runStrategy(c.letsEncrypt(), opts)
		if err == nil {
			return result, nil
		}
		output.Warn("Let's Encrypt failed (%v), falling back to self-signed", err)
	}

	return c.runStrategy(c.selfSigned(), opts)
}

// runStrategy executes the backup, acquire, validate, then commit or
// rollback sequence for one strategy.
func (c *Controller) runStrategy(strategy acquire.Strategy, opts SetupOptions) (*SetupResult, error) {
	hadPair := c.store.Exists()

	stamp, err := c.store.Backup()
	if err != nil {
		// An unsaved prior pair makes the pending overwrite unsafe
		if hadPair {
			return nil, errors.Wrap(errors.ErrCodeBackup, "backup failed, aborting before overwrite", err)
		}
		output.Warn("Backup failed: %v", err)
	}

	if err := strategy.Acquire(opts.Domain); err != nil {
		// A failed acquisition may have half-mutated the live files
		// (Install can lose the old key after replacing the cert), so the
		// rollback runs here too. Restoring over untouched files is a
		// no-op.
		c.rollback(stamp)
		return nil, err
	}

	layout := c.store.Layout()
	report := validate.FullCheck(layout.CertPath(), layout.KeyPath(), opts.Domain, c.cfg.MinDaysValid)
	if !report.Passed {
		c.rollback(stamp)
		return nil, errors.Wrap(errors.ErrCodeValidation,
			fmt.Sprintf("installed certificate failed validation (%s)", strings.Join(report.Problems, "; ")), nil)
	}

	if err := c.store.WriteMetadata(c.metadataFor(opts.Domain, strategy.Type())); err != nil {
		return nil, err
	}

	return &SetupResult{Domain: opts.Domain, Type: strategy.Type(), Report: report}, nil
}

// rollback restores the pre-operation backup, or removes the rejected
// candidate when there was nothing to restore, so the store never keeps
// a pair that failed validation.
func (c *Controller) rollback(stamp string) {
	if stamp != "" {
		if err := c.store.Restore(stamp); err != nil {
			output.Error("Rollback failed: %v", err)
		}
		return
	}
	layout := c.store.Layout()
	for _, path := range []string{layout.CertPath(), layout.KeyPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			output.Error("Failed to remove rejected candidate %s: %v", path, err)
		}
	}
}

// Status is a point-in-time health summary of the installed pair.
// Metadata is included for display but truth comes from the PEM files.
type Status struct {
	Domain    string                `json:"domain"`
	Installed bool                  `json:"installed"`
	Healthy   bool                  `json:"healthy"`
	Type      store.AcquisitionType `json:"type,omitempty"`
	Report    *validate.Report      `json:"report,omitempty"`
	Metadata  *store.Metadata       `json:"-"`
}

// Status reports certificate health for display. Expiry is surfaced down
// to zero remaining days; only actual expiry makes the pair unhealthy.
func (c *Controller) Status(domain string) (*Status, error) {
	st := &Status{Domain: domain, Installed: c.store.Exists()}

	md, err := c.store.ReadMetadata()
	if err != nil {
		logger.Warn("Failed to read metadata: %v", err)
	} else if md != nil {
		st.Metadata = md
		st.Type = md.Type
	}

	if !st.Installed {
		return st, nil
	}

	layout := c.store.Layout()
	st.Report = validate.FullCheck(layout.CertPath(), layout.KeyPath(), domain, 0)
	st.Healthy = st.Report.Passed
	return st, nil
}

// Validate runs the full validation pipeline with the configured
// minimum-validity gate.
func (c *Controller) Validate(domain string, minDays int) *validate.Report {
	layout := c.store.Layout()
	return validate.FullCheck(layout.CertPath(), layout.KeyPath(), domain, minDays)
}

// Cleanup backs up and removes the installed pair.
func (c *Controller) Cleanup() error {
	return c.store.Cleanup()
}

func (c *Controller) selfSigned() *acquire.SelfSigned {
	return &acquire.SelfSigned{
		Store:        c.store,
		Authority:    c.authority,
		KeySize:      c.cfg.KeySize,
		ValidityDays: c.cfg.ValidityDays,
	}
}

func (c *Controller) letsEncrypt() acquire.Strategy {
	if c.LetsEncryptStrategy != nil {
		return c.LetsEncryptStrategy
	}
	return &acquire.LetsEncrypt{
		Store: c.store,
		Exec:  c.exec,
		Email: c.cfg.Email,
	}
}

func (c *Controller) metadataFor(domain string, typ store.AcquisitionType) store.Metadata {
	return store.Metadata{
		Domain:       domain,
		Type:         typ,
		ValidityDays: c.cfg.ValidityDays,
		KeySize:      c.cfg.KeySize,
	}
}

func isLocalDomain(domain string) bool {
	return domain == "localhost" || domain == "127.0.0.1"
}
