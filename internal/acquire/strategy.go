// Package acquire implements the three interchangeable producers of a
// certificate pair: local self-signed generation, Let's Encrypt issuance
// through certbot, and import of an externally provided pair. Strategies
// write candidate files into the store; the lifecycle controller owns
// backup, post-install validation, and rollback.
package acquire

import (
	"github.com/milou-sh/milou-cli/internal/store"
)

// Strategy produces a new certificate pair and installs it into the
// store. Each strategy validates its own inputs but leaves the
// commit-or-rollback decision to the caller.
type Strategy interface {
	// Type identifies the acquisition type recorded in metadata
	Type() store.AcquisitionType

	// Acquire obtains a pair for domain and installs it via the store
	Acquire(domain string) error
}
