// Package errors provides standardized error types for the milou SSL tooling.
//
// The errors package defines certificate-lifecycle error types that enable
// structured error handling and consistent error messages throughout
// the application.
//
// # Error Types
//
// CertError is the primary error type, containing:
//   - Code: Categorizes the error (MISSING_FILE, KEY_MISMATCH, etc.)
//   - Message: Human-readable error description
//   - Domain: The domain name involved (if applicable)
//   - Soft: Whether the error is advisory only (reported, never fatal)
//   - Err: The underlying wrapped error (if any)
//
// # Hard and Soft Errors
//
// Hard errors (missing file, malformed PEM, key mismatch, expiry) abort the
// operation that produced them. Soft errors (expiring soon, domain mismatch)
// exist for visibility only and never flip an operation's overall result.
//
// # Usage
//
// Creating certificate errors:
//
//	// A required file is absent
//	return errors.MissingFile(certPath)
//
//	// Certificate and key do not belong together
//	return errors.KeyMismatch(domain)
//
//	// Wrapping an underlying error
//	return errors.Wrap(errors.ErrCodeValidation, "failed to inspect certificate", err)
//
// # Error Checking
//
// Use errors.Is for sentinel error comparison:
//
//	if errors.Is(err, errors.ErrCertExpired) {
//	    // Handle expired certificate
//	}
//
// Use errors.As for type assertion:
//
//	var certErr *errors.CertError
//	if errors.As(err, &certErr) {
//	    fmt.Printf("Error code: %s, Domain: %s\n", certErr.Code, certErr.Domain)
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeMissingFile    ErrorCode = "MISSING_FILE"    // Certificate or key file absent
	ErrCodeMalformedCert  ErrorCode = "MALFORMED_CERT"  // Certificate file failed to parse
	ErrCodeMalformedKey   ErrorCode = "MALFORMED_KEY"   // Private key file failed to parse
	ErrCodeKeyMismatch    ErrorCode = "KEY_MISMATCH"    // Certificate and key are not a pair
	ErrCodeExpired        ErrorCode = "EXPIRED"         // Certificate validity has ended
	ErrCodeExpiringSoon   ErrorCode = "EXPIRING_SOON"   // Certificate nears expiry (soft)
	ErrCodeDomainMismatch ErrorCode = "DOMAIN_MISMATCH" // Certificate does not cover the domain (soft)
	ErrCodeChallenge      ErrorCode = "CHALLENGE"       // Domain-validation challenge could not complete
	ErrCodePackageManager ErrorCode = "PKG_MANAGER"     // No supported system package manager
	ErrCodeSource         ErrorCode = "SOURCE"          // Import source missing or ambiguous
	ErrCodeValidation     ErrorCode = "VALIDATION"      // Input validation failed
	ErrCodeBackup         ErrorCode = "BACKUP"          // Backup copy failed
	ErrCodeInternal       ErrorCode = "INTERNAL"        // Internal/unexpected error
)

// CertError represents a structured error with context about the operation.
type CertError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Domain  string    // Domain name (if applicable)
	Soft    bool      // Advisory only, never fails an operation
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *CertError) Error() string {
	if e.Domain != "" && e.Err != nil {
		return fmt.Sprintf("ssl %s: %s: %v", e.Domain, e.Message, e.Err)
	}
	if e.Domain != "" {
		return fmt.Sprintf("ssl %s: %s", e.Domain, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain traversal.
func (e *CertError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *CertError) Is(target error) bool {
	t, ok := target.(*CertError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsSoft reports whether err carries a soft (advisory-only) certificate error.
func IsSoft(err error) bool {
	var certErr *CertError
	if errors.As(err, &certErr) {
		return certErr.Soft
	}
	return false
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrFileMissing indicates a required certificate or key file is absent.
	ErrFileMissing = &CertError{Code: ErrCodeMissingFile, Message: "file missing"}

	// ErrMalformedCertificate indicates the certificate is not valid PEM/X.509.
	ErrMalformedCertificate = &CertError{Code: ErrCodeMalformedCert, Message: "malformed certificate"}

	// ErrMalformedKey indicates the private key could not be parsed.
	ErrMalformedKey = &CertError{Code: ErrCodeMalformedKey, Message: "malformed private key"}

	// ErrKeyMismatch indicates the certificate and key are not a matching pair.
	ErrKeyMismatch = &CertError{Code: ErrCodeKeyMismatch, Message: "certificate does not match private key"}

	// ErrCertExpired indicates the certificate's validity period has ended.
	ErrCertExpired = &CertError{Code: ErrCodeExpired, Message: "certificate expired"}

	// ErrChallengeUnavailable indicates every challenge strategy failed.
	ErrChallengeUnavailable = &CertError{Code: ErrCodeChallenge, Message: "domain validation challenge unavailable"}

	// ErrUnsupportedPackageManager indicates no known package manager was found.
	ErrUnsupportedPackageManager = &CertError{Code: ErrCodePackageManager, Message: "unsupported package manager"}

	// ErrSourceNotFound indicates no certificate source resolved at the given path.
	ErrSourceNotFound = &CertError{Code: ErrCodeSource, Message: "certificate source not found"}

	// ErrInvalidDomain indicates the domain name is not valid.
	ErrInvalidDomain = &CertError{Code: ErrCodeValidation, Message: "invalid domain"}

	// ErrInvalidMode indicates the acquisition mode is not valid.
	ErrInvalidMode = &CertError{Code: ErrCodeValidation, Message: "invalid acquisition mode"}
)

// MissingFile creates an error for an absent certificate or key file.
func MissingFile(path string) error {
	return &CertError{
		Code:    ErrCodeMissingFile,
		Message: fmt.Sprintf("file missing: %s", path),
	}
}

// MalformedCert creates an error for a certificate that failed to parse.
func MalformedCert(path string, err error) error {
	return &CertError{
		Code:    ErrCodeMalformedCert,
		Message: fmt.Sprintf("malformed certificate: %s", path),
		Err:     err,
	}
}

// MalformedKey creates an error for a private key that failed to parse.
func MalformedKey(path string, err error) error {
	return &CertError{
		Code:    ErrCodeMalformedKey,
		Message: fmt.Sprintf("malformed private key: %s", path),
		Err:     err,
	}
}

// KeyMismatch creates an error for a certificate/key pair that does not match.
func KeyMismatch(domain string) error {
	return &CertError{
		Code:    ErrCodeKeyMismatch,
		Message: "certificate does not match private key",
		Domain:  domain,
	}
}

// Expired creates an error for an expired certificate.
func Expired(domain string) error {
	return &CertError{
		Code:    ErrCodeExpired,
		Message: "certificate expired",
		Domain:  domain,
	}
}

// ExpiringSoon creates a soft error for a certificate nearing expiry.
func ExpiringSoon(domain string, days int) error {
	return &CertError{
		Code:    ErrCodeExpiringSoon,
		Message: fmt.Sprintf("certificate expires in %d days", days),
		Domain:  domain,
		Soft:    true,
	}
}

// DomainMismatch creates a soft error for a certificate that does not cover domain.
func DomainMismatch(domain string) error {
	return &CertError{
		Code:    ErrCodeDomainMismatch,
		Message: "certificate does not cover domain",
		Domain:  domain,
		Soft:    true,
	}
}

// SourceNotFound creates an error naming the supported import layouts.
func SourceNotFound(path string) error {
	return &CertError{
		Code: ErrCodeSource,
		Message: fmt.Sprintf("no certificate/key pair found at %s; supported formats are "+
			"fullchain.pem+privkey.pem, cert.pem+privkey.pem, or {cert,server,certificate,ssl}.{crt,pem} with a matching key", path),
	}
}

// AmbiguousSource creates an error for a source certificate whose private
// key could not be resolved.
func AmbiguousSource(certPath string) error {
	return &CertError{
		Code:    ErrCodeSource,
		Message: fmt.Sprintf("found certificate %s but could not resolve its private key", certPath),
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &CertError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &CertError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapDomain creates an error with domain context and underlying error.
func WrapDomain(code ErrorCode, domain string, err error) error {
	return &CertError{
		Code:   code,
		Domain: domain,
		Err:    err,
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
