// Package repo defines the extension repository model shared by the storage,
// source and service layers.
package repo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// UnpinnedFingerprintPrefix marks a stored fingerprint that may be replaced
	// by whatever fingerprint the remote descriptor advertises.
	UnpinnedFingerprintPrefix = "NOFINGERPRINT"

	// IndexFileName is the extension listing published at the root of a repository
	IndexFileName = "index.min.json"

	// DetailsFileName is the repository descriptor published next to the index
	DetailsFileName = "repo.json"
)

var (
	indexURLRegex  = regexp.MustCompile(`^https://.*/index\.min\.json$`)
	githubURLRegex = regexp.MustCompile(`https://(?:raw\.githubusercontent\.com|github\.com)/(.+?)/(.+?)/.+`)
)

// ErrRepoNotFound is returned when no repository matches a lookup
var ErrRepoNotFound = errors.New("extension repository not found")

// ExtensionRepo is a remote source of installable extensions.
// BaseURL is the primary key; SigningKeyFingerprint is unique across records.
type ExtensionRepo struct {
	BaseURL               string  `json:"baseUrl"`
	Name                  string  `json:"name"`
	ShortName             *string `json:"shortName,omitempty"`
	Website               string  `json:"website"`
	SigningKeyFingerprint string  `json:"signingKeyFingerprint"`
}

// IsUnpinned reports whether the stored fingerprint is the "no fingerprint" sentinel
func (r *ExtensionRepo) IsUnpinned() bool {
	return strings.HasPrefix(r.SigningKeyFingerprint, UnpinnedFingerprintPrefix)
}

// AcceptsFingerprint reports whether details advertising fingerprint may
// overwrite this record.
func (r *ExtensionRepo) AcceptsFingerprint(fingerprint string) bool {
	return r.IsUnpinned() || r.SigningKeyFingerprint == fingerprint
}

// DisplayName returns the short name when present, the full name otherwise
func (r *ExtensionRepo) DisplayName() string {
	if r.ShortName != nil && *r.ShortName != "" {
		return *r.ShortName
	}
	return r.Name
}

// WebsiteURL returns the repository website. Older repositories did not publish
// one, so a GitHub project URL is derived from the base URL when possible.
func (r *ExtensionRepo) WebsiteURL() string {
	if strings.TrimSpace(r.Website) != "" {
		return r.Website
	}

	m := githubURLRegex.FindStringSubmatch(r.BaseURL)
	if m == nil {
		return r.BaseURL
	}
	return fmt.Sprintf("https://github.com/%s/%s", m[1], m[2])
}

// ParseIndexURL validates a user supplied index URL and returns the repository
// base URL. It never touches the network.
func ParseIndexURL(indexURL string) (string, bool) {
	if !indexURLRegex.MatchString(indexURL) {
		return "", false
	}
	return strings.TrimSuffix(indexURL, "/"+IndexFileName), true
}

// SaveRepoError is returned by stores when a write violates the base URL or
// fingerprint uniqueness constraint.
type SaveRepoError struct {
	BaseURL string
	Err     error
}

// Error returns the error message
func (e *SaveRepoError) Error() string {
	return fmt.Sprintf("error saving repository %s: %v", e.BaseURL, e.Err)
}

// Unwrap returns the underlying constraint error
func (e *SaveRepoError) Unwrap() error {
	return e.Err
}

// NewSaveRepoError wraps a constraint violation for the given repository
func NewSaveRepoError(baseURL string, err error) error {
	return &SaveRepoError{BaseURL: baseURL, Err: err}
}

// IsSaveRepoError reports whether err is, or wraps, a SaveRepoError
func IsSaveRepoError(err error) bool {
	var saveErr *SaveRepoError
	return errors.As(err, &saveErr)
}
