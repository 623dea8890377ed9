package service

import (
	"fmt"

	"github.com/kanade-dev/extrepo/internal/repo"
)

// Outcome classifies the result of adding a repository
type Outcome int

const (
	// OutcomeSuccess means the repository was stored
	OutcomeSuccess Outcome = iota
	// OutcomeInvalidURL means the URL was malformed or its descriptor could not be fetched
	OutcomeInvalidURL
	// OutcomeRepoAlreadyExists means a repository with the same base URL is stored
	OutcomeRepoAlreadyExists
	// OutcomeDuplicateFingerprint means another repository uses the same signing key
	OutcomeDuplicateFingerprint
	// OutcomeError is any other failure
	OutcomeError
)

// String returns the wire name of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidURL:
		return "invalid_url"
	case OutcomeRepoAlreadyExists:
		return "repo_exists"
	case OutcomeDuplicateFingerprint:
		return "duplicate_fingerprint"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// CreateResult is the result of Create and Rename.
// Repo is set on success. Existing and New are set for OutcomeDuplicateFingerprint.
// Err carries the cause for OutcomeInvalidURL and OutcomeError when one is known.
type CreateResult struct {
	Outcome  Outcome
	Repo     *repo.ExtensionRepo
	Existing *repo.ExtensionRepo
	New      *repo.ExtensionRepo
	Err      error
}

func success(r *repo.ExtensionRepo) CreateResult {
	return CreateResult{Outcome: OutcomeSuccess, Repo: r}
}

func invalidURL(err error) CreateResult {
	return CreateResult{Outcome: OutcomeInvalidURL, Err: err}
}

func alreadyExists() CreateResult {
	return CreateResult{Outcome: OutcomeRepoAlreadyExists}
}

func duplicateFingerprint(existing, newRepo *repo.ExtensionRepo) CreateResult {
	return CreateResult{Outcome: OutcomeDuplicateFingerprint, Existing: existing, New: newRepo}
}

func failed(err error) CreateResult {
	return CreateResult{Outcome: OutcomeError, Err: err}
}
