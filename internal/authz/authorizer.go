// Package authz decides whether an authenticated caller may perform an API operation.
package authz

import "context"

//go:generate mockgen -destination=mocks/mock_authorizer.go -package=mocks -source=authorizer.go Authorizer

// Authorizer evaluates one authorization request
type Authorizer interface {
	Authorize(ctx context.Context, req Request) (Decision, error)
}

// Request describes an operation on a repository
type Request struct {
	// GrantedActions come from the caller's scopes
	GrantedActions []string

	// Action is read, write or admin
	Action string

	// RepoBaseURL names the repository the request targets. Empty means all repositories.
	RepoBaseURL string
}

// Decision is the outcome of an authorization request
type Decision struct {
	Allowed bool

	// Reasons lists the IDs of the policies that decided the outcome
	Reasons []string
}
