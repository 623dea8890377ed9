package authz

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	cedar "github.com/cedar-policy/cedar-go"
)

const (
	cedarNamespace = "Extrepo"
	globalResource = "all"
)

var (
	principalType = cedar.EntityType(cedarNamespace + "::Caller")
	actionType    = cedar.EntityType(cedarNamespace + "::Action")
	resourceType  = cedar.EntityType(cedarNamespace + "::Repo")
)

// CedarAuthorizer evaluates requests against a Cedar policy set
type CedarAuthorizer struct {
	policySet *cedar.PolicySet
}

var _ Authorizer = (*CedarAuthorizer)(nil)

// NewCedarAuthorizer parses policyBytes. Nil selects the built-in policies.
func NewCedarAuthorizer(policyBytes []byte) (*CedarAuthorizer, error) {
	if policyBytes == nil {
		policyBytes = []byte(defaultPolicies)
	}

	ps, err := cedar.NewPolicySetFromBytes("policies.cedar", policyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Cedar policies: %w", err)
	}
	return &CedarAuthorizer{policySet: ps}, nil
}

// NewCedarAuthorizerFromFile loads policies from path, or the built-in policies when path is empty
func NewCedarAuthorizerFromFile(path string) (*CedarAuthorizer, error) {
	if path == "" {
		return NewCedarAuthorizer(nil)
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewCedarAuthorizer(data)
}

// Authorize evaluates req. The caller carries its granted actions as the grantedActions attribute.
func (a *CedarAuthorizer) Authorize(ctx context.Context, req Request) (Decision, error) {
	principal := cedar.NewEntityUID(principalType, cedar.String("authenticated"))

	granted := make([]cedar.Value, len(req.GrantedActions))
	for i, action := range req.GrantedActions {
		granted[i] = cedar.String(action)
	}

	resourceID := req.RepoBaseURL
	if resourceID == "" {
		resourceID = globalResource
	}

	entities := cedar.EntityMap{
		principal: cedar.Entity{
			UID: principal,
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"grantedActions": cedar.NewSet(granted...),
			}),
		},
	}

	decision, diagnostic := cedar.Authorize(a.policySet, entities, cedar.Request{
		Principal: principal,
		Action:    cedar.NewEntityUID(actionType, cedar.String(req.Action)),
		Resource:  cedar.NewEntityUID(resourceType, cedar.String(resourceID)),
		Context:   cedar.NewRecord(cedar.RecordMap{}),
	})
	if len(diagnostic.Errors) > 0 {
		slog.WarnContext(ctx, "Cedar policy evaluation reported errors",
			"action", req.Action,
			"errors", len(diagnostic.Errors))
	}

	reasons := make([]string, 0, len(diagnostic.Reasons))
	for _, r := range diagnostic.Reasons {
		reasons = append(reasons, string(r.PolicyID))
	}

	return Decision{Allowed: decision == cedar.Allow, Reasons: reasons}, nil
}
