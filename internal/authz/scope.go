package authz

import (
	"slices"
	"strings"

	"github.com/kanade-dev/extrepo/internal/config"
)

// Scopes returns the OAuth scopes carried by claims. Both the space separated
// "scope" claim and the array valued "scp" claim are understood.
func Scopes(claims map[string]any) []string {
	switch scp := claims["scope"].(type) {
	case string:
		if scp != "" {
			return strings.Fields(scp)
		}
	case []any:
		return stringValues(scp)
	}
	if scp, ok := claims["scp"].([]any); ok {
		return stringValues(scp)
	}
	if scp, ok := claims["scp"].(string); ok {
		return strings.Fields(scp)
	}
	return nil
}

func stringValues(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GrantedActions returns the sorted set of actions the scopes grant under mapping
func GrantedActions(scopes []string, mapping []config.ScopeMappingEntry) []string {
	var actions []string
	for _, entry := range mapping {
		if slices.Contains(scopes, entry.Scope) {
			actions = append(actions, entry.Actions...)
		}
	}
	slices.Sort(actions)
	return slices.Compact(actions)
}

// scopesGranting lists the scopes of mapping that grant action
func scopesGranting(action string, mapping []config.ScopeMappingEntry) []string {
	var scopes []string
	for _, entry := range mapping {
		if slices.Contains(entry.Actions, action) {
			scopes = append(scopes, entry.Scope)
		}
	}
	return scopes
}
