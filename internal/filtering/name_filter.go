package filtering

import (
	"fmt"

	"github.com/gobwas/glob"
)

// NameFilter matches package names against glob patterns
type NameFilter interface {
	// ShouldInclude reports whether name passes the patterns and why
	ShouldInclude(name string, include, exclude []string) (bool, string)
}

type globNameFilter struct{}

var _ NameFilter = (*globNameFilter)(nil)

// NewGlobNameFilter creates a NameFilter backed by gobwas/glob
func NewGlobNameFilter() NameFilter {
	return &globNameFilter{}
}

func matchPattern(pattern, name string) (bool, error) {
	compiled, err := glob.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid glob pattern: %w", err)
	}
	return compiled.Match(name), nil
}

func (*globNameFilter) ShouldInclude(name string, include, exclude []string) (bool, string) {
	for _, pattern := range exclude {
		matches, err := matchPattern(pattern, name)
		if err != nil {
			return false, fmt.Sprintf("invalid exclude pattern '%s': %v", pattern, err)
		}
		if matches {
			return false, fmt.Sprintf("excluded by pattern '%s'", pattern)
		}
	}

	if len(include) == 0 {
		return true, "not excluded"
	}
	for _, pattern := range include {
		matches, err := matchPattern(pattern, name)
		if err != nil {
			return false, fmt.Sprintf("invalid include pattern '%s': %v", pattern, err)
		}
		if matches {
			return true, fmt.Sprintf("included by pattern '%s'", pattern)
		}
	}
	return false, fmt.Sprintf("no match in include patterns %v", include)
}
