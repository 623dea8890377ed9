package filtering

import (
	"fmt"
	"slices"
	"strings"
)

// LanguageFilter matches a set of language codes against include and exclude lists
type LanguageFilter interface {
	ShouldInclude(langs []string, include, exclude []string) (bool, string)
}

type exactLanguageFilter struct{}

var _ LanguageFilter = (*exactLanguageFilter)(nil)

// NewExactLanguageFilter creates a case-insensitive exact-match LanguageFilter
func NewExactLanguageFilter() LanguageFilter {
	return &exactLanguageFilter{}
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, s) })
}

func (*exactLanguageFilter) ShouldInclude(langs []string, include, exclude []string) (bool, string) {
	for _, lang := range langs {
		if containsFold(exclude, lang) {
			return false, fmt.Sprintf("excluded language '%s'", lang)
		}
	}

	if len(include) == 0 {
		return true, "not excluded"
	}
	for _, lang := range langs {
		if containsFold(include, lang) {
			return true, fmt.Sprintf("included language '%s'", lang)
		}
	}
	return false, fmt.Sprintf("languages %v not in include list %v", langs, include)
}
