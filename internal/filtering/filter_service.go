package filtering

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/extensions"
)

// Query parameters understood by FromQuery
const (
	QueryLang = "lang"
	QueryPkg  = "pkg"
	QueryNSFW = "nsfw"
)

// FilterService applies a FilterConfig to extension listings
type FilterService interface {
	Apply(ctx context.Context, list []extensions.Available, filter *config.FilterConfig) []extensions.Available
}

type defaultFilterService struct {
	nameFilter NameFilter
	langFilter LanguageFilter
}

// NewDefaultFilterService creates a FilterService with glob package matching and exact language matching
func NewDefaultFilterService() FilterService {
	return NewFilterService(NewGlobNameFilter(), NewExactLanguageFilter())
}

// NewFilterService creates a FilterService from custom filters
func NewFilterService(nameFilter NameFilter, langFilter LanguageFilter) FilterService {
	return &defaultFilterService{nameFilter: nameFilter, langFilter: langFilter}
}

// Apply returns the extensions of list that pass filter. A nil filter returns list unchanged.
func (s *defaultFilterService) Apply(
	ctx context.Context,
	list []extensions.Available,
	filter *config.FilterConfig,
) []extensions.Available {
	if filter == nil {
		return list
	}

	var pkgInclude, pkgExclude, langInclude, langExclude []string
	if filter.Packages != nil {
		pkgInclude, pkgExclude = filter.Packages.Include, filter.Packages.Exclude
	}
	if filter.Languages != nil {
		langInclude, langExclude = filter.Languages.Include, filter.Languages.Exclude
	}

	kept := make([]extensions.Available, 0, len(list))
	for _, ext := range list {
		included, reason := s.shouldInclude(ext, filter.HideNSFW, pkgInclude, pkgExclude, langInclude, langExclude)
		if !included {
			slog.DebugContext(ctx, "Extension filtered out", "pkg", ext.PkgName, "reason", reason)
			continue
		}
		kept = append(kept, ext)
	}

	slog.DebugContext(ctx, "Applied extension filter", "listed", len(list), "kept", len(kept))
	return kept
}

func (s *defaultFilterService) shouldInclude(
	ext extensions.Available,
	hideNSFW bool,
	pkgInclude, pkgExclude, langInclude, langExclude []string,
) (bool, string) {
	if hideNSFW && ext.IsNSFW {
		return false, "nsfw"
	}
	if ok, reason := s.nameFilter.ShouldInclude(ext.PkgName, pkgInclude, pkgExclude); !ok {
		return false, reason
	}
	return s.langFilter.ShouldInclude(languages(ext), langInclude, langExclude)
}

// languages returns the extension language followed by the distinct languages of its sources
func languages(ext extensions.Available) []string {
	langs := []string{ext.Lang}
	for _, src := range ext.Sources {
		if src.Lang != "" && !containsFold(langs, src.Lang) {
			langs = append(langs, src.Lang)
		}
	}
	return langs
}

// FromQuery overlays request query parameters on base.
// lang and pkg replace the configured include lists, nsfw=false hides NSFW extensions.
// The configured exclude lists and hideNsfw always apply.
func FromQuery(base *config.FilterConfig, q url.Values) (*config.FilterConfig, error) {
	langs := splitValues(q[QueryLang])
	pkgs := splitValues(q[QueryPkg])
	nsfw := q.Get(QueryNSFW)
	if len(langs) == 0 && len(pkgs) == 0 && nsfw == "" {
		return base, nil
	}

	merged := config.FilterConfig{}
	if base != nil {
		merged.HideNSFW = base.HideNSFW
		merged.Packages = copyPatterns(base.Packages)
		merged.Languages = copyPatterns(base.Languages)
	}

	if nsfw != "" {
		show, err := strconv.ParseBool(nsfw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s parameter %q: must be true or false", QueryNSFW, nsfw)
		}
		merged.HideNSFW = merged.HideNSFW || !show
	}
	if len(langs) > 0 {
		if merged.Languages == nil {
			merged.Languages = &config.PatternFilterConfig{}
		}
		merged.Languages.Include = langs
	}
	if len(pkgs) > 0 {
		for _, p := range pkgs {
			if _, err := matchPattern(p, ""); err != nil {
				return nil, fmt.Errorf("invalid %s parameter %q: %w", QueryPkg, p, err)
			}
		}
		if merged.Packages == nil {
			merged.Packages = &config.PatternFilterConfig{}
		}
		merged.Packages.Include = pkgs
	}
	return &merged, nil
}

func copyPatterns(p *config.PatternFilterConfig) *config.PatternFilterConfig {
	if p == nil {
		return nil
	}
	return &config.PatternFilterConfig{
		Include: append([]string(nil), p.Include...),
		Exclude: append([]string(nil), p.Exclude...),
	}
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
