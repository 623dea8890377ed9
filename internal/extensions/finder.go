package extensions

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kanade-dev/extrepo/internal/otel"
	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/sources"
	"github.com/kanade-dev/extrepo/internal/telemetry"
)

// FinderTracerName is the name used for the aggregation tracer
const FinderTracerName = "github.com/kanade-dev/extrepo/extensions"

const defaultMaxConcurrentFetches = 8

// Finder aggregates the indexes of all stored repositories
type Finder struct {
	repos         RepoSource
	indexes       sources.IndexFetcher
	metrics       *telemetry.RefreshMetrics
	tracer        trace.Tracer
	libMin        float64
	libMax        float64
	maxConcurrent int
}

// FinderOption configures a Finder
type FinderOption func(*Finder)

// WithLibVersionRange sets the inclusive range of accepted library versions
func WithLibVersionRange(minVersion, maxVersion float64) FinderOption {
	return func(f *Finder) {
		f.libMin = minVersion
		f.libMax = maxVersion
	}
}

// WithMaxConcurrentFetches bounds the index downloads in flight
func WithMaxConcurrentFetches(n int) FinderOption {
	return func(f *Finder) {
		if n > 0 {
			f.maxConcurrent = n
		}
	}
}

// WithRefreshMetrics records index fetch outcomes
func WithRefreshMetrics(m *telemetry.RefreshMetrics) FinderOption {
	return func(f *Finder) {
		f.metrics = m
	}
}

// WithFinderTracer enables spans around aggregation
func WithFinderTracer(tracer trace.Tracer) FinderOption {
	return func(f *Finder) {
		f.tracer = tracer
	}
}

// NewFinder creates a Finder over the given repositories and index fetcher
func NewFinder(repos RepoSource, indexes sources.IndexFetcher, opts ...FinderOption) *Finder {
	f := &Finder{
		repos:         repos,
		indexes:       indexes,
		libMin:        DefaultLibVersionMin,
		libMax:        DefaultLibVersionMax,
		maxConcurrent: defaultMaxConcurrentFetches,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindExtensions returns every compatible extension across all repositories.
// A repository whose index cannot be fetched contributes nothing. Repository
// metadata is refreshed alongside; failures there are only logged.
func (f *Finder) FindExtensions(ctx context.Context) ([]Available, error) {
	ctx, span := otel.StartSpan(ctx, f.tracer, "extensions.FindExtensions")
	defer span.End()

	repos, err := f.repos.List(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if len(repos) == 0 {
		return []Available{}, nil
	}

	var refreshed sync.WaitGroup
	refreshed.Go(func() {
		f.repos.RefreshAll(ctx)
	})

	var (
		mu  sync.Mutex
		all []Available
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.maxConcurrent)
	for _, r := range repos {
		g.Go(func() error {
			found := f.fetchRepo(gctx, r)
			mu.Lock()
			all = append(all, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	refreshed.Wait()

	if len(all) == 0 {
		slog.WarnContext(ctx, "No extensions found from any repository", "repos", len(repos))
		return []Available{}, nil
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(all)))
	return all, nil
}

func (f *Finder) fetchRepo(ctx context.Context, r repo.ExtensionRepo) []Available {
	start := time.Now()
	entries, err := f.indexes.FetchIndex(ctx, r.BaseURL)
	f.metrics.RecordIndexFetch(ctx, r.BaseURL, err == nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get extensions", "base_url", r.BaseURL, "error", err)
		return nil
	}

	found := f.toAvailable(r.BaseURL, entries)
	slog.DebugContext(ctx, "Fetched extension index",
		"base_url", r.BaseURL,
		"entries", len(entries),
		"compatible", len(found),
		"duration", time.Since(start),
	)
	return found
}

func (f *Finder) toAvailable(repoURL string, entries []sources.IndexEntry) []Available {
	out := make([]Available, 0, len(entries))
	for _, e := range entries {
		lib, err := LibVersion(e.Version)
		if err != nil || lib < f.libMin || lib > f.libMax {
			continue
		}

		srcs := make([]AvailableSource, 0, len(e.Sources))
		for _, s := range e.Sources {
			srcs = append(srcs, AvailableSource{ID: s.ID, Lang: s.Lang, Name: s.Name, BaseURL: s.BaseURL})
		}

		out = append(out, Available{
			Name:        displayName(e.Name),
			PkgName:     e.Pkg,
			VersionName: e.Version,
			VersionCode: e.Code,
			LibVersion:  lib,
			Lang:        e.Lang,
			IsNSFW:      e.NSFW == 1,
			Sources:     srcs,
			APKName:     e.APK,
			IconURL:     IconURL(repoURL, e.Pkg),
			RepoURL:     repoURL,
		})
	}
	return out
}

// CheckForUpdates returns the available extensions that update an installed one.
// When prefetched is nil the repositories are queried first.
func (f *Finder) CheckForUpdates(ctx context.Context, installed []Installed, prefetched []Available) ([]Available, error) {
	available := prefetched
	if available == nil {
		var err error
		if available, err = f.FindExtensions(ctx); err != nil {
			return nil, err
		}
	}

	byPkg := make(map[string]*Available, len(available))
	for i := range available {
		if _, seen := byPkg[available[i].PkgName]; !seen {
			byPkg[available[i].PkgName] = &available[i]
		}
	}

	updates := []Available{}
	for _, ext := range installed {
		candidate, ok := byPkg[ext.PkgName]
		if !ok {
			continue
		}
		if candidate.HasUpdate(ext) {
			updates = append(updates, *candidate)
		}
	}
	return updates, nil
}
