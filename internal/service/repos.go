package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kanade-dev/extrepo/internal/otel"
	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/sources"
)

const (
	// ServiceTracerName is the name used for the repository service tracer
	ServiceTracerName = "github.com/kanade-dev/extrepo/service"

	defaultMaxConcurrentRefreshes = 8
)

// ErrInvalidURL is the cause attached to OutcomeInvalidURL for malformed URLs
var ErrInvalidURL = errors.New("index URL must match https://.../index.min.json")

type repoService struct {
	store         RepoStore
	fetcher       sources.RepoDetailsFetcher
	tracer        trace.Tracer
	maxConcurrent int
}

var _ RepoService = (*repoService)(nil)

// Option configures the repository service
type Option func(*repoService)

// WithTracer enables spans around the use cases
func WithTracer(tracer trace.Tracer) Option {
	return func(s *repoService) {
		s.tracer = tracer
	}
}

// WithMaxConcurrentRefreshes bounds the descriptor fetches RefreshAll runs at once
func WithMaxConcurrentRefreshes(n int) Option {
	return func(s *repoService) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// New creates the repository service
func New(store RepoStore, fetcher sources.RepoDetailsFetcher, opts ...Option) RepoService {
	s := &repoService{
		store:         store,
		fetcher:       fetcher,
		maxConcurrent: defaultMaxConcurrentRefreshes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *repoService) Create(ctx context.Context, indexURL string) CreateResult {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.Create")
	defer span.End()

	result := s.create(ctx, indexURL)
	span.SetAttributes(otel.AttrOutcome.String(result.Outcome.String()))
	if result.Outcome == OutcomeError {
		otel.RecordError(span, result.Err)
	}
	return result
}

func (s *repoService) create(ctx context.Context, indexURL string) CreateResult {
	baseURL, ok := repo.ParseIndexURL(indexURL)
	if !ok {
		return invalidURL(fmt.Errorf("%w: %q", ErrInvalidURL, indexURL))
	}

	details, err := s.fetcher.FetchRepoDetails(ctx, baseURL)
	if err != nil {
		slog.WarnContext(ctx, "Could not fetch repository details", "base_url", baseURL, "error", err)
		return invalidURL(err)
	}

	err = s.store.Insert(ctx, *details)
	if err == nil {
		slog.InfoContext(ctx, "Repository added", "base_url", details.BaseURL, "name", details.Name)
		return success(details)
	}

	if !repo.IsSaveRepoError(err) {
		slog.ErrorContext(ctx, "Unknown error adding repository", "base_url", baseURL, "error", err)
		return failed(err)
	}

	slog.WarnContext(ctx, "Conflict adding repository", "base_url", baseURL, "error", err)
	return s.disambiguateConflict(ctx, details, err)
}

// disambiguateConflict re-reads the store to find which uniqueness constraint
// the insert of details violated.
func (s *repoService) disambiguateConflict(ctx context.Context, details *repo.ExtensionRepo, cause error) CreateResult {
	if _, err := s.store.Get(ctx, details.BaseURL); err == nil {
		return alreadyExists()
	} else if !errors.Is(err, repo.ErrRepoNotFound) {
		return failed(err)
	}

	existing, err := s.store.GetByFingerprint(ctx, details.SigningKeyFingerprint)
	if err == nil {
		return duplicateFingerprint(existing, details)
	}
	if !errors.Is(err, repo.ErrRepoNotFound) {
		return failed(err)
	}

	slog.ErrorContext(ctx, "Repository conflict with no matching record", "base_url", details.BaseURL)
	return failed(cause)
}

func (s *repoService) Rename(ctx context.Context, oldBaseURL, newIndexURL string) CreateResult {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.Rename",
		trace.WithAttributes(otel.AttrRepoBaseURL.String(oldBaseURL)))
	defer span.End()

	if _, ok := repo.ParseIndexURL(newIndexURL); !ok {
		return invalidURL(fmt.Errorf("%w: %q", ErrInvalidURL, newIndexURL))
	}

	if err := s.store.Delete(ctx, oldBaseURL); err != nil {
		otel.RecordError(span, err)
		return failed(fmt.Errorf("failed to remove %s: %w", oldBaseURL, err))
	}
	return s.create(ctx, newIndexURL)
}

func (s *repoService) Refresh(ctx context.Context, r repo.ExtensionRepo) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.Refresh",
		trace.WithAttributes(otel.AttrRepoBaseURL.String(r.BaseURL)))
	defer span.End()

	details, err := s.fetcher.FetchRepoDetails(ctx, r.BaseURL)
	if err != nil {
		slog.WarnContext(ctx, "Could not fetch updated repository details",
			"name", r.Name, "base_url", r.BaseURL, "error", err)
		return
	}

	if !r.AcceptsFingerprint(details.SigningKeyFingerprint) {
		slog.WarnContext(ctx, "Fingerprint mismatch, repository details not updated",
			"name", r.Name,
			"base_url", r.BaseURL,
			"expected", r.SigningKeyFingerprint,
			"got", details.SigningKeyFingerprint,
		)
		span.SetAttributes(otel.AttrOutcome.String("fingerprint_mismatch"))
		return
	}

	if err := s.store.Upsert(ctx, *details); err != nil {
		otel.RecordError(span, err)
		slog.ErrorContext(ctx, "Could not update repository", "base_url", r.BaseURL, "error", err)
	}
}

func (s *repoService) RefreshAll(ctx context.Context) {
	runID := uuid.NewString()
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.RefreshAll")
	defer span.End()

	repos, err := s.store.List(ctx)
	if err != nil {
		otel.RecordError(span, err)
		slog.ErrorContext(ctx, "Could not list repositories for refresh", "run_id", runID, "error", err)
		return
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, r := range repos {
		g.Go(func() error {
			s.Refresh(gctx, r)
			return nil
		})
	}
	_ = g.Wait()

	span.SetAttributes(otel.AttrResultCount.Int(len(repos)))
	slog.DebugContext(ctx, "Refreshed repositories",
		"run_id", runID, "count", len(repos), "duration", time.Since(start))
}

func (s *repoService) Replace(ctx context.Context, r repo.ExtensionRepo) error {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.Replace",
		trace.WithAttributes(otel.AttrRepoBaseURL.String(r.BaseURL)))
	defer span.End()

	if err := s.store.Replace(ctx, r); err != nil {
		otel.RecordError(span, err)
		return err
	}
	slog.InfoContext(ctx, "Repository replaced", "base_url", r.BaseURL, "fingerprint", r.SigningKeyFingerprint)
	return nil
}

func (s *repoService) Delete(ctx context.Context, baseURL string) error {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.Delete",
		trace.WithAttributes(otel.AttrRepoBaseURL.String(baseURL)))
	defer span.End()

	if err := s.store.Delete(ctx, baseURL); err != nil {
		otel.RecordError(span, err)
		return err
	}
	return nil
}

func (s *repoService) Get(ctx context.Context, baseURL string) (*repo.ExtensionRepo, error) {
	return s.store.Get(ctx, baseURL)
}

func (s *repoService) List(ctx context.Context) ([]repo.ExtensionRepo, error) {
	return s.store.List(ctx)
}

func (s *repoService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func (s *repoService) Subscribe(ctx context.Context) <-chan []repo.ExtensionRepo {
	return s.store.Subscribe(ctx)
}

func (s *repoService) SubscribeCount(ctx context.Context) <-chan int {
	return s.store.SubscribeCount(ctx)
}

func (s *repoService) CheckReadiness(ctx context.Context) error {
	if _, err := s.store.Count(ctx); err != nil {
		return fmt.Errorf("repository store not ready: %w", err)
	}
	return nil
}
