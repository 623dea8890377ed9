package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/snapshot"
	"github.com/kanade-dev/extrepo/internal/telemetry"
)

// Observable wraps a Store and publishes the full repository list after every
// successful write. Writes are serialized so each published list reflects a
// complete, ordered sequence of mutations.
type Observable struct {
	Store

	writeMu sync.Mutex
	repos   *snapshot.Value[[]repo.ExtensionRepo]
	metrics *telemetry.RepoMetrics
}

var _ Store = (*Observable)(nil)

// ObservableOption configures an Observable
type ObservableOption func(*Observable)

// WithRepoMetrics records the repository count each time the list is published
func WithRepoMetrics(m *telemetry.RepoMetrics) ObservableOption {
	return func(o *Observable) {
		o.metrics = m
	}
}

// NewObservable loads the current list from store and returns the wrapper
func NewObservable(ctx context.Context, store Store, opts ...ObservableOption) (*Observable, error) {
	initial, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load repositories: %w", err)
	}

	o := &Observable{
		Store: store,
		repos: snapshot.New(initial),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.metrics.RecordReposTotal(ctx, int64(len(initial)))
	return o, nil
}

// Insert adds a new repository and publishes the new list
func (o *Observable) Insert(ctx context.Context, r repo.ExtensionRepo) error {
	return o.write(ctx, func() error { return o.Store.Insert(ctx, r) })
}

// Upsert writes r and publishes the new list
func (o *Observable) Upsert(ctx context.Context, r repo.ExtensionRepo) error {
	return o.write(ctx, func() error { return o.Store.Upsert(ctx, r) })
}

// Replace swaps the record holding r's fingerprint for r and publishes the new list
func (o *Observable) Replace(ctx context.Context, r repo.ExtensionRepo) error {
	return o.write(ctx, func() error { return o.Store.Replace(ctx, r) })
}

// Delete removes the repository and publishes the new list
func (o *Observable) Delete(ctx context.Context, baseURL string) error {
	return o.write(ctx, func() error { return o.Store.Delete(ctx, baseURL) })
}

// Current returns the last published list
func (o *Observable) Current() []repo.ExtensionRepo {
	return o.repos.Current()
}

// Subscribe yields the current list and every list published afterwards
func (o *Observable) Subscribe(ctx context.Context) <-chan []repo.ExtensionRepo {
	return o.repos.Subscribe(ctx)
}

// SubscribeCount yields the size of every published list
func (o *Observable) SubscribeCount(ctx context.Context) <-chan int {
	return snapshot.Map(ctx, o.repos.Subscribe(ctx), func(repos []repo.ExtensionRepo) int {
		return len(repos)
	})
}

// Refresh re-reads the store and publishes the result. It picks up changes
// made by other processes sharing the backend.
func (o *Observable) Refresh(ctx context.Context) error {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()
	return o.publish(ctx)
}

func (o *Observable) write(ctx context.Context, fn func() error) error {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	if err := fn(); err != nil {
		return err
	}

	// The write itself succeeded; a failed re-read only delays the snapshot
	if err := o.publish(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to publish repository snapshot", "error", err)
	}
	return nil
}

func (o *Observable) publish(ctx context.Context) error {
	repos, err := o.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}
	o.repos.Publish(repos)
	o.metrics.RecordReposTotal(ctx, int64(len(repos)))
	return nil
}
