package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/kanade-dev/extrepo/internal/repo"
)

const (
	// RepoFileName is the JSON document holding every repository
	RepoFileName = "repos.json"

	lockRetryDelay = 50 * time.Millisecond
)

type repoDocument struct {
	Repos []repo.ExtensionRepo `json:"repos"`
}

// FileStore keeps repositories in a single JSON document. Writes go to a
// temporary file that is atomically renamed over the document. An in-process
// mutex and an advisory file lock serialize access across goroutines and
// processes sharing the directory.
type FileStore struct {
	mu       sync.RWMutex
	basePath string
	filePath string
	lock     *flock.Flock
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at basePath, creating the directory if needed
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	filePath := filepath.Join(basePath, RepoFileName)
	return &FileStore{
		basePath: basePath,
		filePath: filePath,
		lock:     flock.New(filePath + ".lock"),
	}, nil
}

// List returns every repository ordered by base URL
func (f *FileStore) List(ctx context.Context) ([]repo.ExtensionRepo, error) {
	doc, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Repos, nil
}

// Get returns the repository with baseURL
func (f *FileStore) Get(ctx context.Context, baseURL string) (*repo.ExtensionRepo, error) {
	return f.find(ctx, func(r *repo.ExtensionRepo) bool { return r.BaseURL == baseURL })
}

// GetByFingerprint returns the repository using fingerprint
func (f *FileStore) GetByFingerprint(ctx context.Context, fingerprint string) (*repo.ExtensionRepo, error) {
	return f.find(ctx, func(r *repo.ExtensionRepo) bool { return r.SigningKeyFingerprint == fingerprint })
}

// Insert adds a new repository
func (f *FileStore) Insert(ctx context.Context, r repo.ExtensionRepo) error {
	return f.update(ctx, func(doc *repoDocument) error {
		for _, existing := range doc.Repos {
			if existing.BaseURL == r.BaseURL {
				return repo.NewSaveRepoError(r.BaseURL, ErrDuplicateBaseURL)
			}
			if existing.SigningKeyFingerprint == r.SigningKeyFingerprint {
				return repo.NewSaveRepoError(r.BaseURL, ErrDuplicateFingerprint)
			}
		}
		doc.Repos = append(doc.Repos, r)
		return nil
	})
}

// Upsert inserts r or overwrites the record with the same base URL
func (f *FileStore) Upsert(ctx context.Context, r repo.ExtensionRepo) error {
	return f.update(ctx, func(doc *repoDocument) error {
		for _, existing := range doc.Repos {
			if existing.BaseURL != r.BaseURL && existing.SigningKeyFingerprint == r.SigningKeyFingerprint {
				return repo.NewSaveRepoError(r.BaseURL, ErrDuplicateFingerprint)
			}
		}
		doc.Repos = slices.DeleteFunc(doc.Repos, func(e repo.ExtensionRepo) bool { return e.BaseURL == r.BaseURL })
		doc.Repos = append(doc.Repos, r)
		return nil
	})
}

// Replace removes the record holding r's fingerprint and writes r in one update
func (f *FileStore) Replace(ctx context.Context, r repo.ExtensionRepo) error {
	return f.update(ctx, func(doc *repoDocument) error {
		doc.Repos = slices.DeleteFunc(doc.Repos, func(e repo.ExtensionRepo) bool {
			return e.SigningKeyFingerprint == r.SigningKeyFingerprint || e.BaseURL == r.BaseURL
		})
		doc.Repos = append(doc.Repos, r)
		return nil
	})
}

// Delete removes the repository with baseURL
func (f *FileStore) Delete(ctx context.Context, baseURL string) error {
	return f.update(ctx, func(doc *repoDocument) error {
		doc.Repos = slices.DeleteFunc(doc.Repos, func(e repo.ExtensionRepo) bool { return e.BaseURL == baseURL })
		return nil
	})
}

// Count returns the number of stored repositories
func (f *FileStore) Count(ctx context.Context) (int, error) {
	doc, err := f.read(ctx)
	if err != nil {
		return 0, err
	}
	return len(doc.Repos), nil
}

// Close is a no-op; the file lock is only held for the duration of a call
func (*FileStore) Close() error {
	return nil
}

func (f *FileStore) find(ctx context.Context, match func(*repo.ExtensionRepo) bool) (*repo.ExtensionRepo, error) {
	doc, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doc.Repos {
		if match(&doc.Repos[i]) {
			found := doc.Repos[i]
			return &found, nil
		}
	}
	return nil, repo.ErrRepoNotFound
}

func (f *FileStore) read(ctx context.Context) (*repoDocument, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	locked, err := f.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return nil, fmt.Errorf("failed to acquire read lock on %s: %w", f.filePath, lockErr(ctx, err))
	}
	defer func() { _ = f.lock.Unlock() }()

	return f.load()
}

func (f *FileStore) update(ctx context.Context, mutate func(*repoDocument) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return fmt.Errorf("failed to acquire write lock on %s: %w", f.filePath, lockErr(ctx, err))
	}
	defer func() { _ = f.lock.Unlock() }()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if err := mutate(doc); err != nil {
		return err
	}
	return f.store(doc)
}

func (f *FileStore) load() (*repoDocument, error) {
	data, err := os.ReadFile(f.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return &repoDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read repository file: %w", err)
	}

	var doc repoDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse repository file: %w", err)
	}
	return &doc, nil
}

func (f *FileStore) store(doc *repoDocument) error {
	slices.SortFunc(doc.Repos, func(a, b repo.ExtensionRepo) int {
		return strings.Compare(a.BaseURL, b.BaseURL)
	})

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal repositories: %w", err)
	}

	tempPath := f.filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary repository file: %w", err)
	}

	if err := os.Rename(tempPath, f.filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename repository file: %w", err)
	}
	return nil
}

func lockErr(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("lock not acquired")
}
