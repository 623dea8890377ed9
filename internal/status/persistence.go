// Package status tracks and persists the state of the background repository refresh.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks -source=persistence.go StatusPersistence

// StatusFileName is the name of the status file
const StatusFileName = "status.json"

// StatusPersistence saves and loads the refresh status
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus replaces the stored status
	SaveStatus(ctx context.Context, status *RefreshStatus) error

	// LoadStatus returns the stored status, or an empty one before the first save
	LoadStatus(ctx context.Context) (*RefreshStatus, error)
}

type fileStatusPersistence struct {
	mu       sync.Mutex
	basePath string
}

// NewFileStatusPersistence stores the status as JSON in basePath
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{basePath: basePath}
}

// SaveStatus writes the status through a temporary file and an atomic rename
func (f *fileStatusPersistence) SaveStatus(_ context.Context, status *RefreshStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.basePath, 0750); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	filePath := filepath.Join(f.basePath, StatusFileName)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file: %w", err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file: %w", err)
	}
	return nil
}

// LoadStatus reads the status file
func (f *fileStatusPersistence) LoadStatus(_ context.Context) (*RefreshStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// #nosec G304 -- path is built from the configured data directory
	data, err := os.ReadFile(filepath.Join(f.basePath, StatusFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &RefreshStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var status RefreshStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &status, nil
}
