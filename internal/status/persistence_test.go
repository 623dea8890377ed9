package status

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileStatusPersistence_SaveAndLoad(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	persistence := NewFileStatusPersistence(tmpDir)

	now := time.Now().UTC().Truncate(time.Second)
	want := &RefreshStatus{
		Phase:           RefreshPhaseComplete,
		Message:         "Refreshed 3 repositories",
		LastAttempt:     &now,
		LastRefreshTime: &now,
		RepoCount:       3,
		Interval:        "6h0m0s",
	}

	ctx := context.Background()
	require.NoError(t, persistence.SaveStatus(ctx, want))

	_, err := os.Stat(filepath.Join(tmpDir, StatusFileName))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(tmpDir, StatusFileName+".tmp"))
	require.True(t, os.IsNotExist(err))

	got, err := persistence.LoadStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, want.Phase, got.Phase)
	require.Equal(t, want.Message, got.Message)
	require.Equal(t, want.RepoCount, got.RepoCount)
	require.Equal(t, want.Interval, got.Interval)
	require.True(t, want.LastRefreshTime.Equal(*got.LastRefreshTime))
}

func TestFileStatusPersistence_LoadNonExistent(t *testing.T) {
	t.Parallel()

	persistence := NewFileStatusPersistence(filepath.Join(t.TempDir(), "missing"))

	got, err := persistence.LoadStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, &RefreshStatus{}, got)
}

func TestFileStatusPersistence_Overwrite(t *testing.T) {
	t.Parallel()

	persistence := NewFileStatusPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, persistence.SaveStatus(ctx, &RefreshStatus{Phase: RefreshPhaseRefreshing, AttemptCount: 1}))
	require.NoError(t, persistence.SaveStatus(ctx, &RefreshStatus{Phase: RefreshPhaseFailed, AttemptCount: 2, Message: "boom"}))

	got, err := persistence.LoadStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, RefreshPhaseFailed, got.Phase)
	require.Equal(t, 2, got.AttemptCount)
	require.Equal(t, "boom", got.Message)
}

func TestFileStatusPersistence_InvalidJSON(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, StatusFileName), []byte("{not json"), 0600))

	_, err := NewFileStatusPersistence(tmpDir).LoadStatus(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to unmarshal status")
}
