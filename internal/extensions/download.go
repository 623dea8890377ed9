package extensions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kanade-dev/extrepo/internal/diskutil"
	"github.com/kanade-dev/extrepo/internal/httpclient"
)

// ErrNoAPK is returned when an extension does not name a package file
var ErrNoAPK = errors.New("extension has no apk name")

// Downloader saves extension packages to local disk
type Downloader struct {
	client httpclient.Client
}

// NewDownloader creates a Downloader using client
func NewDownloader(client httpclient.Client) *Downloader {
	return &Downloader{client: client}
}

// Download fetches the package of ext into dir and returns the written path.
// The file only appears under its final name once fully written.
func (d *Downloader) Download(ctx context.Context, ext Available, dir string) (string, error) {
	if ext.APKName == "" {
		return "", fmt.Errorf("%w: %s", ErrNoAPK, ext.PkgName)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	url := APKURL(ext.RepoURL, ext.APKName)
	dest := filepath.Join(dir, diskutil.BuildValidFilename(ext.APKName))
	tmp, err := os.CreateTemp(dir, StagingPrefix(url)+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmp.Name())
	}()

	n, err := d.client.Download(ctx, url, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}

	slog.InfoContext(ctx, "Downloaded extension", "pkg", ext.PkgName, "path", dest, "bytes", n)
	return dest, nil
}

// StagingPrefix names the temp files of an in-progress download of url
func StagingPrefix(url string) string {
	return ".download-" + diskutil.HashKeyForDisk(url) + "-"
}
