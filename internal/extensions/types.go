// Package extensions aggregates the extension indexes of every stored
// repository and compares them against installed extensions.
package extensions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kanade-dev/extrepo/internal/repo"
)

//go:generate mockgen -destination=mocks/mock_extensions.go -package=mocks -source=types.go RepoSource

const (
	// DefaultLibVersionMin is the oldest extension library accepted
	DefaultLibVersionMin = 1.4
	// DefaultLibVersionMax is the newest extension library accepted
	DefaultLibVersionMax = 1.5

	namePrefix = "Tachiyomi: "
)

// RepoSource provides the repositories to aggregate and keeps their metadata fresh
type RepoSource interface {
	List(ctx context.Context) ([]repo.ExtensionRepo, error)
	RefreshAll(ctx context.Context)
}

// Available is an extension published by a repository and installable by clients
type Available struct {
	Name        string            `json:"name"`
	PkgName     string            `json:"pkgName"`
	VersionName string            `json:"versionName"`
	VersionCode int64             `json:"versionCode"`
	LibVersion  float64           `json:"libVersion"`
	Lang        string            `json:"lang"`
	IsNSFW      bool              `json:"isNsfw"`
	Sources     []AvailableSource `json:"sources"`
	APKName     string            `json:"apkName"`
	IconURL     string            `json:"iconUrl"`
	RepoURL     string            `json:"repoUrl"`
}

// AvailableSource is a content source bundled in an extension
type AvailableSource struct {
	ID      int64  `json:"id,string"`
	Lang    string `json:"lang"`
	Name    string `json:"name"`
	BaseURL string `json:"baseUrl"`
}

// Installed describes an extension present on a client
type Installed struct {
	Name        string  `json:"name,omitempty"`
	PkgName     string  `json:"pkgName"`
	VersionName string  `json:"versionName,omitempty"`
	VersionCode int64   `json:"versionCode"`
	LibVersion  float64 `json:"libVersion"`
	RepoURL     string  `json:"repoUrl,omitempty"`
}

// LibVersion extracts the extension library version from a version name:
// everything before the last '.' parsed as a decimal, so "1.4.12" is 1.4.
func LibVersion(version string) (float64, error) {
	i := strings.LastIndexByte(version, '.')
	if i < 0 {
		return 0, fmt.Errorf("version %q has no library component", version)
	}
	v, err := strconv.ParseFloat(version[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("version %q has no library component: %w", version, err)
	}
	return v, nil
}

// APKURL returns the download URL of an extension package
func APKURL(repoURL, apkName string) string {
	return repoURL + "/apk/" + apkName
}

// IconURL returns the URL of an extension icon
func IconURL(repoURL, pkgName string) string {
	return repoURL + "/icon/" + pkgName + ".png"
}

// HasUpdate reports whether a is newer than the installed extension
func (a *Available) HasUpdate(installed Installed) bool {
	return a.VersionCode > installed.VersionCode || a.LibVersion > installed.LibVersion
}

func displayName(name string) string {
	if _, after, ok := strings.Cut(name, namePrefix); ok {
		return after
	}
	return name
}
