package extensions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kanade-dev/extrepo/internal/extensions"
	"github.com/kanade-dev/extrepo/internal/extensions/mocks"
	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/sources"
	sourcemocks "github.com/kanade-dev/extrepo/internal/sources/mocks"
)

const (
	repoA = "https://a.example.com"
	repoB = "https://b.example.com"
)

func entry(name, pkg, version string, code int64) sources.IndexEntry {
	return sources.IndexEntry{
		Name:    name,
		Pkg:     pkg,
		APK:     pkg + ".apk",
		Lang:    "en",
		Code:    code,
		Version: version,
	}
}

func TestFindExtensions(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repos := mocks.NewMockRepoSource(ctrl)
	indexes := sourcemocks.NewMockIndexFetcher(ctrl)

	repos.EXPECT().List(gomock.Any()).Return([]repo.ExtensionRepo{
		{BaseURL: repoA, SigningKeyFingerprint: "a"},
		{BaseURL: repoB, SigningKeyFingerprint: "b"},
	}, nil)
	repos.EXPECT().RefreshAll(gomock.Any())

	nsfw := entry("Tachiyomi: Adult", "pkg.adult", "1.4.3", 3)
	nsfw.NSFW = 1
	nsfw.Sources = []sources.IndexSource{{Name: "Adult", Lang: "en", ID: 42, BaseURL: "https://adult.example.com"}}
	indexes.EXPECT().FetchIndex(gomock.Any(), repoA).Return([]sources.IndexEntry{
		entry("Tachiyomi: Foo", "pkg.foo", "1.4.12", 12),
		nsfw,
		entry("Old", "pkg.old", "1.2.9", 9),
		entry("Future", "pkg.future", "1.6.1", 1),
		entry("Garbage", "pkg.garbage", "nope", 1),
	}, nil)
	indexes.EXPECT().FetchIndex(gomock.Any(), repoB).Return(nil, errors.New("404"))

	finder := extensions.NewFinder(repos, indexes, extensions.WithMaxConcurrentFetches(1))
	found, err := finder.FindExtensions(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 2)

	byPkg := map[string]extensions.Available{}
	for _, ext := range found {
		byPkg[ext.PkgName] = ext
	}

	foo := byPkg["pkg.foo"]
	assert.Equal(t, "Foo", foo.Name)
	assert.InDelta(t, 1.4, foo.LibVersion, 1e-9)
	assert.Equal(t, int64(12), foo.VersionCode)
	assert.Equal(t, repoA+"/icon/pkg.foo.png", foo.IconURL)
	assert.Equal(t, repoA, foo.RepoURL)
	assert.Equal(t, "pkg.foo.apk", foo.APKName)
	assert.False(t, foo.IsNSFW)
	assert.Empty(t, foo.Sources)

	adult := byPkg["pkg.adult"]
	assert.True(t, adult.IsNSFW)
	require.Len(t, adult.Sources, 1)
	assert.Equal(t, int64(42), adult.Sources[0].ID)
}

func TestFindExtensions_NoRepos(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repos := mocks.NewMockRepoSource(ctrl)
	repos.EXPECT().List(gomock.Any()).Return(nil, nil)

	finder := extensions.NewFinder(repos, sourcemocks.NewMockIndexFetcher(ctrl))
	found, err := finder.FindExtensions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NotNil(t, found)
}

func TestFindExtensions_ListFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repos := mocks.NewMockRepoSource(ctrl)
	repos.EXPECT().List(gomock.Any()).Return(nil, errors.New("db down"))

	finder := extensions.NewFinder(repos, sourcemocks.NewMockIndexFetcher(ctrl))
	_, err := finder.FindExtensions(context.Background())
	assert.Error(t, err)
}

func TestFindExtensions_CustomLibRange(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repos := mocks.NewMockRepoSource(ctrl)
	indexes := sourcemocks.NewMockIndexFetcher(ctrl)

	repos.EXPECT().List(gomock.Any()).Return([]repo.ExtensionRepo{{BaseURL: repoA}}, nil)
	repos.EXPECT().RefreshAll(gomock.Any())
	indexes.EXPECT().FetchIndex(gomock.Any(), repoA).Return([]sources.IndexEntry{
		entry("Old", "pkg.old", "1.2.9", 9),
		entry("Foo", "pkg.foo", "1.4.12", 12),
	}, nil)

	finder := extensions.NewFinder(repos, indexes, extensions.WithLibVersionRange(1.2, 1.3))
	found, err := finder.FindExtensions(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "pkg.old", found[0].PkgName)
}

func TestCheckForUpdates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	finder := extensions.NewFinder(mocks.NewMockRepoSource(ctrl), sourcemocks.NewMockIndexFetcher(ctrl))

	available := []extensions.Available{
		{PkgName: "pkg.foo", VersionCode: 12, LibVersion: 1.4, RepoURL: repoA},
		{PkgName: "pkg.foo", VersionCode: 20, LibVersion: 1.5, RepoURL: repoB},
		{PkgName: "pkg.bar", VersionCode: 3, LibVersion: 1.5},
		{PkgName: "pkg.baz", VersionCode: 1, LibVersion: 1.4},
	}
	installed := []extensions.Installed{
		{PkgName: "pkg.foo", VersionCode: 11, LibVersion: 1.4},
		{PkgName: "pkg.bar", VersionCode: 3, LibVersion: 1.4},
		{PkgName: "pkg.baz", VersionCode: 1, LibVersion: 1.4},
		{PkgName: "pkg.missing", VersionCode: 1, LibVersion: 1.4},
	}

	updates, err := finder.CheckForUpdates(context.Background(), installed, available)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "pkg.foo", updates[0].PkgName)
	assert.Equal(t, repoA, updates[0].RepoURL, "first matching entry wins")
	assert.Equal(t, "pkg.bar", updates[1].PkgName)
}

func TestCheckForUpdates_FetchesWhenNotPrefetched(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repos := mocks.NewMockRepoSource(ctrl)
	indexes := sourcemocks.NewMockIndexFetcher(ctrl)

	repos.EXPECT().List(gomock.Any()).Return([]repo.ExtensionRepo{{BaseURL: repoA}}, nil)
	repos.EXPECT().RefreshAll(gomock.Any())
	indexes.EXPECT().FetchIndex(gomock.Any(), repoA).Return([]sources.IndexEntry{
		entry("Foo", "pkg.foo", "1.4.12", 12),
	}, nil)

	finder := extensions.NewFinder(repos, indexes)
	updates, err := finder.CheckForUpdates(context.Background(),
		[]extensions.Installed{{PkgName: "pkg.foo", VersionCode: 10, LibVersion: 1.4}}, nil)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(12), updates[0].VersionCode)
}
