package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kanade-dev/extrepo/internal/extensions"
	"github.com/kanade-dev/extrepo/internal/httpclient"
	"github.com/kanade-dev/extrepo/test-integration/api/helpers"
)

var _ = Describe("Extension aggregation", Label("extensions"), func() {
	var (
		tempDir      string
		host         *helpers.RepoHost
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("extrepo-extensions-")
		host = helpers.NewRepoHost()

		alpha := hostedRepo("Alpha", "FP-ALPHA")
		alpha.Extensions = []helpers.HostedExtension{
			{
				Name: "Tachiyomi: MangaDex", Pkg: "ext.all.mangadex", APK: "mangadex-v1.4.12.apk",
				Lang: "all", Code: 12, Version: "1.4.12",
				Sources: []helpers.HostedSource{{Name: "MangaDex", Lang: "en", ID: "2499283573021220255", BaseURL: "https://mangadex.org"}},
			},
			{Name: "Tachiyomi: Legacy", Pkg: "ext.en.legacy", APK: "legacy.apk", Lang: "en", Code: 3, Version: "1.3.3"},
			{Name: "Tachiyomi: Future", Pkg: "ext.en.future", APK: "future.apk", Lang: "en", Code: 1, Version: "1.6.1"},
		}
		alpha.APKs = map[string][]byte{"mangadex-v1.4.12.apk": []byte("apk-bytes")}
		host.Put("alpha", alpha)

		beta := hostedRepo("Beta", "FP-BETA")
		beta.Extensions = []helpers.HostedExtension{
			{Name: "Tachiyomi: Comick", Pkg: "ext.all.comick", APK: "comick.apk", Lang: "all", Code: 40, Version: "1.4.40", NSFW: 1},
		}
		host.Put("beta", beta)

		serverHelper = helpers.NewServerTestHelper(ctx, host, filepath.Join(tempDir, "data"))
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		host.Close()
		cleanupTempDir(tempDir)
	})

	It("returns nothing when no repositories are stored", func() {
		list := serverHelper.ListExtensions()
		Expect(list.Count).To(Equal(0))
		Expect(list.Extensions).To(BeEmpty())
	})

	Context("with stored repositories", func() {
		BeforeEach(func() {
			for _, name := range []string{"alpha", "beta"} {
				resp, err := serverHelper.CreateRepo(host.IndexURL(name))
				helpers.ExpectStatus(resp, err, http.StatusCreated)
			}
		})

		It("aggregates compatible extensions from every repository", func() {
			list := serverHelper.ListExtensions()
			Expect(list.Count).To(Equal(2))

			byPkg := make(map[string]extensions.Available, len(list.Extensions))
			for _, ext := range list.Extensions {
				byPkg[ext.PkgName] = ext
			}
			Expect(byPkg).To(HaveKey("ext.all.mangadex"))
			Expect(byPkg).To(HaveKey("ext.all.comick"))

			mangadex := byPkg["ext.all.mangadex"]
			Expect(mangadex.Name).To(Equal("MangaDex"))
			Expect(mangadex.LibVersion).To(Equal(1.4))
			Expect(mangadex.RepoURL).To(Equal(host.BaseURL("alpha")))
			Expect(mangadex.IconURL).To(Equal(host.BaseURL("alpha") + "/icon/ext.all.mangadex.png"))
			Expect(mangadex.Sources).To(HaveLen(1))
			Expect(mangadex.Sources[0].ID).To(Equal(int64(2499283573021220255)))

			Expect(byPkg["ext.all.comick"].IsNSFW).To(BeTrue())
		})

		It("skips repositories that are offline", func() {
			host.Remove("beta")

			list := serverHelper.ListExtensions()
			Expect(list.Count).To(Equal(1))
			Expect(list.Extensions[0].PkgName).To(Equal("ext.all.mangadex"))
		})

		It("reports updates for outdated installed extensions", func() {
			updates := serverHelper.CheckUpdates([]extensions.Installed{
				{PkgName: "ext.all.mangadex", VersionName: "1.4.10", VersionCode: 10, LibVersion: 1.4},
				{PkgName: "ext.all.comick", VersionName: "1.4.40", VersionCode: 40, LibVersion: 1.4},
				{PkgName: "ext.en.unknown", VersionName: "1.4.1", VersionCode: 1, LibVersion: 1.4},
			})

			Expect(updates.Count).To(Equal(1))
			Expect(updates.Extensions[0].PkgName).To(Equal("ext.all.mangadex"))
			Expect(updates.Extensions[0].VersionCode).To(Equal(int64(12)))
		})

		It("downloads the APK of an available extension", func() {
			list := serverHelper.ListExtensions()
			var target extensions.Available
			for _, ext := range list.Extensions {
				if ext.PkgName == "ext.all.mangadex" {
					target = ext
				}
			}
			Expect(target.APKName).NotTo(BeEmpty())

			client := httpclient.NewDefaultClient(5*time.Second, httpclient.WithTransport(host.Transport()))
			path, err := extensions.NewDownloader(client).Download(ctx, target, filepath.Join(tempDir, "apks"))
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(path)).To(Equal("mangadex-v1.4.12.apk"))

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("apk-bytes"))
		})
	})
})
