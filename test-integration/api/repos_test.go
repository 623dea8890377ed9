package integration

import (
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/kanade-dev/extrepo/internal/api/v1"
	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/status"
	"github.com/kanade-dev/extrepo/test-integration/api/helpers"
)

func hostedRepo(name, fingerprint string) helpers.HostedRepo {
	return helpers.HostedRepo{
		Name:        name,
		Website:     "https://" + name + ".example.org",
		Fingerprint: fingerprint,
	}
}

var _ = Describe("Repository lifecycle", Label("repos"), func() {
	var (
		tempDir      string
		host         *helpers.RepoHost
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("extrepo-repos-")
		host = helpers.NewRepoHost()
		host.Put("alpha", hostedRepo("Alpha", "FP-ALPHA"))
		host.Put("beta", hostedRepo("Beta", "FP-BETA"))

		serverHelper = helpers.NewServerTestHelper(ctx, host, filepath.Join(tempDir, "data"))
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		host.Close()
		cleanupTempDir(tempDir)
	})

	It("adds a repository from its index URL", func() {
		resp, err := serverHelper.CreateRepo(host.IndexURL("alpha"))
		Expect(err).NotTo(HaveOccurred())
		created := helpers.Decode[repo.ExtensionRepo](resp, http.StatusCreated)

		Expect(created.BaseURL).To(Equal(host.BaseURL("alpha")))
		Expect(created.Name).To(Equal("Alpha"))
		Expect(created.SigningKeyFingerprint).To(Equal("FP-ALPHA"))

		Expect(serverHelper.CountRepos()).To(Equal(1))
		Expect(serverHelper.ListRepos()).To(ConsistOf(created))

		resp, err = serverHelper.GetRepo(created.BaseURL)
		Expect(err).NotTo(HaveOccurred())
		Expect(helpers.Decode[repo.ExtensionRepo](resp, http.StatusOK)).To(Equal(created))
	})

	It("rejects URLs that are not index URLs", func() {
		resp, err := serverHelper.CreateRepo(host.BaseURL("alpha") + "/repo.json")
		Expect(err).NotTo(HaveOccurred())
		body := helpers.Decode[v1.ErrorResponse](resp, http.StatusBadRequest)
		Expect(body.Error).To(Equal("invalid_url"))
	})

	It("rejects repositories whose descriptor cannot be fetched", func() {
		resp, err := serverHelper.CreateRepo(host.IndexURL("missing"))
		Expect(err).NotTo(HaveOccurred())
		helpers.Decode[v1.ErrorResponse](resp, http.StatusBadRequest)
		Expect(serverHelper.CountRepos()).To(Equal(0))
	})

	It("rejects a repository that is already stored", func() {
		resp, err := serverHelper.CreateRepo(host.IndexURL("alpha"))
		helpers.ExpectStatus(resp, err, http.StatusCreated)

		resp, err = serverHelper.CreateRepo(host.IndexURL("alpha"))
		Expect(err).NotTo(HaveOccurred())
		body := helpers.Decode[v1.ErrorResponse](resp, http.StatusConflict)
		Expect(body.Error).To(Equal("repo_exists"))
	})

	It("reports a signing key already used by another repository and lets it be replaced", func() {
		resp, err := serverHelper.CreateRepo(host.IndexURL("alpha"))
		helpers.ExpectStatus(resp, err, http.StatusCreated)

		host.Put("mirror", hostedRepo("Alpha Mirror", "FP-ALPHA"))
		resp, err = serverHelper.CreateRepo(host.IndexURL("mirror"))
		Expect(err).NotTo(HaveOccurred())
		conflict := helpers.Decode[v1.DuplicateFingerprintResponse](resp, http.StatusConflict)
		Expect(conflict.Error).To(Equal("duplicate_fingerprint"))
		Expect(conflict.Existing.BaseURL).To(Equal(host.BaseURL("alpha")))
		Expect(conflict.New.BaseURL).To(Equal(host.BaseURL("mirror")))

		resp, err = serverHelper.ReplaceRepo(conflict.New)
		helpers.ExpectStatus(resp, err, http.StatusOK)

		repos := serverHelper.ListRepos()
		Expect(repos).To(HaveLen(1))
		Expect(repos[0].BaseURL).To(Equal(host.BaseURL("mirror")))
		Expect(repos[0].SigningKeyFingerprint).To(Equal("FP-ALPHA"))
	})

	It("renames a repository to a new index URL", func() {
		resp, err := serverHelper.CreateRepo(host.IndexURL("alpha"))
		helpers.ExpectStatus(resp, err, http.StatusCreated)

		host.Put("alpha-v2", hostedRepo("Alpha", "FP-ALPHA"))
		resp, err = serverHelper.RenameRepo(host.BaseURL("alpha"), host.IndexURL("alpha-v2"))
		helpers.ExpectStatus(resp, err, http.StatusCreated)

		repos := serverHelper.ListRepos()
		Expect(repos).To(HaveLen(1))
		Expect(repos[0].BaseURL).To(Equal(host.BaseURL("alpha-v2")))
	})

	It("deletes a repository", func() {
		resp, err := serverHelper.CreateRepo(host.IndexURL("alpha"))
		helpers.ExpectStatus(resp, err, http.StatusCreated)
		resp, err = serverHelper.CreateRepo(host.IndexURL("beta"))
		helpers.ExpectStatus(resp, err, http.StatusCreated)

		resp, err = serverHelper.DeleteRepo(host.BaseURL("alpha"))
		helpers.ExpectStatus(resp, err, http.StatusNoContent)

		repos := serverHelper.ListRepos()
		Expect(repos).To(HaveLen(1))
		Expect(repos[0].Name).To(Equal("Beta"))

		resp, err = serverHelper.GetRepo(host.BaseURL("alpha"))
		helpers.ExpectStatus(resp, err, http.StatusNotFound)
	})

	Context("when repository metadata changes upstream", func() {
		BeforeEach(func() {
			resp, err := serverHelper.CreateRepo(host.IndexURL("alpha"))
			helpers.ExpectStatus(resp, err, http.StatusCreated)
		})

		It("picks up new metadata on refresh", func() {
			updated := hostedRepo("Alpha Renamed", "FP-ALPHA")
			updated.ShortName = "α"
			host.Put("alpha", updated)

			resp, err := serverHelper.RefreshRepos()
			helpers.ExpectStatus(resp, err, http.StatusAccepted)

			repos := serverHelper.ListRepos()
			Expect(repos).To(HaveLen(1))
			Expect(repos[0].Name).To(Equal("Alpha Renamed"))
			Expect(repos[0].ShortName).To(HaveValue(Equal("α")))
		})

		It("keeps the stored record when the signing key changes", func() {
			host.Put("alpha", hostedRepo("Hijacked", "FP-EVIL"))

			resp, err := serverHelper.RefreshRepos()
			helpers.ExpectStatus(resp, err, http.StatusAccepted)

			repos := serverHelper.ListRepos()
			Expect(repos).To(HaveLen(1))
			Expect(repos[0].Name).To(Equal("Alpha"))
			Expect(repos[0].SigningKeyFingerprint).To(Equal("FP-ALPHA"))
		})

		It("keeps the stored record when the repository is offline", func() {
			host.Remove("alpha")

			resp, err := serverHelper.RefreshRepos()
			helpers.ExpectStatus(resp, err, http.StatusAccepted)
			Expect(serverHelper.ListRepos()).To(HaveLen(1))
		})
	})

	It("reports the background refresh status", func() {
		Eventually(func() status.RefreshPhase {
			resp, err := http.Get(serverHelper.GetBaseURL() + "/v1/repos/status")
			if err != nil {
				return ""
			}
			return helpers.Decode[status.RefreshStatus](resp, http.StatusOK).Phase
		}, 5*time.Second, 100*time.Millisecond).Should(Equal(status.RefreshPhaseComplete))
	})
})
