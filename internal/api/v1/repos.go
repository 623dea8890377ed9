package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kanade-dev/extrepo/internal/api/common"
	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/service"
)

const baseURLParam = "baseUrl"

// listRepos handles GET /v1/repos
func (routes *Routes) listRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := routes.service.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list repositories", "error", err)
		common.WriteErrorResponse(w, "Failed to list repositories", http.StatusInternalServerError)
		return
	}
	if repos == nil {
		repos = []repo.ExtensionRepo{}
	}
	common.WriteJSONResponse(w, repos, http.StatusOK)
}

// getRepo handles GET /v1/repos/detail?baseUrl=...
func (routes *Routes) getRepo(w http.ResponseWriter, r *http.Request) {
	baseURL, err := common.GetAndValidateQueryParam(r, baseURLParam)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	found, err := routes.service.Get(r.Context(), baseURL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, found, http.StatusOK)
}

// countRepos handles GET /v1/repos/count
func (routes *Routes) countRepos(w http.ResponseWriter, r *http.Request) {
	n, err := routes.service.Count(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, CountResponse{Count: n}, http.StatusOK)
}

// createRepo handles POST /v1/repos
func (routes *Routes) createRepo(w http.ResponseWriter, r *http.Request) {
	var req CreateRepoRequest
	if err := common.DecodeJSONBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeCreateResult(w, r, routes.service.Create(r.Context(), strings.TrimSpace(req.URL)))
}

// renameRepo handles POST /v1/repos/rename
func (routes *Routes) renameRepo(w http.ResponseWriter, r *http.Request) {
	var req RenameRepoRequest
	if err := common.DecodeJSONBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.BaseURL) == "" {
		common.WriteErrorResponse(w, "baseUrl cannot be empty", http.StatusBadRequest)
		return
	}

	writeCreateResult(w, r, routes.service.Rename(r.Context(), req.BaseURL, strings.TrimSpace(req.URL)))
}

// replaceRepo handles PUT /v1/repos
func (routes *Routes) replaceRepo(w http.ResponseWriter, r *http.Request) {
	var body repo.ExtensionRepo
	if err := common.DecodeJSONBody(w, r, &body); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.BaseURL == "" || body.Name == "" || body.SigningKeyFingerprint == "" {
		common.WriteErrorResponse(w, "baseUrl, name and signingKeyFingerprint are required", http.StatusBadRequest)
		return
	}

	if err := routes.service.Replace(r.Context(), body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, body, http.StatusOK)
}

// deleteRepo handles DELETE /v1/repos?baseUrl=...
func (routes *Routes) deleteRepo(w http.ResponseWriter, r *http.Request) {
	baseURL, err := common.GetAndValidateQueryParam(r, baseURLParam)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := routes.service.Delete(r.Context(), baseURL); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// refreshRepos handles POST /v1/repos/refresh
func (routes *Routes) refreshRepos(w http.ResponseWriter, r *http.Request) {
	routes.service.RefreshAll(r.Context())
	common.WriteJSONResponse(w, map[string]string{"status": "refreshed"}, http.StatusAccepted)
}

// refreshStatus handles GET /v1/repos/status
func (routes *Routes) refreshStatus(w http.ResponseWriter, r *http.Request) {
	st, err := routes.status.LoadStatus(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load refresh status", "error", err)
		common.WriteErrorResponse(w, "failed to load refresh status", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, st, http.StatusOK)
}

func writeCreateResult(w http.ResponseWriter, r *http.Request, res service.CreateResult) {
	switch res.Outcome {
	case service.OutcomeSuccess:
		common.WriteJSONResponse(w, res.Repo, http.StatusCreated)
	case service.OutcomeInvalidURL:
		common.WriteErrorResponse(w, res.Outcome.String(), http.StatusBadRequest)
	case service.OutcomeRepoAlreadyExists:
		common.WriteErrorResponse(w, res.Outcome.String(), http.StatusConflict)
	case service.OutcomeDuplicateFingerprint:
		resp := DuplicateFingerprintResponse{Error: res.Outcome.String()}
		if res.Existing != nil {
			resp.Existing = *res.Existing
		}
		if res.New != nil {
			resp.New = *res.New
		}
		common.WriteJSONResponse(w, resp, http.StatusConflict)
	default:
		slog.ErrorContext(r.Context(), "Failed to add repository", "error", res.Err)
		common.WriteErrorResponse(w, service.OutcomeError.String(), http.StatusInternalServerError)
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrRepoNotFound):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	case repo.IsSaveRepoError(err):
		common.WriteErrorResponse(w, err.Error(), http.StatusConflict)
	default:
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		common.WriteErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}
