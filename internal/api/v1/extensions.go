package v1

import (
	"log/slog"
	"net/http"

	"github.com/kanade-dev/extrepo/internal/api/common"
	"github.com/kanade-dev/extrepo/internal/extensions"
	"github.com/kanade-dev/extrepo/internal/filtering"
)

// listExtensions handles GET /v1/extensions?lang=...&pkg=...&nsfw=...
func (routes *Routes) listExtensions(w http.ResponseWriter, r *http.Request) {
	filter, err := filtering.FromQuery(routes.baseFilter, r.URL.Query())
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	found, err := routes.finder.FindExtensions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to find extensions", "error", err)
		common.WriteErrorResponse(w, "Failed to find extensions", http.StatusInternalServerError)
		return
	}
	writeExtensionList(w, routes.filter.Apply(r.Context(), found, filter))
}

// checkUpdates handles POST /v1/extensions/updates
func (routes *Routes) checkUpdates(w http.ResponseWriter, r *http.Request) {
	var installed []extensions.Installed
	if err := common.DecodeJSONBody(w, r, &installed); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	installed, err := extensions.NormalizeInstalled(installed)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	updates, err := routes.finder.CheckForUpdates(r.Context(), installed, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to check for extension updates", "error", err)
		common.WriteErrorResponse(w, "Failed to check for updates", http.StatusInternalServerError)
		return
	}
	writeExtensionList(w, updates)
}

func writeExtensionList(w http.ResponseWriter, list []extensions.Available) {
	if list == nil {
		list = []extensions.Available{}
	}
	common.WriteJSONResponse(w, ExtensionListResponse{Extensions: list, Count: len(list)}, http.StatusOK)
}
