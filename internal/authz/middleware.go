package authz

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kanade-dev/extrepo/internal/auth"
	"github.com/kanade-dev/extrepo/internal/config"
)

// ForbiddenResponse is the body of a 403 response
type ForbiddenResponse struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Details *ForbiddenDetail `json:"details,omitempty"`
}

// ForbiddenDetail tells the caller which action was required and which scopes grant it
type ForbiddenDetail struct {
	RequiredAction string   `json:"requiredAction"`
	UserScopes     []string `json:"userScopes"`
	Hint           string   `json:"hint"`
}

// NewMiddleware builds the authorization middleware for cfg. Nil cfg disables authorization.
func NewMiddleware(cfg *config.AuthzConfig) (func(http.Handler) http.Handler, error) {
	if cfg == nil {
		return NoopMiddleware, nil
	}

	authorizer, err := NewCedarAuthorizerFromFile(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	slog.Info("authz: Cedar authorization enabled", "custom_policies", cfg.PolicyFile != "")
	return Middleware(authorizer, cfg.GetScopeMapping()), nil
}

// Middleware authorizes every authenticated request. Requests without claims
// reached the handler through a public or anonymous path and are passed through.
func Middleware(authorizer Authorizer, scopeMapping []config.ScopeMappingEntry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			scopes := Scopes(claims)
			req := Request{
				GrantedActions: GrantedActions(scopes, scopeMapping),
				Action:         RouteAction(r.Method, r.URL.Path),
				RepoBaseURL:    targetRepo(r),
			}

			decision, err := authorizer.Authorize(r.Context(), req)
			if err != nil {
				slog.ErrorContext(r.Context(), "Authorization evaluation failed",
					"error", err,
					"action", req.Action,
					"path", r.URL.Path,
					"subject", claims["sub"])
				writeJSONError(w, http.StatusInternalServerError, "authorization evaluation failed")
				return
			}

			if !decision.Allowed {
				slog.WarnContext(r.Context(), "Authorization denied",
					"action", req.Action,
					"method", r.Method,
					"path", r.URL.Path,
					"subject", claims["sub"],
					"scopes", scopes)
				writeForbidden(w, req.Action, scopes, scopeMapping)
				return
			}

			slog.DebugContext(r.Context(), "Authorization permitted",
				"action", req.Action,
				"subject", claims["sub"],
				"reasons", decision.Reasons)
			next.ServeHTTP(w, r)
		})
	}
}

// NoopMiddleware performs no authorization
func NoopMiddleware(next http.Handler) http.Handler {
	return next
}

func writeForbidden(w http.ResponseWriter, action string, userScopes []string, mapping []config.ScopeMappingEntry) {
	hint := "No configured scope grants this action."
	if granting := scopesGranting(action, mapping); len(granting) > 0 {
		hint = fmt.Sprintf("This operation requires one of the following scopes: %s", strings.Join(granting, ", "))
	}
	if userScopes == nil {
		userScopes = []string{}
	}

	writeJSON(w, http.StatusForbidden, ForbiddenResponse{
		Error:   "forbidden",
		Message: "You do not have permission to perform this action.",
		Details: &ForbiddenDetail{
			RequiredAction: action,
			UserScopes:     userScopes,
			Hint:           hint,
		},
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode authorization response", "error", err)
	}
}
