package api

import (
	"log/slog"
	"net/http"
)

// Historical 401 bodies. The listing routes and the mutation routes have
// always answered with different texts; both are part of the wire contract.
const (
	unauthorizedKeyMessage  = "ERROR: Invalid API-key"
	unauthorizedMissingPart = "Error: api_key not set or invalid"
)

// authorizer maps the api_key query parameter to an owning user id.
type authorizer struct {
	store  Store
	logger *slog.Logger
}

// resolve reads the api_key query parameter verbatim and looks up the owning
// user. An absent parameter, an unknown key, and a lookup failure all yield an
// error; handlers answer 401 and stop. Every request re-resolves the key.
func (a *authorizer) resolve(r *http.Request) (int64, error) {
	key := r.URL.Query().Get("api_key")
	userID, err := a.store.ResolveAPIKey(r.Context(), key)
	if err != nil {
		a.logger.Debug("api key resolution failed", "path", r.URL.Path, "error", err)
		return 0, err
	}
	return userID, nil
}
