package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jonnen/jonnen/internal/todo"
)

// personHandler serves the user lookup endpoint.
type personHandler struct {
	store  Store
	auth   *authorizer
	logger *slog.Logger
}

// get handles GET /person/{id} — returns the authenticated user's own name.
// The path id is accepted for route-shape compatibility but ignored: the name
// is always looked up by the id the API key resolved to.
func (h *personHandler) get(w http.ResponseWriter, r *http.Request) {
	if _, ok := pathID(w, r); !ok {
		return
	}

	userID, err := h.auth.resolve(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, unauthorizedMissingPart)
		return
	}

	name, err := h.store.UserName(r.Context(), userID)
	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "No user found with the provided API key.")
			return
		}
		h.logger.Error("getting user name", "error", err, "user_id", userID)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}
