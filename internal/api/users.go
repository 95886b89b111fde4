package api

import (
	"database/sql"
	"net/http"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/store"
)

// UsersHandler handles user listing and public profile images.
type UsersHandler struct {
	DB *sql.DB
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

// GetImage handles GET /api/users/{id}/image.
func (h *UsersHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, mime, err := store.GetUserImage(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeImage(w, data, mime)
}
