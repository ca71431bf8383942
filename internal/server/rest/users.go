package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/gorilla/mux"
)

// login implements the OAuth2 password form: username carries the email.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, validationError("malformed form body"))
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		h.fail(w, r, validationError("username and password are required"))
		return
	}

	token, err := h.users.Login(r.Context(), username, password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   common.TokenTypeBearer,
		ExpiresIn:   int64(h.users.TokenTTL() / time.Second),
	})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), sessionClaims(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := h.validator.decode(r, schemaUserCreate, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info(r.Context(), "user registered", "email", u.Email)
	writeJSON(w, http.StatusCreated, newUserResponse(u))
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Me(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (h *handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req userUpdateRequest
	if err := h.validator.decode(r, schemaUserUpdate, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.users.Update(r.Context(), caller(r), id, services.UserChanges{
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (h *handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.users.Delete(r.Context(), caller(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info(r.Context(), "user deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError("id must be a positive integer")
	}
	return id, nil
}
