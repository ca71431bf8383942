// Package rest serves the JSON API over HTTP. Every route that needs a
// caller is registered on one subrouter guarded by the bearer-token
// middleware.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/observability"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/gorilla/mux"
)

// UserService is what the handlers need from services.UserService.
type UserService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	TokenTTL() time.Duration
	Logout(ctx context.Context, claims *auth.Claims) error
	Me(ctx context.Context, caller *models.User) (*models.User, error)
	Update(ctx context.Context, caller *models.User, id int64, ch services.UserChanges) (*models.User, error)
	Delete(ctx context.Context, caller *models.User, id int64) error
}

// TaskService is what the handlers need from services.TaskService.
type TaskService interface {
	Create(ctx context.Context, caller *models.User, task models.Task) (*models.Task, error)
	List(ctx context.Context, caller *models.User, skip, limit int) ([]*models.Task, error)
	Get(ctx context.Context, caller *models.User, id int64) (*models.Task, error)
	Update(ctx context.Context, caller *models.User, id int64, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, caller *models.User, id int64) (*models.Task, error)
}

// SessionResolver turns a bearer token into a user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, *auth.Claims, error)
}

// Deps are the collaborators of the HTTP layer. Metrics may be nil.
type Deps struct {
	Users    UserService
	Tasks    TaskService
	Resolver SessionResolver
	Logger   logging.Logger
	Metrics  *observability.Metrics
}

type handlers struct {
	users     UserService
	tasks     TaskService
	resolver  SessionResolver
	logger    logging.Logger
	metrics   *observability.Metrics
	validator *validator
}

const (
	schemaUserCreate = "user_create"
	schemaUserUpdate = "user_update"
	schemaTaskCreate = "task_create"
	schemaTaskUpdate = "task_update"
)

// NewHandler builds the API router.
func NewHandler(d Deps) (http.Handler, error) {
	v, err := newValidator(map[string]any{
		schemaUserCreate: &userCreateRequest{},
		schemaUserUpdate: &userUpdateRequest{},
		schemaTaskCreate: &taskCreateRequest{},
		schemaTaskUpdate: &taskUpdateRequest{},
	})
	if err != nil {
		return nil, err
	}

	h := &handlers{
		users:     d.Users,
		tasks:     d.Tasks,
		resolver:  d.Resolver,
		logger:    d.Logger.With("module", "rest"),
		metrics:   d.Metrics,
		validator: v,
	}

	r := mux.NewRouter()
	r.Use(h.observe)
	r.NotFoundHandler = h.observe(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Not Found"})
	}))
	r.MethodNotAllowedHandler = h.observe(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method Not Allowed"})
	}))

	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/token", h.login).Methods(http.MethodPost)
	collection(r, "/users/", h.register, http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(h.authenticate)

	protected.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	collection(protected, "/users/me/", h.me, http.MethodGet)
	protected.HandleFunc("/users/{id}", h.updateUser).Methods(http.MethodPut)
	protected.HandleFunc("/users/{id}", h.deleteUser).Methods(http.MethodDelete)

	collection(protected, "/tasks/", h.createTask, http.MethodPost)
	collection(protected, "/tasks/", h.listTasks, http.MethodGet)
	protected.HandleFunc("/tasks/{id}", h.getTask).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", h.updateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id}", h.deleteTask).Methods(http.MethodDelete)

	return r, nil
}

// collection registers path both with and without its trailing slash.
func collection(r *mux.Router, path string, f http.HandlerFunc, method string) {
	r.HandleFunc(path, f).Methods(method)
	r.HandleFunc(strings.TrimSuffix(path, "/"), f).Methods(method)
}

// fail writes err and records forbidden attempts, failed logins and
// unexpected errors.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch status := writeError(w, err); {
	case status == http.StatusForbidden:
		h.metrics.AuthFailure(observability.ReasonForbidden)
		var email string
		if u := caller(r); u != nil {
			email = u.Email
		}
		h.logger.Warn(r.Context(), "forbidden", "user", email, "method", r.Method, "path", r.URL.Path)
	case status == http.StatusUnauthorized && errors.Is(err, common.ErrInvalidCredentials):
		h.metrics.AuthFailure(observability.ReasonBadCredentials)
		h.logger.Warn(r.Context(), "failed login", "email", r.PostFormValue("username"))
	case status >= http.StatusInternalServerError:
		h.logger.Error(r.Context(), "request failed", "error", err)
	}
}

func (h *handlers) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "GophTasks API"})
}
