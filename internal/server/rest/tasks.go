package rest

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

func (h *handlers) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskCreateRequest
	if err := h.validator.decode(r, schemaTaskCreate, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	t, err := h.tasks.Create(r.Context(), caller(r), models.Task{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTaskResponse(t))
}

func (h *handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0, -1)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultLimit, maxLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ts, err := h.tasks.List(r.Context(), caller(r), skip, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponses(ts))
}

func (h *handlers) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.tasks.Get(r.Context(), caller(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponse(t))
}

func (h *handlers) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req taskUpdateRequest
	if err := h.validator.decode(r, schemaTaskUpdate, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	t, err := h.tasks.Update(r.Context(), caller(r), id, models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponse(t))
}

// deleteTask answers with the body of the task it removed.
func (h *handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.tasks.Delete(r.Context(), caller(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponse(t))
}

// queryInt parses a non-negative query parameter. upper < 0 means unbounded.
func queryInt(r *http.Request, name string, def, upper int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, validationError("%s must be a non-negative integer", name)
	}
	if upper >= 0 && v > upper {
		return 0, validationError("%s must not exceed %d", name, upper)
	}
	return v, nil
}
