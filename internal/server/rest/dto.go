package rest

import (
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

type userCreateRequest struct {
	Email    string `json:"email" jsonschema:"format=email,maxLength=254"`
	Password string `json:"password" jsonschema:"minLength=1,maxLength=72"`
}

type userUpdateRequest struct {
	Email    *string `json:"email,omitempty" jsonschema:"nullable,format=email,maxLength=254"`
	Password *string `json:"password,omitempty" jsonschema:"nullable,minLength=1,maxLength=72"`
	IsActive *bool   `json:"is_active,omitempty" jsonschema:"nullable"`
}

type taskCreateRequest struct {
	Title       string     `json:"title" jsonschema:"minLength=1,maxLength=255"`
	Description *string    `json:"description,omitempty" jsonschema:"nullable,maxLength=4096"`
	Completed   bool       `json:"completed,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" jsonschema:"nullable"`
}

// taskUpdateRequest is partial: absent or null fields stay as they are.
type taskUpdateRequest struct {
	Title       *string    `json:"title,omitempty" jsonschema:"nullable,minLength=1,maxLength=255"`
	Description *string    `json:"description,omitempty" jsonschema:"nullable,maxLength=4096"`
	Completed   *bool      `json:"completed,omitempty" jsonschema:"nullable"`
	DueDate     *time.Time `json:"due_date,omitempty" jsonschema:"nullable"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// userResponse never carries the password hash.
type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, IsActive: u.IsActive, CreatedAt: u.CreatedAt}
}

type taskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	OwnerID     int64      `json:"owner_id"`
}

func newTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		OwnerID:     t.OwnerUserID,
	}
}

func newTaskResponses(ts []*models.Task) []taskResponse {
	out := make([]taskResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, newTaskResponse(t))
	}
	return out
}
