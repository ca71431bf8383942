package client

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

// Client is the API surface the CLI uses.
type Client interface {
	Register(ctx context.Context, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	LoggedIn() bool
	Me(ctx context.Context) (*models.User, error)
	ListTasks(ctx context.Context, skip, limit int) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.NewTask) (*models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, upd models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) (*models.Task, error)
}
