// Package tasks declares and implements persistence for to-do items.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// Repository stores tasks. A missing row is reported as common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	// ListByOwner returns the owner's tasks in ascending id order.
	ListByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Task, error)
	Update(ctx context.Context, id int64, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	DeleteByOwner(ctx context.Context, ownerID int64) (int64, error)
}
