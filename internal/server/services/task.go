package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
)

// TaskService manages the caller's tasks. Every by-id operation loads the
// task first (common.ErrorNotFound) and then checks ownership
// (common.ErrForbidden).
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// Create stores a new task owned by caller.
func (s *TaskService) Create(ctx context.Context, caller *models.User, task models.Task) (*models.Task, error) {
	task.ID = 0
	task.OwnerUserID = caller.ID
	t, err := s.repomanager.Tasks(s.db).Create(ctx, &task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return t, nil
}

func (s *TaskService) List(ctx context.Context, caller *models.User, skip, limit int) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).ListByOwner(ctx, caller.ID, skip, limit)
}

func (s *TaskService) Get(ctx context.Context, caller *models.User, id int64) (*models.Task, error) {
	return s.owned(ctx, caller, id)
}

// Update applies upd to the caller's task. An empty update still bumps
// updated_at.
func (s *TaskService) Update(ctx context.Context, caller *models.User, id int64, upd models.TaskUpdate) (*models.Task, error) {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.repomanager.Tasks(s.db).Update(ctx, id, upd)
}

// Delete removes the caller's task and returns what was deleted.
func (s *TaskService) Delete(ctx context.Context, caller *models.User, id int64) (*models.Task, error) {
	t, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Tasks(s.db).Delete(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) owned(ctx context.Context, caller *models.User, id int64) (*models.Task, error) {
	t, err := s.repomanager.Tasks(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwner(t, caller); err != nil {
		return nil, err
	}
	return t, nil
}
