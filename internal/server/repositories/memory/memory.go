// Package memory is an in-memory RepositoryManager. It keeps every table in
// maps behind one mutex and ignores the DBTX it is handed, so writes are not
// rolled back with a failed transaction. Used by service and HTTP tests.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/users"
)

type store struct {
	mu       sync.Mutex
	users    map[int64]models.User
	tasks    map[int64]models.Task
	revoked  map[string]time.Time
	nextUser int64
	nextTask int64
	last     time.Time
}

// tick returns a strictly increasing timestamp.
func (s *store) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

// RepositoryManager satisfies repomanager.RepositoryManager.
type RepositoryManager struct {
	s *store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{s: &store{
		users:   map[int64]models.User{},
		tasks:   map[int64]models.Task{},
		revoked: map[string]time.Time{},
	}}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository { return (*userRepo)(m.s) }

func (m *RepositoryManager) Tasks(dbx.DBTX) tasks.Repository { return (*taskRepo)(m.s) }

func (m *RepositoryManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository {
	return (*revokedRepo)(m.s)
}

type userRepo store

func (r *userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.users {
		if other.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	s.nextUser++
	rec := *u
	rec.ID = s.nextUser
	rec.CreatedAt = s.tick()
	rec.UpdatedAt = rec.CreatedAt
	s.users[rec.ID] = rec
	return &rec, nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) Update(_ context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Email != nil {
		for oid, other := range s.users {
			if oid != id && other.Email == *upd.Email {
				return nil, common.ErrorAlreadyExists
			}
		}
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	u.UpdatedAt = s.tick()
	s.users[id] = u
	return &u, nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.users, id)
	for tid, t := range s.tasks {
		if t.OwnerUserID == id {
			delete(s.tasks, tid)
		}
	}
	return nil
}

type taskRepo store

func (r *taskRepo) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[t.OwnerUserID]; !ok {
		return nil, common.ErrorNotFound
	}
	s.nextTask++
	rec := *t
	rec.ID = s.nextTask
	rec.CreatedAt = s.tick()
	rec.UpdatedAt = rec.CreatedAt
	s.tasks[rec.ID] = rec
	return &rec, nil
}

func (r *taskRepo) GetByID(_ context.Context, id int64) (*models.Task, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *taskRepo) ListByOwner(_ context.Context, ownerID int64, skip, limit int) ([]*models.Task, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*models.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerUserID == ownerID {
			result = append(result, &t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	if skip >= len(result) {
		return result[:0], nil
	}
	result = result[skip:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *taskRepo) Update(_ context.Context, id int64, upd models.TaskUpdate) (*models.Task, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = upd.Description
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	if upd.DueDate != nil {
		t.DueDate = upd.DueDate
	}
	t.UpdatedAt = s.tick()
	s.tasks[id] = t
	return &t, nil
}

func (r *taskRepo) Delete(_ context.Context, id int64) error {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (r *taskRepo) DeleteByOwner(_ context.Context, ownerID int64) (int64, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, t := range s.tasks {
		if t.OwnerUserID == ownerID {
			delete(s.tasks, id)
			n++
		}
	}
	return n, nil
}

type revokedRepo store

func (r *revokedRepo) Create(_ context.Context, t models.RevokedToken) error {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.revoked[t.JTI]; !ok {
		s.revoked[t.JTI] = t.ExpiresAt
	}
	return nil
}

func (r *revokedRepo) Exists(_ context.Context, jti string) (bool, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.revoked[jti]
	return ok, nil
}

func (r *revokedRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for jti, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, jti)
			n++
		}
	}
	return n, nil
}
