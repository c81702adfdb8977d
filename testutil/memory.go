// Package testutil はテスト用のリポジトリとヘルパーを提供します。
package testutil

import (
	"context"
	"sync"
	"time"

	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
)

// MemoryUserRepository はメモリ上の UserRepository 実装です。
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]models.User
}

// NewMemoryUserRepository は空の MemoryUserRepository を作成します。
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[u.Username]; exists {
		return nil, repositories.ErrDuplicateUsername
	}
	r.nextID++
	created := *u
	created.ID = r.nextID
	created.CreatedAt = time.Now()
	r.users[u.Username] = created
	return &created, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

// MemoryTaskRepository はメモリ上の TaskRepository 実装です。作成順を保持します。
type MemoryTaskRepository struct {
	mu     sync.Mutex
	nextID int64
	tasks  []models.Task

	// Err が設定されていれば全操作がそのエラーを返します。
	Err error
}

// NewMemoryTaskRepository は空の MemoryTaskRepository を作成します。
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{}
}

func (r *MemoryTaskRepository) List(_ context.Context, owner int64) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*models.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID == owner {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r *MemoryTaskRepository) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.nextID++
	created := *t
	created.ID = r.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.tasks = append(r.tasks, created)
	return &created, nil
}

func (r *MemoryTaskRepository) Get(_ context.Context, owner, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.indexOf(owner, id)
	if i < 0 {
		return nil, repositories.ErrTaskNotFound
	}
	t := r.tasks[i]
	return &t, nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, owner, id int64, patch models.TaskPatch) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.indexOf(owner, id)
	if i < 0 {
		return nil, repositories.ErrTaskNotFound
	}
	patch.Apply(&r.tasks[i])
	r.tasks[i].UpdatedAt = time.Now()
	t := r.tasks[i]
	return &t, nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, owner, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	i := r.indexOf(owner, id)
	if i < 0 {
		return repositories.ErrTaskNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return nil
}

// Len は保存されているタスクの総数を返します。
func (r *MemoryTaskRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

func (r *MemoryTaskRepository) indexOf(owner, id int64) int {
	for i, t := range r.tasks {
		if t.ID == id && t.OwnerID == owner {
			return i
		}
	}
	return -1
}
