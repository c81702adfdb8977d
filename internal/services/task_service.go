package services

import (
	"context"

	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
)

// TaskService は所有者で絞り込まれたタスク操作を扱います。
type TaskService struct {
	taskRepo repositories.TaskRepository
}

// NewTaskService は新しい TaskService を作成します。
func NewTaskService(taskRepo repositories.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// ListTasks は owner のタスクを返します。
func (s *TaskService) ListTasks(ctx context.Context, owner int64) ([]*models.Task, error) {
	return s.taskRepo.List(ctx, owner)
}

// CreateTask は owner のタスクを作成します。
func (s *TaskService) CreateTask(ctx context.Context, owner int64, req models.CreateTaskRequest) (*models.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.taskRepo.Create(ctx, req.ToTask(owner))
}

// GetTask は owner の id のタスクを返します。
func (s *TaskService) GetTask(ctx context.Context, owner, id int64) (*models.Task, error) {
	return s.taskRepo.Get(ctx, owner, id)
}

// UpdateTask は owner の id のタスクを部分更新します。
// タスクが見つからない場合は内容の検証より先に ErrTaskNotFound を返します。
func (s *TaskService) UpdateTask(ctx context.Context, owner, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	if _, err := s.taskRepo.Get(ctx, owner, id); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.taskRepo.Update(ctx, owner, id, req.ToPatch())
}

// DeleteTask は owner の id のタスクを削除します。
func (s *TaskService) DeleteTask(ctx context.Context, owner, id int64) error {
	return s.taskRepo.Delete(ctx, owner, id)
}
