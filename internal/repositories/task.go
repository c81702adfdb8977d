package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task-manager-api/internal/models"
)

// ErrTaskNotFound はタスクが存在しない、または呼び出し元の所有でない場合のエラーです。
// 両者は区別しません。
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository はタスクの永続化を抽象化します。すべての操作は所有者で絞り込まれます。
type TaskRepository interface {
	List(ctx context.Context, owner int64) ([]*models.Task, error)
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	Get(ctx context.Context, owner, id int64) (*models.Task, error)
	Update(ctx context.Context, owner, id int64, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, owner, id int64) error
}

// MySQLTaskRepository は MySQL 上の TaskRepository 実装です。
type MySQLTaskRepository struct {
	DB *sql.DB
}

// NewTaskRepository は新しい MySQLTaskRepository を作成します。
func NewTaskRepository(db *sql.DB) *MySQLTaskRepository {
	return &MySQLTaskRepository{DB: db}
}

const taskColumns = "id, user_id, title, description, done, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &description, &t.Done, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Description = description.String
	return &t, nil
}

// List は owner のタスクを作成順で返します。
func (r *MySQLTaskRepository) List(ctx context.Context, owner int64) ([]*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ? ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// Create は新しいタスクを挿入し、採番された ID を設定して返します。
func (r *MySQLTaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	query := "INSERT INTO tasks (user_id, title, description, done) VALUES (?, ?, ?, ?)"
	result, err := r.DB.ExecContext(ctx, query, t.OwnerID, t.Title, t.Description, t.Done)
	if err != nil {
		return nil, fmt.Errorf("could not insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	return r.Get(ctx, t.OwnerID, id)
}

// Get は owner が所有する id のタスクを返します。
func (r *MySQLTaskRepository) Get(ctx context.Context, owner, id int64) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ? AND user_id = ?"
	t, err := scanTask(r.DB.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return t, nil
}

// Update は patch に含まれるフィールドだけを更新し、更新後のタスクを返します。
func (r *MySQLTaskRepository) Update(ctx context.Context, owner, id int64, patch models.TaskPatch) (*models.Task, error) {
	existing, err := r.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(existing)

	query := "UPDATE tasks SET title = ?, description = ?, done = ? WHERE id = ? AND user_id = ?"
	result, err := r.DB.ExecContext(ctx, query, existing.Title, existing.Description, existing.Done, id, owner)
	if err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}
	// clientFoundRows により一致行数が返る。0 なら読み取り後に削除された。
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return existing, nil
}

// Delete は owner が所有する id のタスクを削除します。
func (r *MySQLTaskRepository) Delete(ctx context.Context, owner, id int64) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, owner)
	if err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
