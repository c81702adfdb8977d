// Package models はドメインのデータ構造とリクエストモデルを定義します。
package models

import (
	"fmt"
	"time"
)

// Task はユーザーが所有するタスクです。
// JSON に出すのは id, title, description, done のみ。
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Done        bool      `json:"done"`
	OwnerID     int64     `json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TaskPatch は部分更新の内容です。nil のフィールドは変更しません。
type TaskPatch struct {
	Title       *string
	Description *string
	Done        *bool
}

// Apply は patch の存在するフィールドだけを t に反映します。
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Done != nil {
		t.Done = *p.Done
	}
}

// Validate は patch がタスクの不変条件を壊さないか確認します。
func (p TaskPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrMissingField)
	}
	return nil
}

// CreateTaskRequest は POST /tasks のリクエストボディです。
type CreateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Validate はタイトルの有無を確認します。
func (r CreateTaskRequest) Validate() error {
	if r.Title == nil || *r.Title == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	return nil
}

// ToTask は owner が所有する新しいタスクに変換します。description の既定値は空文字列です。
func (r CreateTaskRequest) ToTask(owner int64) *Task {
	t := &Task{OwnerID: owner}
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	return t
}

// UpdateTaskRequest は PUT /tasks/:id のリクエストボディです。全フィールド省略可。
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Done        *bool   `json:"done"`
}

// ToPatch は TaskPatch に変換します。
func (r UpdateTaskRequest) ToPatch() TaskPatch {
	return TaskPatch{Title: r.Title, Description: r.Description, Done: r.Done}
}

// Validate は更新内容を確認します。
func (r UpdateTaskRequest) Validate() error {
	return r.ToPatch().Validate()
}
