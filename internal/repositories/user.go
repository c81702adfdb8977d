// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"task-manager-api/internal/models"
)

var (
	ErrDuplicateUsername = errors.New("username already taken")
	ErrUserNotFound      = errors.New("user not found")
)

// mysqlDuplicateEntry は UNIQUE 制約違反のエラー番号です。
const mysqlDuplicateEntry = 1062

// UserRepository はユーザーの永続化を抽象化します。
type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// MySQLUserRepository は MySQL 上の UserRepository 実装です。
type MySQLUserRepository struct {
	DB *sql.DB
}

// NewUserRepository は新しい MySQLUserRepository を作成します。
func NewUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{DB: db}
}

// Create は新しいユーザーを挿入します。ユーザー名の一意性は UNIQUE 制約に任せます。
func (r *MySQLUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := "INSERT INTO users (username, password_hash) VALUES (?, ?)"
	result, err := r.DB.ExecContext(ctx, query, u.Username, u.PasswordHash)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("could not insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	created := *u
	created.ID = id
	return &created, nil
}

// FindByUsername はユーザー名 (完全一致) でユーザーを検索します。
func (r *MySQLUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := "SELECT id, username, password_hash, created_at FROM users WHERE username = ?"
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return &u, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
