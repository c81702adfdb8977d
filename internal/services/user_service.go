// Package services はビジネスロジックを扱います。
package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
)

// ErrInvalidCredentials はユーザーが存在しない、またはパスワードが一致しない場合のエラーです。
var ErrInvalidCredentials = errors.New("invalid credentials")

// prehash は bcrypt の 72 バイト制限を超える長さのパスワードも扱えるよう、
// SHA-256 の base64 表現 (44 バイト) に変換します。
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// HashPassword は与えられたパスワードを bcrypt でハッシュ化します。
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword はハッシュ化されたパスワードと平文のパスワードを比較します。
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), prehash(password))
}

// UserService は資格情報の登録と検証を扱います。
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService は新しい UserService を作成します。
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register はユーザーを登録します。
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.userRepo.Create(ctx, &models.User{Username: req.Username, PasswordHash: hashed})
}

// Verify はユーザー名とパスワードを検証し、成功したらユーザーを返します。
func (s *UserService) Verify(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
