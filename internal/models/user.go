package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingField は必須フィールドが欠けている場合のエラーです。
var ErrMissingField = errors.New("missing field")

// User は登録済みユーザーです。パスワードはハッシュのみ保持します。
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Credentials は /auth/register と /auth/login の共通リクエストボディです。
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate はユーザー名とパスワードが両方あるか確認します。
func (c Credentials) Validate() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("%w: username and password", ErrMissingField)
	}
	return nil
}

// RegisterRequest はユーザー登録リクエストです。
type RegisterRequest = Credentials

// LoginRequest はログインリクエストです。
type LoginRequest = Credentials
