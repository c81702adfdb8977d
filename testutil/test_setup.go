package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/config"
	"task-manager-api/internal/database"
	"task-manager-api/internal/models"
	"task-manager-api/internal/routes"
	"task-manager-api/internal/services"
)

// TestJWTSecret はテスト用の署名鍵です。
const TestJWTSecret = "test_very_secret_jwt_key_here"

// TestEnv はテスト用ルーターとその依存関係です。
type TestEnv struct {
	Router *gin.Engine
	Users  *MemoryUserRepository
	Tasks  *MemoryTaskRepository
	Tokens *services.TokenService
}

// NewTestLogger は出力を捨てる logrus ロガーを返します。
func NewTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// SetupTestRouter はメモリ上のリポジトリでテスト用の Gin ルーターをセットアップします。
func SetupTestRouter(t *testing.T, opts ...services.TokenOption) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := services.NewTokenService([]byte(TestJWTSecret), time.Hour, opts...)
	require.NoError(t, err)

	env := &TestEnv{
		Users:  NewMemoryUserRepository(),
		Tasks:  NewMemoryTaskRepository(),
		Tokens: tokens,
	}
	env.Router = routes.SetupRouter(routes.Dependencies{
		Users:  env.Users,
		Tasks:  env.Tasks,
		Tokens: tokens,
		Logger: NewTestLogger(),
	})
	return env
}

// SetupTestDB はテスト用の MySQL に接続し、テーブルを作成して空にします。
// TEST_DB_* が設定されていない場合はテストをスキップします。
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	_ = godotenv.Load("../../.env")

	cfg := &config.Config{
		DBUser: os.Getenv("TEST_DB_USER"),
		DBPass: os.Getenv("TEST_DB_PASS"),
		DBHost: os.Getenv("TEST_DB_HOST"),
		DBPort: os.Getenv("TEST_DB_PORT"),
		DBName: os.Getenv("TEST_DB_NAME"),
	}
	if cfg.DBUser == "" || cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" {
		t.Skip("Skipping test: TEST_DB_* environment variables are not set")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		t.Skipf("Skipping test: database unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, database.Truncate(ctx, db))
	return db
}

// DoJSON は JSON ボディ付きのリクエストをルーターに送ります。token が空なら Authorization を付けません。
func DoJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		switch p := payload.(type) {
		case string:
			body = bytes.NewBufferString(p)
		default:
			b, err := json.Marshal(p)
			require.NoError(t, err)
			body = bytes.NewBuffer(b)
		}
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// RegisterUser は /auth/register でユーザーを登録します。
func RegisterUser(t *testing.T, router http.Handler, username, password string) {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "ユーザー登録に失敗しました: %s", resp.Body.String())
}

// LoginAndGetToken は /auth/login でログインし、アクセストークンを返します。
func LoginAndGetToken(t *testing.T, router http.Handler, username, password string) (string, error) {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", resp.Code, resp.Body.String())
	}
	var loginRes map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &loginRes); err != nil {
		return "", fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	token, ok := loginRes["access_token"]
	if !ok || token == "" {
		return "", fmt.Errorf("access_token not found in login response")
	}
	return token, nil
}

// RegisterAndLogin はユーザーを登録してトークンを返します。
func RegisterAndLogin(t *testing.T, router http.Handler, username, password string) string {
	t.Helper()
	RegisterUser(t, router, username, password)
	token, err := LoginAndGetToken(t, router, username, password)
	require.NoError(t, err)
	return token
}

// CreateTestTask は /tasks でタスクを作成して返します。
func CreateTestTask(t *testing.T, router http.Handler, token, title string) *models.Task {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/tasks", token, map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, resp.Code, "タスク作成に失敗しました: %s", resp.Body.String())

	var created models.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}
