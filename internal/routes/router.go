// Package routes はルーティングを行います。
package routes

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-manager-api/internal/handlers"
	"task-manager-api/internal/middleware"
	"task-manager-api/internal/repositories"
	"task-manager-api/internal/services"
)

// Dependencies はハンドラーに注入する依存関係です。グローバル変数は使いません。
type Dependencies struct {
	Users  repositories.UserRepository
	Tasks  repositories.TaskRepository
	Tokens *services.TokenService
	Logger logrus.FieldLogger

	// Ping は /healthz で使うデータベースの疎通確認です。nil なら常に ok。
	Ping         func(ctx context.Context) error
	AllowOrigins []string
}

// SetupRouter は Gin ルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	// CORS対策
	config := cors.DefaultConfig()
	config.AllowOrigins = deps.AllowOrigins
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(config))

	// サービス
	userService := services.NewUserService(deps.Users)
	taskService := services.NewTaskService(deps.Tasks)

	// ハンドラー
	userHandler := handlers.NewUserHandler(userService, deps.Tokens, log)
	taskHandler := handlers.NewTaskHandler(taskService, log)

	// ルーティング
	r.GET("/", handlers.IndexHandler)
	r.GET("/healthz", handlers.HealthHandler(deps.Ping, log))

	auth := r.Group("/auth")
	{
		auth.POST("/register", userHandler.RegisterHandler)
		auth.POST("/login", userHandler.LoginHandler)
	}

	tasks := r.Group("/tasks")
	tasks.Use(middleware.Auth(deps.Tokens, log))
	{
		tasks.GET("", taskHandler.GetTasksHandler)
		tasks.POST("", taskHandler.CreateTaskHandler)
		tasks.GET("/:id", taskHandler.GetTaskHandler)
		tasks.PUT("/:id", taskHandler.UpdateTaskHandler)
		tasks.DELETE("/:id", taskHandler.DeleteTaskHandler)
	}

	return r
}
