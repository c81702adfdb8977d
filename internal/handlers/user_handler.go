package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-manager-api/internal/models"
	"task-manager-api/internal/services"
)

// TokenIssuer はログイン成功時にトークンを発行します。
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// UserHandler は登録とログインのハンドラーを管理します。
type UserHandler struct {
	userService *services.UserService
	tokens      TokenIssuer
	log         logrus.FieldLogger
}

// NewUserHandler は新しい UserHandler を作成します。
func NewUserHandler(userService *services.UserService, tokens TokenIssuer, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{userService: userService, tokens: tokens, log: log}
}

// RegisterHandler はユーザー登録を処理します。
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgMissingCredentials)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err, msgMissingCredentials)
		return
	}

	h.log.WithField("user_id", user.ID).Info("user registered")
	respondMessage(c, http.StatusCreated, "User registered successfully")
}

// LoginHandler はログインを処理し、成功した場合はアクセストークンを返します。
func (h *UserHandler) LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgMissingCredentials)
		return
	}

	user, err := h.userService.Verify(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err, msgMissingCredentials)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(c, h.log, err, msgMissingCredentials)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}
