// Package handlers は HTTP リクエストを検証し、サービスに委譲して結果をレスポンスに変換します。
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-manager-api/internal/middleware"
	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
	"task-manager-api/internal/services"
)

const (
	msgMissingCredentials = "No username or password provided"
	msgUsernameTaken      = "Username already taken"
	msgInvalidCredentials = "Invalid username or password"
	msgTitleRequired      = "Title is required"
	msgTaskNotFound       = "Task not found"
	msgInternal           = "Internal server error"
)

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// respondError はドメインエラーをステータスコードと {message} に変換します。
// 分類できないエラーは 500 とし、原因はログにのみ残します。
func respondError(c *gin.Context, log logrus.FieldLogger, err error, missingFieldMessage string) {
	switch {
	case errors.Is(err, models.ErrMissingField):
		respondMessage(c, http.StatusBadRequest, missingFieldMessage)
	case errors.Is(err, repositories.ErrDuplicateUsername):
		respondMessage(c, http.StatusBadRequest, msgUsernameTaken)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondMessage(c, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, services.ErrTokenMissing),
		errors.Is(err, services.ErrTokenInvalid),
		errors.Is(err, services.ErrTokenExpired):
		respondMessage(c, http.StatusUnauthorized, middleware.UnauthorizedMessage)
	case errors.Is(err, repositories.ErrTaskNotFound):
		respondMessage(c, http.StatusNotFound, msgTaskNotFound)
	default:
		_ = c.Error(err)
		log.WithField("request_id", middleware.RequestID(c)).WithError(err).Error("request failed")
		respondMessage(c, http.StatusInternalServerError, msgInternal)
	}
}
