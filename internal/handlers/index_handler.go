package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// WelcomeMessage はルートで返す案内文です。
const WelcomeMessage = "Welcome to the Task Management API!"

// IndexHandler はルートの案内文を返します。
func IndexHandler(c *gin.Context) {
	c.String(http.StatusOK, WelcomeMessage)
}

// Pinger は依存先の疎通確認を行います。
type Pinger func(ctx context.Context) error

// HealthHandler はデータベース接続の健全性を返します。
func HealthHandler(ping Pinger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		if err := ping(c.Request.Context()); err != nil {
			log.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "Database connection failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
