// Package middleware は認証とリクエストログのミドルウェアを提供します。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const userIDKey = "user_id"

// UnauthorizedMessage は認証失敗時に返す共通メッセージです。失敗理由は区別しません。
const UnauthorizedMessage = "Invalid or missing token"

// TokenVerifier はトークンを検証してユーザー ID を返します。
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Auth は Bearer トークンを検証し、ユーザー ID をコンテキストに設定するミドルウェアです。
// 検証に失敗した場合はハンドラーを呼ばずに 401 を返します。
func Auth(verifier TokenVerifier, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := verifier.Verify(BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			log.WithFields(logrus.Fields{
				"request_id": RequestID(c),
				"path":       c.FullPath(),
			}).WithError(err).Debug("rejected request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": UnauthorizedMessage})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// BearerToken は Authorization ヘッダーからトークン部分を取り出します。
// 形式が違う場合は空文字列を返します。
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserID は Auth が設定したユーザー ID を返します。
func UserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
