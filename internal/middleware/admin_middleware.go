package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/errors"
)

type AdminMiddleware struct {
	apiKey string
}

func NewAdminMiddleware(apiKey string) *AdminMiddleware {
	return &AdminMiddleware{
		apiKey: apiKey,
	}
}

// Authenticate validates the operations API key.
// 키가 설정되지 않은 환경에서는 운영 API 를 모두 막는다.
func (m *AdminMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		if m.apiKey == "" {
			log.Warn("Admin API key not configured", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthAdminKeyInvalid, "운영 API 가 비활성화되어 있습니다")
			c.Abort()
			return
		}

		var key string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			// "Bearer <key>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthAdminKeyInvalid, "인증 형식이 올바르지 않습니다")
				c.Abort()
				return
			}
			key = parts[1]
		} else {
			key = c.GetHeader("X-Admin-Key")
		}

		if key == "" {
			log.Warn("Missing admin key", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "운영 키가 필요합니다")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			log.Warn("Admin key mismatch", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthAdminKeyInvalid, "운영 키가 올바르지 않습니다")
			c.Abort()
			return
		}

		c.Next()
	}
}
