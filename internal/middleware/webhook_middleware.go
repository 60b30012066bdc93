package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/errors"
)

// SignatureHeader 결제사 통지 본문의 HMAC-SHA256 (hex)
const SignatureHeader = "X-Payment-Signature"

const maxWebhookBody = 64 << 10

type WebhookMiddleware struct {
	secret []byte
}

func NewWebhookMiddleware(secret string) *WebhookMiddleware {
	return &WebhookMiddleware{secret: []byte(secret)}
}

// Sign returns the signature expected for body.
func (m *WebhookMiddleware) Sign(body []byte) string {
	return hex.EncodeToString(m.mac(body))
}

// Verify accepts only payment notifications signed with the shared secret.
// 서명 키가 없으면 통지 API 를 막는다.
func (m *WebhookMiddleware) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		if len(m.secret) == 0 {
			log.Warn("Payment webhook secret not configured", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthSignatureInvalid, "결제 통지 API 가 비활성화되어 있습니다")
			c.Abort()
			return
		}

		signature := c.GetHeader(SignatureHeader)
		if signature == "" {
			log.Warn("Missing payment signature", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "결제 통지 서명이 필요합니다")
			c.Abort()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidInput, "결제 통지 본문을 읽을 수 없습니다")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		expected, err := hex.DecodeString(signature)
		if err != nil || !hmac.Equal(expected, m.mac(body)) {
			log.Warn("Payment signature mismatch", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthSignatureInvalid, "결제 통지 서명이 올바르지 않습니다")
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *WebhookMiddleware) mac(body []byte) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(body)
	return mac.Sum(nil)
}
