// Package webhookin receives result callbacks from the workflow engine.
package webhookin

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
	SignatureHeader = "X-Webhook-Signature"
	// DeliveryIDHeader carries the engine's unique delivery identifier.
	DeliveryIDHeader = "X-Delivery-ID"
)

// Sign computes the hex HMAC-SHA256 of body under secret. Exposed for tests
// and for callers that need to produce valid signatures.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureVerifier rejects callbacks whose body signature does not match the
// shared secret. With no secret configured, verification is disabled and
// every callback is accepted.
func SignatureVerifier(cfg config.WebhookAuthConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := cfg.GetWebhookSigningSecret()
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		provided := c.GetHeader(SignatureHeader)
		if provided == "" {
			log.Warn("webhook callback without signature", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing webhook signature"})
			return
		}

		expected := Sign(secret, body)
		if !hmac.Equal([]byte(provided), []byte(expected)) {
			log.Warn("webhook callback with invalid signature", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
			return
		}

		c.Next()
	}
}
