package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/chapmanwm/printsync-web/internal/api/shared/errors"
	"github.com/chapmanwm/printsync-web/internal/logger"
)

// KeyVerifier checks a presented shared-secret credential. It is injected
// rather than read from process environment so tests can substitute a fake.
type KeyVerifier interface {
	Verify(key string) bool
}

// StaticKeyVerifier verifies against a fixed set of configured API keys.
type StaticKeyVerifier struct {
	keys []string
}

// NewStaticKeyVerifier creates a verifier over the configured keys; empty
// entries are dropped
func NewStaticKeyVerifier(keys []string) *StaticKeyVerifier {
	valid := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != "" {
			valid = append(valid, key)
		}
	}
	return &StaticKeyVerifier{keys: valid}
}

// Verify reports whether key matches any configured key. Comparison is
// constant-time per candidate.
func (v *StaticKeyVerifier) Verify(key string) bool {
	if key == "" {
		return false
	}
	for _, candidate := range v.keys {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// extractAPIKey pulls the credential from the X-API-Key header, falling
// back to "Authorization: APIKey <key>"
func extractAPIKey(c *gin.Context) (string, error) {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("missing X-API-Key header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "apikey") {
		return "", errors.New("invalid Authorization header format")
	}

	return parts[1], nil
}

// APIKeyAuth returns a gin middleware guarding write endpoints with the
// shared secret
func APIKeyAuth(verifier KeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := extractAPIKey(c)
		if err == nil && !verifier.Verify(key) {
			err = errors.New("invalid API key")
		}

		if err != nil {
			logger.Warn("Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiErr)
			return
		}

		c.Next()
	}
}
