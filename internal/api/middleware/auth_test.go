package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStaticKeyVerifier(t *testing.T) {
	t.Run("matching key passes", func(t *testing.T) {
		v := NewStaticKeyVerifier([]string{"secret-1", "secret-2"})
		assert.True(t, v.Verify("secret-1"))
		assert.True(t, v.Verify("secret-2"))
	})

	t.Run("non-matching key fails", func(t *testing.T) {
		v := NewStaticKeyVerifier([]string{"secret-1"})
		assert.False(t, v.Verify("secret-2"))
		assert.False(t, v.Verify("secret-1 "))
	})

	t.Run("empty key never passes", func(t *testing.T) {
		v := NewStaticKeyVerifier([]string{"secret-1"})
		assert.False(t, v.Verify(""))
	})

	t.Run("empty configured keys are dropped", func(t *testing.T) {
		v := NewStaticKeyVerifier([]string{"", ""})
		assert.False(t, v.Verify(""))
	})
}

func setupAuthRouter(verifier KeyVerifier) *gin.Engine {
	router := gin.New()
	router.POST("/protected", APIKeyAuth(verifier), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAPIKeyAuth(t *testing.T) {
	verifier := NewStaticKeyVerifier([]string{"hunter2"})
	router := setupAuthRouter(verifier)

	t.Run("valid X-API-Key header passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("X-API-Key", "hunter2")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("valid Authorization APIKey header passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "APIKey hunter2")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing credential is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("X-API-Key", "wrong")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Bearer scheme is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "Bearer hunter2")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
