package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/jwt"
)

var testSecret = []byte("middleware-test-secret")

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(JWTAuth(testSecret))
	engine.GET("/probe", func(c *gin.Context) {
		orgID, _ := c.Get(ContextOrgIDKey)
		c.JSON(http.StatusOK, gin.H{"org_id": orgID})
	})
	return engine
}

func TestJWTAuthValidToken(t *testing.T) {
	token, err := jwt.GenerateToken("org-a", "user-1", testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newAuthRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "org-a")
}

func TestJWTAuthMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	newAuthRouter().ServeHTTP(rec, req)

	require.NotContains(t, rec.Body.String(), "org-a")
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	newAuthRouter().ServeHTTP(rec, req)

	require.NotContains(t, rec.Body.String(), "org-a")
}

func TestJWTAuthWrongSecret(t *testing.T) {
	token, err := jwt.GenerateToken("org-a", "user-1", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newAuthRouter().ServeHTTP(rec, req)

	require.NotContains(t, rec.Body.String(), "org-a")
}
