package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errcode"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/jwt"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/response"
)

const (
	ContextOrgIDKey  = "org_id"
	ContextUserIDKey = "user_id"
)

// JWTAuth extracts the organization identity from the bearer token. Every
// org-scoped route depends on this; a token without org_id never passes.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextOrgIDKey, claims.OrgID)
		if claims.UserID != "" {
			c.Set(ContextUserIDKey, claims.UserID)
		}
		c.Next()
	}
}
