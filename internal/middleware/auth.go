package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/pkg/jwt"
	"github.com/prism-worklet/prism-api/pkg/logger"
)

// Context keys set by RequireAccessToken.
const (
	ContextAccountID    = "account_id"
	ContextAccountEmail = "account_email"
	ContextAccountRole  = "account_role"
)

// AccessTokenVerifier checks a bearer token and returns its claims.
type AccessTokenVerifier interface {
	Verify(ctx context.Context, tokenString, expectedKind string) (*jwt.SessionClaims, error)
}

// RequireAccessToken validates the Authorization bearer token as an
// access token and stores the session claims on the request context.
func RequireAccessToken(tokens AccessTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		claims, err := tokens.Verify(c.Request.Context(), token, jwt.KindAccess)
		if err != nil {
			logger.Warn("Rejected access token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextAccountEmail, claims.Subject)
		c.Set(ContextAccountRole, claims.Role)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
