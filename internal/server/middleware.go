package server

import (
	"strings"

	"github.com/ecotrail/ecotrail/internal/usercontext"
	"github.com/gin-gonic/gin"
)

const contextUserIDKey = "user_id"

// AuthRequired resolves the Bearer token to an account and injects the user
// id into the request context for the service layer.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		account, err := s.userSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := usercontext.WithUserID(c.Request.Context(), account.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, account.ID.String())
		c.Next()
	}
}
