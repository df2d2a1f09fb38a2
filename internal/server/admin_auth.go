package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/prompttemplates/marketplace/internal/auth/domain"
)

const contextAdminKey = "admin"

// AdminRequired authenticates back-office requests with a bearer session
// token.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			s.abort(c, authdomain.ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			s.abort(c, authdomain.ErrUnauthorized)
			return
		}

		admin, err := s.authSvc.Validate(c.Request.Context(), parts[1])
		if err != nil {
			s.abort(c, err)
			return
		}

		c.Set(contextAdminKey, admin)
		c.Next()
	}
}

func adminFromContext(c *gin.Context) *authdomain.Admin {
	value, ok := c.Get(contextAdminKey)
	if !ok {
		return nil
	}
	admin, _ := value.(*authdomain.Admin)
	return admin
}
