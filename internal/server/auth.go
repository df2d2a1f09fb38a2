package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/prompttemplates/marketplace/internal/auth/domain"
)

// Login exchanges admin credentials for a bearer session token. The token
// sits at the top level of the body, next to the success flag.
func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, errInvalidRequest)
		return
	}

	resp, err := s.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		s.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"token":    resp.Token,
		"username": resp.Username,
		"email":    resp.Email,
	})
}

// ValidateSession confirms the bearer token is live; the admin console calls
// this on load to decide whether to show the login form.
func (s *Server) ValidateSession(c *gin.Context) {
	admin := adminFromContext(c)
	if admin == nil {
		s.abort(c, authdomain.ErrUnauthorized)
		return
	}
	respondOK(c, gin.H{
		"username": admin.Username,
		"email":    admin.Email,
	})
}
