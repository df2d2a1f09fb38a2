package server

import (
	"github.com/gin-gonic/gin"
)

// Stats serves the admin dashboard aggregates.
func (s *Server) Stats(c *gin.Context) {
	out, err := s.statsSvc.Dashboard(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}
	respondOK(c, out)
}
