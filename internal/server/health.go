package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prompttemplates/marketplace/pkg/db"
)

// Healthz reports liveness and database reachability.
func (s *Server) Healthz(c *gin.Context) {
	if err := db.Ping(c.Request.Context(), s.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, envelope{Success: false, Message: "database unavailable"})
		return
	}
	respondOK(c, gin.H{"status": "ok"})
}
