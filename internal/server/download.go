package server

import (
	"github.com/gin-gonic/gin"
)

// DownloadPurchase streams the purchased archive for a completed
// transaction.
func (s *Server) DownloadPurchase(c *gin.Context) {
	transactionID := c.Param("transactionId")

	result, err := s.paymentSvc.Download(c.Request.Context(), transactionID)
	if err != nil {
		s.abort(c, err)
		return
	}
	defer result.File.Close()

	info, err := result.File.Stat()
	if err != nil {
		s.abort(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.TemplateName+`.zip"`)
	c.Header("Content-Type", "application/zip")
	c.DataFromReader(200, info.Size(), "application/zip", result.File, nil)
}
