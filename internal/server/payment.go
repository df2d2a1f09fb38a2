package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/prompttemplates/marketplace/internal/payment/domain"
)

type initiatePaymentRequest struct {
	Phone         string   `json:"phone"`
	Amount        int64    `json:"amount"`
	TemplateIDs   []string `json:"template_ids"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
}

type paymentStatusResponse struct {
	TransactionID string     `json:"transaction_id"`
	Status        string     `json:"status"`
	Amount        int64      `json:"amount"`
	MpesaReceipt  *string    `json:"mpesa_receipt,omitempty"`
	DownloadURL   string     `json:"download_url,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
}

// InitiatePayment runs the simulated mobile-money charge. A declined charge
// is a 400 that still carries the transaction id, so the attempt remains
// auditable.
func (s *Server) InitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, errInvalidRequest)
		return
	}

	result, err := s.paymentSvc.Initiate(c.Request.Context(), paymentdomain.InitiateRequest{
		Phone:         req.Phone,
		Amount:        req.Amount,
		TemplateIDs:   req.TemplateIDs,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		s.abort(c, err)
		return
	}

	if !result.Succeeded {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":        false,
			"message":        result.Message,
			"transaction_id": result.TransactionID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        result.Message,
		"transaction_id": result.TransactionID,
		"receipt":        result.Receipt,
		"download_url":   result.DownloadURL,
	})
}

// PaymentStatus serves the storefront's polling loop.
func (s *Server) PaymentStatus(c *gin.Context) {
	transactionID := strings.TrimSpace(c.Query("transaction_id"))
	if transactionID == "" {
		s.abort(c, errInvalidRequest)
		return
	}

	result, err := s.paymentSvc.CheckStatus(c.Request.Context(), transactionID)
	if err != nil {
		s.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payment": paymentStatusResponse{
			TransactionID: result.TransactionID,
			Status:        string(result.Status),
			Amount:        result.Amount,
			MpesaReceipt:  result.MpesaReceipt,
			DownloadURL:   result.DownloadURL,
			PaymentDate:   result.PaymentDate,
		},
	})
}

// RecentPayments lists the last purchases for the admin dashboard.
func (s *Server) RecentPayments(c *gin.Context) {
	rows, err := s.statsSvc.RecentPayments(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}
	respondOK(c, rows)
}
