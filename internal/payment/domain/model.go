package domain

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is a purchase's lifecycle state. The simulated gateway resolves
// synchronously so rows are written in a terminal state; pending is reserved
// for asynchronous gateways and is what polling reports for transactions the
// store does not know yet.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Purchase is a durable record of a successful charge.
type Purchase struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TransactionID string       `gorm:"uniqueIndex;size:64" json:"transaction_id"`
	CustomerID    snowflake.ID `gorm:"index" json:"customer_id"`
	Amount        int64        `json:"amount"`
	PhoneNumber   string       `gorm:"size:32" json:"phone_number"`
	MpesaReceipt  *string      `gorm:"size:64" json:"mpesa_receipt"`
	Status        Status       `gorm:"size:16" json:"status"`
	DownloadURL   string       `gorm:"size:255" json:"download_url"`
	PaymentDate   time.Time    `json:"payment_date"`
}

func (Purchase) TableName() string { return "purchases" }

// PurchaseTemplate links one purchased item to its order.
type PurchaseTemplate struct {
	PurchaseID snowflake.ID `gorm:"primaryKey"`
	TemplateID snowflake.ID `gorm:"primaryKey"`
}

func (PurchaseTemplate) TableName() string { return "purchase_templates" }

// FailedPayment is an independent audit trail of declined charges. It is
// never joined to Purchase.
type FailedPayment struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TransactionID string       `gorm:"index;size:64" json:"transaction_id"`
	PhoneNumber   string       `gorm:"size:32" json:"phone_number"`
	Amount        int64        `json:"amount"`
	ErrorMessage  string       `gorm:"size:255" json:"error_message"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (FailedPayment) TableName() string { return "failed_payments" }

type InitiateRequest struct {
	Phone         string
	Amount        int64
	TemplateIDs   []string
	CustomerName  string
	CustomerEmail string
}

// InitiateResult reports the charge outcome. A declined charge is a normal
// result, not an error; the transaction id is always present so failed
// attempts stay auditable.
type InitiateResult struct {
	TransactionID string
	Succeeded     bool
	Receipt       string
	DownloadURL   string
	Message       string
}

type StatusResult struct {
	TransactionID string
	Status        Status
	Amount        int64
	MpesaReceipt  *string
	DownloadURL   string
	PaymentDate   *time.Time
}

// DownloadResult hands the caller an open archive; the caller closes it.
type DownloadResult struct {
	TemplateName string
	File         *os.File
}

type Service interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	// CheckStatus never fails for an unknown transaction id; it reports
	// pending so clients can keep polling.
	CheckStatus(ctx context.Context, transactionID string) (*StatusResult, error)
	Download(ctx context.Context, transactionID string) (*DownloadResult, error)
}

var (
	ErrNoTemplates       = errors.New("no_templates")
	ErrDuplicateTemplate = errors.New("duplicate_template")
	ErrUnknownTemplate   = errors.New("unknown_template")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrAmountMismatch    = errors.New("amount_mismatch")
	ErrNotFound          = errors.New("not_found")
)
