package stats

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recentPaymentsLimit = 10

// Dashboard aggregates the back-office overview counts.
type Dashboard struct {
	TotalTemplates     int64 `json:"total_templates"`
	TotalSales         int64 `json:"total_sales"`
	SuccessfulPayments int64 `json:"successful_payments"`
	FailedPayments     int64 `json:"failed_payments"`
}

// RecentPayment is one purchase joined with its customer's identity.
type RecentPayment struct {
	TransactionID string    `gorm:"column:transaction_id" json:"transaction_id"`
	Amount        int64     `gorm:"column:amount" json:"amount"`
	PhoneNumber   string    `gorm:"column:phone_number" json:"phone_number"`
	MpesaReceipt  *string   `gorm:"column:mpesa_receipt" json:"mpesa_receipt"`
	Status        string    `gorm:"column:status" json:"status"`
	PaymentDate   time.Time `gorm:"column:payment_date" json:"payment_date"`
	CustomerEmail *string   `gorm:"column:customer_email" json:"customer_email"`
	CustomerName  *string   `gorm:"column:customer_name" json:"customer_name"`
}

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	RecentPayments(ctx context.Context) ([]RecentPayment, error)
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p Params) Service {
	return &service{db: p.DB, log: p.Log.Named("stats.service")}
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard

	err := s.db.WithContext(ctx).
		Table("templates").
		Where("is_active = ?", true).
		Count(&out.TotalTemplates).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM purchases WHERE status = 'completed'`,
	).Scan(&out.TotalSales).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Table("purchases").
		Where("status = ?", "completed").
		Count(&out.SuccessfulPayments).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Table("failed_payments").
		Count(&out.FailedPayments).Error
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (s *service) RecentPayments(ctx context.Context) ([]RecentPayment, error) {
	var rows []RecentPayment
	err := s.db.WithContext(ctx).Raw(
		`SELECT p.transaction_id, p.amount, p.phone_number, p.mpesa_receipt, p.status, p.payment_date,
		        c.email AS customer_email, c.full_name AS customer_name
		 FROM purchases p
		 LEFT JOIN customers c ON p.customer_id = c.id
		 ORDER BY p.payment_date DESC
		 LIMIT ?`,
		recentPaymentsLimit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
