package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/prompttemplates/marketplace/internal/audit/domain"
	"github.com/prompttemplates/marketplace/internal/clock"
	"github.com/prompttemplates/marketplace/internal/config"
	customerdomain "github.com/prompttemplates/marketplace/internal/customer/domain"
	"github.com/prompttemplates/marketplace/internal/observability/metrics"
	paymentdomain "github.com/prompttemplates/marketplace/internal/payment/domain"
	"github.com/prompttemplates/marketplace/internal/payment/gateway"
	"github.com/prompttemplates/marketplace/internal/storage"
	templatedomain "github.com/prompttemplates/marketplace/internal/template/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	provider = "mpesa"

	declinedMessage   = "Payment failed. Please try again."
	declinedAuditMsg  = "Payment cancelled by user"
	transactionPrefix = "TXN_"
	transactionAlnum  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	transactionTail   = 9
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Cfg      config.Config
	Registry *gateway.Registry
	Store    *storage.Store
	AuditSvc auditdomain.Service
	Metrics  *metrics.PaymentMetrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cfg      config.Config
	registry *gateway.Registry
	store    *storage.Store
	auditSvc auditdomain.Service
	metrics  *metrics.PaymentMetrics

	mu  sync.Mutex
	rng *rand.Rand
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		cfg:      p.Cfg,
		registry: p.Registry,
		store:    p.Store,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) Initiate(ctx context.Context, req paymentdomain.InitiateRequest) (*paymentdomain.InitiateResult, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerEmail) == "" {
		return nil, paymentdomain.ErrInvalidCustomer
	}

	phone, err := paymentdomain.NormalizePhone(req.Phone, s.cfg.PhoneCountryCode)
	if err != nil {
		return nil, err
	}

	templates, err := s.loadOrderedTemplates(ctx, req.TemplateIDs)
	if err != nil {
		return nil, err
	}

	// The charged amount is the sum of current prices; the client-supplied
	// figure is only cross-checked.
	var total int64
	for _, t := range templates {
		total += t.Price
	}
	if req.Amount != total {
		return nil, paymentdomain.ErrAmountMismatch
	}

	adapter, err := s.registry.Adapter(provider)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	transactionID := s.newTransactionID(now)

	charge, err := adapter.Charge(ctx, paymentdomain.ChargeRequest{
		TransactionID: transactionID,
		Phone:         phone,
		Amount:        total,
	})
	if err != nil {
		if errors.Is(err, paymentdomain.ErrChargeDeclined) {
			return s.recordDecline(ctx, transactionID, phone, total)
		}
		return nil, err
	}

	downloadURL := "/download/" + transactionID
	receipt := charge.Receipt

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customerID, err := customerdomain.UpsertByEmail(ctx, tx, s.genID, req.CustomerEmail, phone, req.CustomerName, now)
		if err != nil {
			return err
		}

		purchase := paymentdomain.Purchase{
			ID:            s.genID.Generate(),
			TransactionID: transactionID,
			CustomerID:    customerID,
			Amount:        total,
			PhoneNumber:   phone,
			MpesaReceipt:  &receipt,
			Status:        paymentdomain.StatusCompleted,
			DownloadURL:   downloadURL,
			PaymentDate:   now,
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		for _, t := range templates {
			link := paymentdomain.PurchaseTemplate{
				PurchaseID: purchase.ID,
				TemplateID: t.ID,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
			if err := templatedomain.IncrementDownloads(ctx, tx, t.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOutcome(ctx, true)
	s.writeAudit(ctx, "payment.completed", transactionID, map[string]any{
		"amount":    total,
		"phone":     phone,
		"receipt":   receipt,
		"templates": len(templates),
	})
	s.log.Info("payment completed",
		zap.String("transaction_id", transactionID),
		zap.Int64("amount", total),
		zap.Int("templates", len(templates)),
	)

	return &paymentdomain.InitiateResult{
		TransactionID: transactionID,
		Succeeded:     true,
		Receipt:       receipt,
		DownloadURL:   downloadURL,
		Message:       "Payment successful",
	}, nil
}

func (s *Service) recordDecline(ctx context.Context, transactionID, phone string, amount int64) (*paymentdomain.InitiateResult, error) {
	row := paymentdomain.FailedPayment{
		ID:            s.genID.Generate(),
		TransactionID: transactionID,
		PhoneNumber:   phone,
		Amount:        amount,
		ErrorMessage:  declinedAuditMsg,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}

	s.metrics.RecordOutcome(ctx, false)
	s.writeAudit(ctx, "payment.failed", transactionID, map[string]any{
		"amount": amount,
		"phone":  phone,
		"reason": declinedAuditMsg,
	})
	s.log.Info("payment declined", zap.String("transaction_id", transactionID), zap.Int64("amount", amount))

	return &paymentdomain.InitiateResult{
		TransactionID: transactionID,
		Succeeded:     false,
		Message:       declinedMessage,
	}, nil
}

func (s *Service) CheckStatus(ctx context.Context, transactionID string) (*paymentdomain.StatusResult, error) {
	transactionID = strings.TrimSpace(transactionID)

	var purchase paymentdomain.Purchase
	err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown ids poll as pending; an asynchronous gateway may not
			// have settled yet.
			return &paymentdomain.StatusResult{
				TransactionID: transactionID,
				Status:        paymentdomain.StatusPending,
			}, nil
		}
		return nil, err
	}

	result := &paymentdomain.StatusResult{
		TransactionID: purchase.TransactionID,
		Status:        purchase.Status,
		Amount:        purchase.Amount,
	}
	if purchase.Status == paymentdomain.StatusCompleted {
		result.MpesaReceipt = purchase.MpesaReceipt
		result.DownloadURL = purchase.DownloadURL
		date := purchase.PaymentDate
		result.PaymentDate = &date
	}
	return result, nil
}

func (s *Service) Download(ctx context.Context, transactionID string) (*paymentdomain.DownloadResult, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, paymentdomain.ErrNotFound
	}

	var row struct {
		Name       string `gorm:"column:name"`
		ZipFileURL string `gorm:"column:zip_file_url"`
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT t.name, t.zip_file_url
		 FROM templates t
		 INNER JOIN purchase_templates pt ON t.id = pt.template_id
		 INNER JOIN purchases p ON pt.purchase_id = p.id
		 WHERE p.transaction_id = ? AND p.status = ?
		 ORDER BY t.id
		 LIMIT 1`,
		transactionID,
		paymentdomain.StatusCompleted,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ZipFileURL == "" {
		return nil, paymentdomain.ErrNotFound
	}

	file, err := s.store.Open(row.ZipFileURL)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, paymentdomain.ErrNotFound
		}
		return nil, err
	}

	return &paymentdomain.DownloadResult{TemplateName: row.Name, File: file}, nil
}

// loadOrderedTemplates resolves the requested ids to active templates,
// preserving request order. Unknown, inactive, and repeated ids are
// validation failures.
func (s *Service) loadOrderedTemplates(ctx context.Context, rawIDs []string) ([]templatedomain.Template, error) {
	if len(rawIDs) == 0 {
		return nil, paymentdomain.ErrNoTemplates
	}

	ids := make([]snowflake.ID, 0, len(rawIDs))
	seen := make(map[snowflake.ID]struct{}, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil {
			return nil, paymentdomain.ErrUnknownTemplate
		}
		if _, dup := seen[id]; dup {
			return nil, paymentdomain.ErrDuplicateTemplate
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var rows []templatedomain.Template
	err := s.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) != len(ids) {
		return nil, paymentdomain.ErrUnknownTemplate
	}

	byID := make(map[snowflake.ID]templatedomain.Template, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]templatedomain.Template, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}

func (s *Service) newTransactionID(now time.Time) string {
	tail := make([]byte, transactionTail)
	s.mu.Lock()
	for i := range tail {
		tail[i] = transactionAlnum[s.rng.Intn(len(transactionAlnum))]
	}
	s.mu.Unlock()
	return fmt.Sprintf("%s%d_%s", transactionPrefix, now.UnixMilli(), tail)
}

func (s *Service) writeAudit(ctx context.Context, action, transactionID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := transactionID
	_ = s.auditSvc.Log(ctx, auditdomain.ActorTypeSystem, nil, action, "payment", &targetID, metadata)
}
