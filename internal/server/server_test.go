package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/prompttemplates/marketplace/internal/auth/domain"
	"github.com/prompttemplates/marketplace/internal/config"
	"github.com/prompttemplates/marketplace/internal/observability/metrics"
	paymentdomain "github.com/prompttemplates/marketplace/internal/payment/domain"
	settingsdomain "github.com/prompttemplates/marketplace/internal/settings/domain"
	"github.com/prompttemplates/marketplace/internal/stats"
	"github.com/prompttemplates/marketplace/internal/storage"
	templatedomain "github.com/prompttemplates/marketplace/internal/template/domain"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubTemplates struct {
	rows []templatedomain.Template
}

func (s *stubTemplates) Create(_ context.Context, req templatedomain.CreateRequest) (*templatedomain.Template, error) {
	return &templatedomain.Template{Name: req.Name, Price: req.Price, IsActive: true}, nil
}

func (s *stubTemplates) ListActive(context.Context) ([]templatedomain.Template, error) {
	return s.rows, nil
}

func (s *stubTemplates) Get(context.Context, string) (*templatedomain.Template, error) {
	return nil, templatedomain.ErrNotFound
}

func (s *stubTemplates) SoftDelete(context.Context, string) error {
	return templatedomain.ErrNotFound
}

type stubSettings struct{}

func (stubSettings) Get(context.Context) (*settingsdomain.Settings, error) {
	return &settingsdomain.Settings{PlatformName: "PromptTemplates"}, nil
}

func (stubSettings) Upsert(_ context.Context, req settingsdomain.UpsertRequest) (*settingsdomain.Settings, error) {
	return &settingsdomain.Settings{PlatformName: req.PlatformName}, nil
}

type stubPayments struct {
	initiate *paymentdomain.InitiateResult
}

func (s *stubPayments) Initiate(context.Context, paymentdomain.InitiateRequest) (*paymentdomain.InitiateResult, error) {
	return s.initiate, nil
}

func (s *stubPayments) CheckStatus(_ context.Context, transactionID string) (*paymentdomain.StatusResult, error) {
	return &paymentdomain.StatusResult{TransactionID: transactionID, Status: paymentdomain.StatusPending}, nil
}

func (s *stubPayments) Download(context.Context, string) (*paymentdomain.DownloadResult, error) {
	return nil, paymentdomain.ErrNotFound
}

type stubAuth struct {
	token string
}

func (s *stubAuth) Login(_ context.Context, req authdomain.LoginRequest) (*authdomain.LoginResponse, error) {
	if req.Username != "admin" || req.Password != "hunter2" {
		return nil, authdomain.ErrInvalidCredentials
	}
	return &authdomain.LoginResponse{Token: s.token, Username: "admin", Email: "admin@example.com"}, nil
}

func (s *stubAuth) Validate(_ context.Context, token string) (*authdomain.Admin, error) {
	if token != s.token {
		return nil, authdomain.ErrUnauthorized
	}
	return &authdomain.Admin{Username: "admin", Email: "admin@example.com"}, nil
}

type stubStats struct{}

func (stubStats) Dashboard(context.Context) (*stats.Dashboard, error) {
	return &stats.Dashboard{TotalTemplates: 2, TotalSales: 1700, SuccessfulPayments: 2, FailedPayments: 1}, nil
}

func (stubStats) RecentPayments(context.Context) ([]stats.RecentPayment, error) {
	return []stats.RecentPayment{}, nil
}

func newTestServer(t *testing.T, payments paymentdomain.Service) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handle, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "server.db")),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)},
	)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	provider, err := metrics.NewProvider()
	if err != nil {
		t.Fatalf("metrics provider: %v", err)
	}

	cfg := config.Config{UploadsDir: t.TempDir(), MaxUploadSize: 1 << 20}
	if payments == nil {
		payments = &stubPayments{}
	}

	srv := &Server{
		cfg:            cfg,
		log:            zaptest.NewLogger(t),
		db:             handle,
		templateSvc:    &stubTemplates{rows: []templatedomain.Template{{Name: "portfolio", Price: 500, IsActive: true}}},
		settingsSvc:    stubSettings{},
		paymentSvc:     payments,
		authSvc:        &stubAuth{token: "good-token"},
		statsSvc:       stubStats{},
		store:          storage.NewStore(cfg, zaptest.NewLogger(t)),
		metrics:        provider,
		loginLimiter:   newRateLimiter(100, time.Minute),
		paymentLimiter: newRateLimiter(100, time.Minute),
	}

	engine := gin.New()
	srv.RegisterRoutes(engine)
	return srv, engine
}

func doRequest(engine *gin.Engine, method, path, token string, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestListTemplatesEnvelope(t *testing.T) {
	_, engine := newTestServer(t, nil)

	rec := doRequest(engine, http.MethodGet, "/api/templates", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Fatalf("success = %v", body["success"])
	}
	rows, ok := body["data"].([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("data = %v", body["data"])
	}
}

func TestAdminRoutesRequireBearer(t *testing.T) {
	_, engine := newTestServer(t, nil)

	cases := []struct {
		name  string
		token string
	}{
		{name: "no header", token: ""},
		{name: "wrong token", token: "stolen"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(engine, http.MethodGet, "/api/stats", tc.token, "")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}

	// Malformed scheme.
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Basic good-token")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("basic scheme: status = %d, want 401", rec.Code)
	}

	rec = doRequest(engine, http.MethodGet, "/api/stats", "good-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestLoginAndValidateSession(t *testing.T) {
	_, engine := newTestServer(t, nil)

	rec := doRequest(engine, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"hunter2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	// The token sits at the top level, like the initiate response fields.
	if body["token"] != "good-token" {
		t.Fatalf("token = %v", body["token"])
	}
	if body["username"] != "admin" {
		t.Fatalf("username = %v", body["username"])
	}

	rec = doRequest(engine, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}

	rec = doRequest(engine, http.MethodGet, "/api/auth/validate", "good-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("validate status = %d", rec.Code)
	}
	body = decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if data["username"] != "admin" {
		t.Fatalf("username = %v", data["username"])
	}
}

func TestInitiatePaymentDecline(t *testing.T) {
	_, engine := newTestServer(t, &stubPayments{initiate: &paymentdomain.InitiateResult{
		TransactionID: "TXN_1_AAAAAAAAA",
		Succeeded:     false,
		Message:       "Payment failed. Please try again.",
	}})

	rec := doRequest(engine, http.MethodPost, "/api/payments/mpesa", "", `{"phone":"0712345678","amount":500,"template_ids":["1"],"customer_name":"Jane","customer_email":"jane@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	if body["success"] != false {
		t.Fatalf("success = %v", body["success"])
	}
	if body["transaction_id"] != "TXN_1_AAAAAAAAA" {
		t.Fatalf("transaction_id = %v, declined responses must carry it", body["transaction_id"])
	}
}

func TestInitiatePaymentSuccess(t *testing.T) {
	_, engine := newTestServer(t, &stubPayments{initiate: &paymentdomain.InitiateResult{
		TransactionID: "TXN_1_AAAAAAAAA",
		Succeeded:     true,
		Receipt:       "MPE123450",
		DownloadURL:   "/download/TXN_1_AAAAAAAAA",
		Message:       "Payment successful",
	}})

	rec := doRequest(engine, http.MethodPost, "/api/payments/mpesa", "", `{"phone":"0712345678","amount":500,"template_ids":["1"],"customer_name":"Jane","customer_email":"jane@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	if body["receipt"] != "MPE123450" {
		t.Fatalf("receipt = %v", body["receipt"])
	}
	if body["download_url"] != "/download/TXN_1_AAAAAAAAA" {
		t.Fatalf("download_url = %v", body["download_url"])
	}
}

func TestPaymentStatus(t *testing.T) {
	_, engine := newTestServer(t, nil)

	rec := doRequest(engine, http.MethodGet, "/api/payments/status", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing id: status = %d, want 400", rec.Code)
	}

	rec = doRequest(engine, http.MethodGet, "/api/payments/status?transaction_id=TXN_1_AAAAAAAAA", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Fatalf("success = %v", body["success"])
	}
	payment, _ := body["payment"].(map[string]any)
	if payment["status"] != "pending" {
		t.Fatalf("payment.status = %v", payment["status"])
	}
	if payment["transaction_id"] != "TXN_1_AAAAAAAAA" {
		t.Fatalf("payment.transaction_id = %v", payment["transaction_id"])
	}
}

func TestDownloadUnknownTransactionIs404(t *testing.T) {
	_, engine := newTestServer(t, nil)

	rec := doRequest(engine, http.MethodGet, "/download/TXN_1_AAAAAAAAA", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["message"] != "Download not found or expired" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	_, engine := newTestServer(t, nil)

	rec := doRequest(engine, http.MethodGet, "/api/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["message"] != "Endpoint not found" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestHealthz(t *testing.T) {
	_, engine := newTestServer(t, nil)

	rec := doRequest(engine, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStatsEnvelope(t *testing.T) {
	_, engine := newTestServer(t, nil)

	rec := doRequest(engine, http.MethodGet, "/api/stats", "good-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if data["total_sales"] != float64(1700) {
		t.Fatalf("total_sales = %v", data["total_sales"])
	}
}
