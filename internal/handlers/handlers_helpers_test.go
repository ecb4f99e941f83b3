package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"remittance/internal/auth"
	"remittance/internal/config"
	"remittance/internal/models"
	"remittance/internal/money"
	"remittance/internal/services"
	"remittance/internal/store"
	"remittance/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, user models.User) error
	countFn         func(ctx context.Context, tx store.Getter) (int64, error)
	getByEmailFn    func(ctx context.Context, email string) (models.User, error)
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
	listFn          func(ctx context.Context) ([]models.User, error)
	updateProfileFn func(ctx context.Context, tx store.Execer, userID, name, email, passwordHash string) (int64, error)
	updateRoleFn    func(ctx context.Context, tx store.Execer, userID, role string) (int64, error)
	deleteFn        func(ctx context.Context, tx store.Execer, userID string) (int64, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, user models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, user)
}

func (s stubUserStore) Count(ctx context.Context, tx store.Getter) (int64, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx, tx)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, store.ErrNotFound
	}
	return s.getByEmailFn(ctx, email)
}

// GetByID defaults to an admin so authenticated test requests pass the policy check.
func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID, Name: "Admin", Email: "admin@office.test", Role: "admin"}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) List(ctx context.Context) ([]models.User, error) {
	if s.listFn == nil {
		return []models.User{}, nil
	}
	return s.listFn(ctx)
}

func (s stubUserStore) UpdateProfile(ctx context.Context, tx store.Execer, userID, name, email, passwordHash string) (int64, error) {
	if s.updateProfileFn == nil {
		return 1, nil
	}
	return s.updateProfileFn(ctx, tx, userID, name, email, passwordHash)
}

func (s stubUserStore) UpdateRole(ctx context.Context, tx store.Execer, userID, role string) (int64, error) {
	if s.updateRoleFn == nil {
		return 1, nil
	}
	return s.updateRoleFn(ctx, tx, userID, role)
}

func (s stubUserStore) Delete(ctx context.Context, tx store.Execer, userID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, userID)
}

type stubClientReader struct {
	getByIDFn   func(ctx context.Context, clientID string) (models.Client, error)
	listFn      func(ctx context.Context) ([]models.Client, error)
	reconcileFn func(ctx context.Context) ([]models.ClientReconciliation, error)
}

func (s stubClientReader) GetByID(ctx context.Context, clientID string) (models.Client, error) {
	if s.getByIDFn == nil {
		return models.Client{}, store.ErrNotFound
	}
	return s.getByIDFn(ctx, clientID)
}

func (s stubClientReader) List(ctx context.Context) ([]models.Client, error) {
	if s.listFn == nil {
		return []models.Client{}, nil
	}
	return s.listFn(ctx)
}

func (s stubClientReader) Reconcile(ctx context.Context) ([]models.ClientReconciliation, error) {
	if s.reconcileFn == nil {
		return []models.ClientReconciliation{}, nil
	}
	return s.reconcileFn(ctx)
}

type stubGuarantorReader struct {
	listFn func(ctx context.Context) ([]models.Guarantor, error)
}

func (s stubGuarantorReader) List(ctx context.Context) ([]models.Guarantor, error) {
	if s.listFn == nil {
		return []models.Guarantor{}, nil
	}
	return s.listFn(ctx)
}

type stubLedgerReader struct {
	listByClientFn func(ctx context.Context, clientID string, limit, offset int) ([]models.LedgerEntry, error)
}

func (s stubLedgerReader) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]models.LedgerEntry, error) {
	if s.listByClientFn == nil {
		return []models.LedgerEntry{}, nil
	}
	return s.listByClientFn(ctx, clientID, limit, offset)
}

type stubTransactionReader struct {
	getByIDFn func(ctx context.Context, transactionID string) (models.Transaction, error)
	listFn    func(ctx context.Context, filter store.TransactionFilter) ([]models.Transaction, error)
}

func (s stubTransactionReader) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	if s.getByIDFn == nil {
		return models.Transaction{}, store.ErrNotFound
	}
	return s.getByIDFn(ctx, transactionID)
}

func (s stubTransactionReader) List(ctx context.Context, filter store.TransactionFilter) ([]models.Transaction, error) {
	if s.listFn == nil {
		return []models.Transaction{}, nil
	}
	return s.listFn(ctx, filter)
}

type stubWithdrawReader struct {
	getByIDFn func(ctx context.Context, withdrawID string) (models.Withdraw, error)
	listFn    func(ctx context.Context, filter store.WithdrawFilter) ([]models.Withdraw, error)
	statsFn   func(ctx context.Context, start, end *time.Time) (models.WithdrawStats, error)
}

func (s stubWithdrawReader) GetByID(ctx context.Context, withdrawID string) (models.Withdraw, error) {
	if s.getByIDFn == nil {
		return models.Withdraw{}, store.ErrNotFound
	}
	return s.getByIDFn(ctx, withdrawID)
}

func (s stubWithdrawReader) List(ctx context.Context, filter store.WithdrawFilter) ([]models.Withdraw, error) {
	if s.listFn == nil {
		return []models.Withdraw{}, nil
	}
	return s.listFn(ctx, filter)
}

func (s stubWithdrawReader) Stats(ctx context.Context, start, end *time.Time) (models.WithdrawStats, error) {
	if s.statsFn == nil {
		return models.WithdrawStats{}, nil
	}
	return s.statsFn(ctx, start, end)
}

type stubTaxLogReader struct {
	listFn func(ctx context.Context, limit, offset int) ([]models.TaxLog, error)
}

func (s stubTaxLogReader) List(ctx context.Context, limit, offset int) ([]models.TaxLog, error) {
	if s.listFn == nil {
		return []models.TaxLog{}, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubSettingStore struct {
	listFn   func(ctx context.Context) ([]models.Setting, error)
	ensureFn func(ctx context.Context, tx store.Getter, key, value string) (models.Setting, error)
	upsertFn func(ctx context.Context, tx store.Getter, key, value string) (models.Setting, error)
}

func (s stubSettingStore) List(ctx context.Context) ([]models.Setting, error) {
	if s.listFn == nil {
		return []models.Setting{}, nil
	}
	return s.listFn(ctx)
}

func (s stubSettingStore) Ensure(ctx context.Context, tx store.Getter, key, value string) (models.Setting, error) {
	if s.ensureFn == nil {
		return models.Setting{Key: key, Value: models.JSONText(value)}, nil
	}
	return s.ensureFn(ctx, tx, key, value)
}

func (s stubSettingStore) Upsert(ctx context.Context, tx store.Getter, key, value string) (models.Setting, error) {
	if s.upsertFn == nil {
		return models.Setting{Key: key, Value: models.JSONText(value)}, nil
	}
	return s.upsertFn(ctx, tx, key, value)
}

type stubAuditStore struct {
	logFn   func(ctx context.Context, tx store.Execer, entry store.AuditEntry) error
	listFn  func(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
	countFn func(ctx context.Context) (int64, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, entry store.AuditEntry) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, entry)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	if s.listFn == nil {
		return []models.AuditLog{}, nil
	}
	return s.listFn(ctx, limit, offset)
}

func (s stubAuditStore) Count(ctx context.Context) (int64, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx)
}

type stubReportStore struct {
	totalsFn    func(ctx context.Context, start, end time.Time) ([]models.TypeTotal, error)
	dashboardFn func(ctx context.Context) (models.Dashboard, error)
}

func (s stubReportStore) TotalsByType(ctx context.Context, start, end time.Time) ([]models.TypeTotal, error) {
	if s.totalsFn == nil {
		return []models.TypeTotal{}, nil
	}
	return s.totalsFn(ctx, start, end)
}

func (s stubReportStore) Dashboard(ctx context.Context) (models.Dashboard, error) {
	if s.dashboardFn == nil {
		return models.Dashboard{}, nil
	}
	return s.dashboardFn(ctx)
}

type stubClientService struct {
	createClientFn    func(ctx context.Context, input services.ClientInput, opening money.Minor, actor services.Actor) (models.Client, error)
	updateClientFn    func(ctx context.Context, clientID string, input services.ClientInput, actor services.Actor) (models.Client, error)
	setBalanceFn      func(ctx context.Context, clientID string, balance money.Minor, actor services.Actor) (models.Client, error)
	createGuarantorFn func(ctx context.Context, input services.GuarantorInput, actor services.Actor) (models.Guarantor, error)
}

func (s stubClientService) CreateClient(ctx context.Context, input services.ClientInput, opening money.Minor, actor services.Actor) (models.Client, error) {
	if s.createClientFn == nil {
		return models.Client{}, nil
	}
	return s.createClientFn(ctx, input, opening, actor)
}

func (s stubClientService) UpdateClient(ctx context.Context, clientID string, input services.ClientInput, actor services.Actor) (models.Client, error) {
	if s.updateClientFn == nil {
		return models.Client{}, nil
	}
	return s.updateClientFn(ctx, clientID, input, actor)
}

func (s stubClientService) SetBalance(ctx context.Context, clientID string, balance money.Minor, actor services.Actor) (models.Client, error) {
	if s.setBalanceFn == nil {
		return models.Client{}, nil
	}
	return s.setBalanceFn(ctx, clientID, balance, actor)
}

func (s stubClientService) CreateGuarantor(ctx context.Context, input services.GuarantorInput, actor services.Actor) (models.Guarantor, error) {
	if s.createGuarantorFn == nil {
		return models.Guarantor{}, nil
	}
	return s.createGuarantorFn(ctx, input, actor)
}

type stubLedgerService struct {
	createTransactionFn func(ctx context.Context, req services.TransactionRequest) (services.TransactionResult, error)
	createWithdrawFn    func(ctx context.Context, req services.WithdrawRequest) (services.WithdrawResult, error)
}

func (s stubLedgerService) CreateTransaction(ctx context.Context, req services.TransactionRequest) (services.TransactionResult, error) {
	if s.createTransactionFn == nil {
		return services.TransactionResult{}, nil
	}
	return s.createTransactionFn(ctx, req)
}

func (s stubLedgerService) CreateWithdraw(ctx context.Context, req services.WithdrawRequest) (services.WithdrawResult, error) {
	if s.createWithdrawFn == nil {
		return services.WithdrawResult{}, nil
	}
	return s.createWithdrawFn(ctx, req)
}

// newTestHandler fills every dependency the caller leaves nil with a default stub.
func newTestHandler(deps Deps) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: []string{"*"},
	}
	if deps.TxRunner == nil {
		deps.TxRunner = fakeTxRunner{}
	}
	if deps.Users == nil {
		deps.Users = stubUserStore{}
	}
	if deps.Clients == nil {
		deps.Clients = stubClientReader{}
	}
	if deps.Guarantors == nil {
		deps.Guarantors = stubGuarantorReader{}
	}
	if deps.Ledger == nil {
		deps.Ledger = stubLedgerReader{}
	}
	if deps.Transactions == nil {
		deps.Transactions = stubTransactionReader{}
	}
	if deps.Withdraws == nil {
		deps.Withdraws = stubWithdrawReader{}
	}
	if deps.TaxLogs == nil {
		deps.TaxLogs = stubTaxLogReader{}
	}
	if deps.Settings == nil {
		deps.Settings = stubSettingStore{}
	}
	if deps.Audit == nil {
		deps.Audit = stubAuditStore{}
	}
	if deps.Reports == nil {
		deps.Reports = stubReportStore{}
	}
	if deps.ClientService == nil {
		deps.ClientService = stubClientService{}
	}
	if deps.LedgerService == nil {
		deps.LedgerService = stubLedgerService{}
	}
	if deps.Hub == nil {
		deps.Hub = websocket.NewHub()
	}
	return New(cfg, deps)
}

// serve runs a request through the full router, authenticated as userID when set.
func serve(t *testing.T, handler *Handler, method, target, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		token, err := auth.GenerateToken("secret", userID, "admin", time.Minute)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}

func usersWithRole(role string) stubUserStore {
	return stubUserStore{getByIDFn: func(_ context.Context, userID string) (models.User, error) {
		return models.User{ID: userID, Role: role}, nil
	}}
}
