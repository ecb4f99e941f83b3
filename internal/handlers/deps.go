package handlers

import (
	"context"
	"time"

	"remittance/internal/models"
	"remittance/internal/money"
	"remittance/internal/services"
	"remittance/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, user models.User) error
	Count(ctx context.Context, tx store.Getter) (int64, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, tx store.Execer, userID, name, email, passwordHash string) (int64, error)
	UpdateRole(ctx context.Context, tx store.Execer, userID, role string) (int64, error)
	Delete(ctx context.Context, tx store.Execer, userID string) (int64, error)
}

type ClientReader interface {
	GetByID(ctx context.Context, clientID string) (models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	Reconcile(ctx context.Context) ([]models.ClientReconciliation, error)
}

type GuarantorReader interface {
	List(ctx context.Context) ([]models.Guarantor, error)
}

type LedgerReader interface {
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]models.LedgerEntry, error)
}

type TransactionReader interface {
	GetByID(ctx context.Context, transactionID string) (models.Transaction, error)
	List(ctx context.Context, filter store.TransactionFilter) ([]models.Transaction, error)
}

type WithdrawReader interface {
	GetByID(ctx context.Context, withdrawID string) (models.Withdraw, error)
	List(ctx context.Context, filter store.WithdrawFilter) ([]models.Withdraw, error)
	Stats(ctx context.Context, start, end *time.Time) (models.WithdrawStats, error)
}

type TaxLogReader interface {
	List(ctx context.Context, limit, offset int) ([]models.TaxLog, error)
}

type SettingStore interface {
	List(ctx context.Context) ([]models.Setting, error)
	Ensure(ctx context.Context, tx store.Getter, key string, value string) (models.Setting, error)
	Upsert(ctx context.Context, tx store.Getter, key string, value string) (models.Setting, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, entry store.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
	Count(ctx context.Context) (int64, error)
}

type ReportStore interface {
	TotalsByType(ctx context.Context, start, end time.Time) ([]models.TypeTotal, error)
	Dashboard(ctx context.Context) (models.Dashboard, error)
}

type ClientService interface {
	CreateClient(ctx context.Context, input services.ClientInput, openingBalance money.Minor, actor services.Actor) (models.Client, error)
	UpdateClient(ctx context.Context, clientID string, input services.ClientInput, actor services.Actor) (models.Client, error)
	SetBalance(ctx context.Context, clientID string, balance money.Minor, actor services.Actor) (models.Client, error)
	CreateGuarantor(ctx context.Context, input services.GuarantorInput, actor services.Actor) (models.Guarantor, error)
}

type LedgerService interface {
	CreateTransaction(ctx context.Context, req services.TransactionRequest) (services.TransactionResult, error)
	CreateWithdraw(ctx context.Context, req services.WithdrawRequest) (services.WithdrawResult, error)
}
