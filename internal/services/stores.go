package services

import (
	"context"

	"remittance/internal/models"
	"remittance/internal/money"
	"remittance/internal/store"
	"remittance/internal/websocket"
)

type ClientStore interface {
	Create(ctx context.Context, tx store.Execer, c models.Client) error
	GetByID(ctx context.Context, clientID string) (models.Client, error)
	GetForUpdate(ctx context.Context, tx store.Getter, clientID string) (models.Client, error)
	UpdateProfile(ctx context.Context, tx store.Execer, c models.Client) (int64, error)
	UpdateBalance(ctx context.Context, tx store.Execer, clientID string, balance money.Minor) error
}

type GuarantorStore interface {
	Create(ctx context.Context, tx store.Execer, g models.Guarantor) error
	GetByID(ctx context.Context, guarantorID string) (models.Guarantor, error)
}

type LedgerStore interface {
	InsertEntries(ctx context.Context, tx store.Execer, entries []store.LedgerEntryInput) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, t models.Transaction) error
}

type WithdrawStore interface {
	Create(ctx context.Context, tx store.Execer, w models.Withdraw) error
}

type TaxLogStore interface {
	Record(ctx context.Context, log models.TaxLog) error
}

type SettingStore interface {
	Get(ctx context.Context, q store.Getter, key string) (models.Setting, error)
	NextReceiptCounter(ctx context.Context, tx store.Getter) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, entry store.AuditEntry) error
}

type BalanceHub interface {
	BroadcastBalance(update websocket.BalanceUpdate)
}
