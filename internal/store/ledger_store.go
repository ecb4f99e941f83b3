package store

import (
	"context"

	"remittance/internal/models"
	"remittance/internal/money"
)

type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type LedgerEntryInput struct {
	ID           string
	ClientID     string
	SourceType   string
	SourceID     *string
	Amount       money.Minor
	BalanceAfter money.Minor
	Description  string
}

func (s *LedgerStore) InsertEntries(ctx context.Context, tx Execer, entries []LedgerEntryInput) error {
	query := `
		INSERT INTO client_ledger_entries (id, client_id, source_type, source_id, amount, balance_after, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, query, entry.ID, entry.ClientID, entry.SourceType, entry.SourceID, entry.Amount, entry.BalanceAfter, entry.Description); err != nil {
			return err
		}
	}
	return nil
}

func (s *LedgerStore) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, client_id, source_type, source_id, amount, balance_after, description, created_at
		FROM client_ledger_entries
		WHERE client_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	return entries, err
}

func (s *LedgerStore) SumByClient(ctx context.Context, clientID string) (money.Minor, error) {
	var sum money.Minor
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM client_ledger_entries
		WHERE client_id = $1
	`, clientID)
	return sum, err
}
