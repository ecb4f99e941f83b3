package store

import (
	"context"

	"remittance/internal/models"
)

type TaxLogStore struct {
	db DB
}

func NewTaxLogStore(db DB) *TaxLogStore {
	return &TaxLogStore{db: db}
}

func (s *TaxLogStore) Create(ctx context.Context, tx Execer, log models.TaxLog) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tax_logs (id, sender_client_id, receiver_client_id, transaction_id, amount_sent, amount_received,
		                      profit, method, profit_source, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		log.ID, log.SenderClientID, log.ReceiverClientID, log.TransactionID, log.AmountSent, log.AmountReceived,
		log.Profit, log.Method, log.ProfitSource, log.Description, log.Date,
	)
	return err
}

// Record writes log outside any transaction.
func (s *TaxLogStore) Record(ctx context.Context, log models.TaxLog) error {
	return s.Create(ctx, s.db, log)
}

func (s *TaxLogStore) List(ctx context.Context, limit, offset int) ([]models.TaxLog, error) {
	logs := []models.TaxLog{}
	err := s.db.SelectContext(ctx, &logs, `
		SELECT l.id, l.sender_client_id, sc.full_name AS sender_name, l.receiver_client_id, rc.full_name AS receiver_name,
		       l.transaction_id, t.receipt_number, l.amount_sent, l.amount_received, l.profit, l.method,
		       l.profit_source, l.description, l.date
		FROM tax_logs l
		LEFT JOIN clients sc ON sc.id = l.sender_client_id
		LEFT JOIN clients rc ON rc.id = l.receiver_client_id
		LEFT JOIN transactions t ON t.id = l.transaction_id
		ORDER BY l.date DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return logs, err
}
