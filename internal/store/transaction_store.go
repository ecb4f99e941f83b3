package store

import (
	"context"
	"time"

	"remittance/internal/models"
)

const maxListLimit = 1000

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionFilter struct {
	Start    *time.Time
	End      *time.Time // exclusive
	Type     string
	ClientID string
	Status   string
	Limit    int
}

const transactionSelect = `
	SELECT t.id, t.type, t.amount, t.tax_rate, t.tax_amount, t.total_amount,
	       t.sender_client_id, sc.full_name AS sender_name,
	       t.receiver_client_id, rc.full_name AS receiver_name,
	       t.external_name, t.receipt_number, t.status, t.notes, t.created_by, t.date, t.created_at
	FROM transactions t
	LEFT JOIN clients sc ON sc.id = t.sender_client_id
	LEFT JOIN clients rc ON rc.id = t.receiver_client_id
`

func (s *TransactionStore) Create(ctx context.Context, tx Execer, t models.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount, tax_rate, tax_amount, total_amount, sender_client_id, receiver_client_id,
		                          external_name, receipt_number, status, notes, created_by, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		t.ID, t.Type, t.Amount, t.TaxRate, t.TaxAmount, t.TotalAmount, t.SenderClientID, t.ReceiverClientID,
		t.ExternalName, t.ReceiptNumber, t.Status, t.Notes, t.CreatedBy, t.Date,
	)
	return err
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	var t models.Transaction
	err := s.db.GetContext(ctx, &t, transactionSelect+` WHERE t.id = $1`, transactionID)
	return t, notFound(err)
}

func (s *TransactionStore) List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	var w where
	if filter.Start != nil {
		w.add("t.date >= $%d", *filter.Start)
	}
	if filter.End != nil {
		w.add("t.date < $%d", *filter.End)
	}
	if filter.Type != "" {
		w.add("t.type = $%d", filter.Type)
	}
	if filter.Status != "" {
		w.add("t.status = $%d", filter.Status)
	}
	if filter.ClientID != "" {
		w.add("(t.sender_client_id = $%d OR t.receiver_client_id = $%d)", filter.ClientID, filter.ClientID)
	}
	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	query := transactionSelect + w.String() + " ORDER BY t.date DESC, t.created_at DESC LIMIT " + w.next()
	args := append(w.args, limit)
	transactions := []models.Transaction{}
	err := s.db.SelectContext(ctx, &transactions, query, args...)
	return transactions, err
}
