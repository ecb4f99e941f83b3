package store

import (
	"context"
	"time"

	"remittance/internal/models"
)

type WithdrawStore struct {
	db DB
}

func NewWithdrawStore(db DB) *WithdrawStore {
	return &WithdrawStore{db: db}
}

type WithdrawFilter struct {
	Start    *time.Time
	End      *time.Time // exclusive
	ClientID string
	Search   string
}

const withdrawSelect = `
	SELECT w.id, w.client_id, c.full_name AS client_name, w.amount, w.tax_rate, w.tax_amount, w.total_received,
	       w.notes, w.status, w.created_by, w.date, w.created_at
	FROM withdraws w
	LEFT JOIN clients c ON c.id = w.client_id
`

func (s *WithdrawStore) Create(ctx context.Context, tx Execer, w models.Withdraw) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO withdraws (id, client_id, amount, tax_rate, tax_amount, total_received, notes, status, created_by, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, w.ID, w.ClientID, w.Amount, w.TaxRate, w.TaxAmount, w.TotalReceived, w.Notes, w.Status, w.CreatedBy, w.Date)
	return err
}

func (s *WithdrawStore) GetByID(ctx context.Context, withdrawID string) (models.Withdraw, error) {
	var w models.Withdraw
	err := s.db.GetContext(ctx, &w, withdrawSelect+` WHERE w.id = $1`, withdrawID)
	return w, notFound(err)
}

func (s *WithdrawStore) List(ctx context.Context, filter WithdrawFilter) ([]models.Withdraw, error) {
	w := withdrawWhere(filter.Start, filter.End)
	if filter.ClientID != "" {
		w.add("w.client_id = $%d", filter.ClientID)
	}
	if filter.Search != "" {
		w.add("(w.notes ILIKE $%d OR c.full_name ILIKE $%d)", likePattern(filter.Search), likePattern(filter.Search))
	}
	query := withdrawSelect + w.String() + " ORDER BY w.date DESC, w.created_at DESC LIMIT " + w.next()
	args := append(w.args, maxListLimit)
	withdraws := []models.Withdraw{}
	err := s.db.SelectContext(ctx, &withdraws, query, args...)
	return withdraws, err
}

// Stats aggregates completed withdrawals in the window.
func (s *WithdrawStore) Stats(ctx context.Context, start, end *time.Time) (models.WithdrawStats, error) {
	w := withdrawWhere(start, end)
	w.add("w.status = $%d", models.StatusCompleted)
	var stats models.WithdrawStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT COALESCE(SUM(w.amount), 0) AS total_amount,
		       COALESCE(SUM(w.tax_amount), 0) AS total_tax,
		       COALESCE(SUM(w.total_received), 0) AS total_received,
		       COUNT(1) AS count
		FROM withdraws w`+w.String(), w.args...)
	return stats, err
}

func withdrawWhere(start, end *time.Time) *where {
	w := &where{}
	if start != nil {
		w.add("w.date >= $%d", *start)
	}
	if end != nil {
		w.add("w.date < $%d", *end)
	}
	return w
}
