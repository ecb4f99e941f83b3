package store

import (
	"context"
	"time"

	"remittance/internal/models"
)

type ReportStore struct {
	db DB
}

func NewReportStore(db DB) *ReportStore {
	return &ReportStore{db: db}
}

// TotalsByType sums total_amount of completed transactions in [start, end) by type.
func (s *ReportStore) TotalsByType(ctx context.Context, start, end time.Time) ([]models.TypeTotal, error) {
	totals := []models.TypeTotal{}
	err := s.db.SelectContext(ctx, &totals, `
		SELECT type, COALESCE(SUM(total_amount), 0) AS total_amount, COUNT(1) AS count
		FROM transactions
		WHERE status = $1 AND date >= $2 AND date < $3
		GROUP BY type
		ORDER BY type
	`, models.StatusCompleted, start, end)
	return totals, err
}

func (s *ReportStore) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard
	err := s.db.GetContext(ctx, &d, `
		SELECT (SELECT COUNT(1) FROM clients) AS total_clients,
		       (SELECT COUNT(1) FROM guarantors) AS total_guarantors,
		       (SELECT COALESCE(SUM(balance), 0) FROM clients) AS total_balance,
		       (SELECT COALESCE(SUM(profit), 0) FROM tax_logs) AS total_profit
	`)
	return d, err
}
