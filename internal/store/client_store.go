package store

import (
	"context"

	"remittance/internal/models"
	"remittance/internal/money"
)

type ClientStore struct {
	db DB
}

func NewClientStore(db DB) *ClientStore {
	return &ClientStore{db: db}
}

const clientSelect = `
	SELECT c.id, c.full_name, c.phone, c.address, c.national_id, c.education_level,
	       c.guarantor_id, g.full_name AS guarantor_name, c.balance, c.created_at, c.updated_at
	FROM clients c
	LEFT JOIN guarantors g ON g.id = c.guarantor_id
`

func (s *ClientStore) Create(ctx context.Context, tx Execer, c models.Client) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO clients (id, full_name, phone, address, national_id, education_level, guarantor_id, balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.FullName, c.Phone, c.Address, c.NationalID, c.EducationLevel, c.GuarantorID, c.Balance)
	return err
}

func (s *ClientStore) GetByID(ctx context.Context, clientID string) (models.Client, error) {
	var c models.Client
	err := s.db.GetContext(ctx, &c, clientSelect+` WHERE c.id = $1`, clientID)
	return c, notFound(err)
}

func (s *ClientStore) List(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	err := s.db.SelectContext(ctx, &clients, clientSelect+` ORDER BY c.created_at DESC`)
	return clients, err
}

// GetForUpdate row-locks the client for the rest of tx.
func (s *ClientStore) GetForUpdate(ctx context.Context, tx Getter, clientID string) (models.Client, error) {
	var c models.Client
	err := tx.GetContext(ctx, &c, `
		SELECT id, full_name, phone, address, national_id, education_level, guarantor_id, balance, created_at, updated_at
		FROM clients
		WHERE id = $1
		FOR UPDATE
	`, clientID)
	return c, notFound(err)
}

// UpdateProfile never touches balance; that only moves through the ledger.
func (s *ClientStore) UpdateProfile(ctx context.Context, tx Execer, c models.Client) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE clients
		SET full_name = $1, phone = $2, address = $3, national_id = $4, education_level = $5,
		    guarantor_id = $6, updated_at = NOW()
		WHERE id = $7
	`, c.FullName, c.Phone, c.Address, c.NationalID, c.EducationLevel, c.GuarantorID, c.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *ClientStore) UpdateBalance(ctx context.Context, tx Execer, clientID string, balance money.Minor) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE clients
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, clientID)
	return err
}

// Reconcile compares each stored balance with the sum of its ledger entries.
func (s *ClientStore) Reconcile(ctx context.Context) ([]models.ClientReconciliation, error) {
	rows := []models.ClientReconciliation{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id AS client_id,
		       c.full_name,
		       c.balance AS stored_balance,
		       COALESCE(SUM(l.amount), 0) AS calculated_balance,
		       (c.balance - COALESCE(SUM(l.amount), 0)) AS difference
		FROM clients c
		LEFT JOIN client_ledger_entries l ON l.client_id = c.id
		GROUP BY c.id, c.full_name, c.balance
		ORDER BY c.full_name
	`)
	return rows, err
}
