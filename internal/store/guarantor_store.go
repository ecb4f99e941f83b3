package store

import (
	"context"

	"remittance/internal/models"
)

type GuarantorStore struct {
	db DB
}

func NewGuarantorStore(db DB) *GuarantorStore {
	return &GuarantorStore{db: db}
}

func (s *GuarantorStore) Create(ctx context.Context, tx Execer, g models.Guarantor) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO guarantors (id, full_name, phone, address, national_id)
		VALUES ($1, $2, $3, $4, $5)
	`, g.ID, g.FullName, g.Phone, g.Address, g.NationalID)
	return err
}

func (s *GuarantorStore) GetByID(ctx context.Context, guarantorID string) (models.Guarantor, error) {
	var g models.Guarantor
	err := s.db.GetContext(ctx, &g, `
		SELECT id, full_name, phone, address, national_id, created_at
		FROM guarantors
		WHERE id = $1
	`, guarantorID)
	return g, notFound(err)
}

func (s *GuarantorStore) List(ctx context.Context) ([]models.Guarantor, error) {
	guarantors := []models.Guarantor{}
	err := s.db.SelectContext(ctx, &guarantors, `
		SELECT id, full_name, phone, address, national_id, created_at
		FROM guarantors
		ORDER BY created_at DESC
	`)
	return guarantors, err
}
