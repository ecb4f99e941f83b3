package store

import (
	"context"

	"remittance/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, name, email, password_hash, role, created_at`

func (s *UserStore) Create(ctx context.Context, tx Execer, user models.User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role)
	return err
}

// Count runs on the registering transaction so the first-user check is serialized.
func (s *UserStore) Count(ctx context.Context, tx Getter) (int64, error) {
	var count int64
	err := tx.GetContext(ctx, &count, `SELECT COUNT(1) FROM users`)
	return count, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return user, notFound(err)
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return user, notFound(err)
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	return users, err
}

// UpdateProfile keeps the stored hash when passwordHash is empty.
func (s *UserStore) UpdateProfile(ctx context.Context, tx Execer, userID, name, email, passwordHash string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = COALESCE(NULLIF($3, ''), password_hash)
		WHERE id = $4
	`, name, email, passwordHash, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *UserStore) UpdateRole(ctx context.Context, tx Execer, userID, role string) (int64, error) {
	res, err := tx.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *UserStore) Delete(ctx context.Context, tx Execer, userID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
