package store

import (
	"context"
	"encoding/json"

	"remittance/internal/models"
)

type AuditStore struct {
	db DB
}

func NewAuditStore(db DB) *AuditStore {
	return &AuditStore{db: db}
}

type AuditEntry struct {
	ActorUserID      string
	Action           string
	TargetCollection string
	TargetID         string
	IP               string
	Details          any
}

func (s *AuditStore) Log(ctx context.Context, tx Execer, entry AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	if entry.Details == nil {
		details = []byte("{}")
	}
	var actor *string
	if entry.ActorUserID != "" {
		actor = &entry.ActorUserID
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, action, target_collection, target_id, ip, details)
		VALUES (gen_random_uuid()::text, $1, $2, $3, $4, $5, $6::jsonb)
	`, actor, entry.Action, entry.TargetCollection, entry.TargetID, entry.IP, string(details))
	return err
}

func (s *AuditStore) List(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	logs := []models.AuditLog{}
	err := s.db.SelectContext(ctx, &logs, `
		SELECT a.id, a.actor_user_id, u.name AS actor_name, a.action, a.target_collection, a.target_id, a.ip,
		       a.details, a.created_at
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.actor_user_id
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return logs, err
}

func (s *AuditStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM audit_logs`)
	return count, err
}
