package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"remittance/internal/db"
	"remittance/internal/models"
	"remittance/internal/money"
	"remittance/internal/store"
	"remittance/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ClientService manages client and guarantor records. Opening balances and
// manual adjustments go through the client ledger like any other movement.
type ClientService struct {
	txRunner   db.TxRunner
	clients    ClientStore
	guarantors GuarantorStore
	ledger     LedgerStore
	audit      AuditStore
	hub        BalanceHub
}

func NewClientService(txRunner db.TxRunner, clients ClientStore, guarantors GuarantorStore, ledger LedgerStore, audit AuditStore, hub BalanceHub) *ClientService {
	return &ClientService{
		txRunner:   txRunner,
		clients:    clients,
		guarantors: guarantors,
		ledger:     ledger,
		audit:      audit,
		hub:        hub,
	}
}

type ClientInput struct {
	FullName       string
	Phone          string
	Address        string
	NationalID     string
	EducationLevel string
	GuarantorID    string
}

type Actor struct {
	UserID string
	IP     string
}

func (s *ClientService) CreateClient(ctx context.Context, input ClientInput, openingBalance money.Minor, actor Actor) (models.Client, error) {
	input = input.trimmed()
	if input.FullName == "" {
		return models.Client{}, ErrFullNameRequired
	}
	if openingBalance < 0 {
		return models.Client{}, ErrNegativeBalance
	}
	if openingBalance > money.MaxBalance {
		return models.Client{}, ErrBalanceLimit
	}
	if err := s.checkGuarantor(ctx, input.GuarantorID); err != nil {
		return models.Client{}, err
	}
	client := input.apply(models.Client{ID: uuid.NewString()})
	client.Balance = openingBalance
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.clients.Create(ctx, tx, client); err != nil {
			if db.IsUniqueViolation(err, "") {
				return ErrDuplicateClient
			}
			return fmt.Errorf("insert client: %w", err)
		}
		if openingBalance != 0 {
			entry := ledgerEntry(client.ID, models.LedgerOpening, client.ID, openingBalance, openingBalance, "Opening balance")
			if err := s.ledger.InsertEntries(ctx, tx, []store.LedgerEntryInput{entry}); err != nil {
				return fmt.Errorf("insert opening entry: %w", err)
			}
		}
		return s.audit.Log(ctx, tx, store.AuditEntry{
			ActorUserID:      actor.UserID,
			Action:           "create_client",
			TargetCollection: "Client",
			TargetID:         client.ID,
			IP:               actor.IP,
			Details:          map[string]any{"fullName": client.FullName, "balance": openingBalance},
		})
	})
	if err != nil {
		return models.Client{}, err
	}
	return s.reload(ctx, client)
}

func (s *ClientService) UpdateClient(ctx context.Context, clientID string, input ClientInput, actor Actor) (models.Client, error) {
	input = input.trimmed()
	if input.FullName == "" {
		return models.Client{}, ErrFullNameRequired
	}
	if err := s.checkGuarantor(ctx, input.GuarantorID); err != nil {
		return models.Client{}, err
	}
	var updated models.Client
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.clients.GetForUpdate(ctx, tx, clientID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("lock client: %w", err)
		}
		updated = input.apply(current)
		if _, err := s.clients.UpdateProfile(ctx, tx, updated); err != nil {
			if db.IsUniqueViolation(err, "") {
				return ErrDuplicateClient
			}
			return fmt.Errorf("update client: %w", err)
		}
		return s.audit.Log(ctx, tx, store.AuditEntry{
			ActorUserID:      actor.UserID,
			Action:           "update_client",
			TargetCollection: "Client",
			TargetID:         clientID,
			IP:               actor.IP,
			Details: map[string]any{
				"fullName":       updated.FullName,
				"phone":          updated.Phone,
				"address":        updated.Address,
				"nationalId":     updated.NationalID,
				"educationLevel": updated.EducationLevel,
				"guarantor":      updated.GuarantorID,
			},
		})
	})
	if err != nil {
		return models.Client{}, err
	}
	return s.reload(ctx, updated)
}

// SetBalance overwrites a client's balance, recording the difference as an adjustment entry.
func (s *ClientService) SetBalance(ctx context.Context, clientID string, balance money.Minor, actor Actor) (models.Client, error) {
	if balance < 0 {
		return models.Client{}, ErrNegativeBalance
	}
	if balance > money.MaxBalance {
		return models.Client{}, ErrBalanceLimit
	}
	var client models.Client
	var updates []websocket.BalanceUpdate
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updates = nil
		current, err := s.clients.GetForUpdate(ctx, tx, clientID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("lock client: %w", err)
		}
		client = current
		previous := current.Balance
		delta := balance - previous
		if delta != 0 {
			entry := ledgerEntry(clientID, models.LedgerAdjustment, "", delta, balance, "Manual balance adjustment")
			if err := s.clients.UpdateBalance(ctx, tx, clientID, balance); err != nil {
				return fmt.Errorf("update balance: %w", err)
			}
			if err := s.ledger.InsertEntries(ctx, tx, []store.LedgerEntryInput{entry}); err != nil {
				return fmt.Errorf("insert adjustment entry: %w", err)
			}
			client.Balance = balance
			updates = balanceUpdates([]store.LedgerEntryInput{entry}, models.LedgerAdjustment)
		}
		return s.audit.Log(ctx, tx, store.AuditEntry{
			ActorUserID:      actor.UserID,
			Action:           "update_client_balance",
			TargetCollection: "Client",
			TargetID:         clientID,
			IP:               actor.IP,
			Details:          map[string]any{"balance": balance, "previousBalance": previous, "delta": delta},
		})
	})
	if err != nil {
		return models.Client{}, err
	}
	if s.hub != nil {
		for _, update := range updates {
			s.hub.BroadcastBalance(update)
		}
	}
	return s.reload(ctx, client)
}

type GuarantorInput struct {
	FullName   string
	Phone      string
	Address    string
	NationalID string
}

func (s *ClientService) CreateGuarantor(ctx context.Context, input GuarantorInput, actor Actor) (models.Guarantor, error) {
	guarantor := models.Guarantor{
		ID:         uuid.NewString(),
		FullName:   strings.TrimSpace(input.FullName),
		Phone:      strings.TrimSpace(input.Phone),
		Address:    strings.TrimSpace(input.Address),
		NationalID: strings.TrimSpace(input.NationalID),
	}
	if guarantor.FullName == "" {
		return models.Guarantor{}, ErrFullNameRequired
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.guarantors.Create(ctx, tx, guarantor); err != nil {
			return fmt.Errorf("insert guarantor: %w", err)
		}
		return s.audit.Log(ctx, tx, store.AuditEntry{
			ActorUserID:      actor.UserID,
			Action:           "create_guarantor",
			TargetCollection: "Guarantor",
			TargetID:         guarantor.ID,
			IP:               actor.IP,
			Details:          map[string]any{"fullName": guarantor.FullName},
		})
	})
	if err != nil {
		return models.Guarantor{}, err
	}
	if stored, err := s.guarantors.GetByID(ctx, guarantor.ID); err == nil {
		return stored, nil
	}
	return guarantor, nil
}

func (s *ClientService) checkGuarantor(ctx context.Context, guarantorID string) error {
	if guarantorID == "" {
		return nil
	}
	if _, err := s.guarantors.GetByID(ctx, guarantorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGuarantorNotFound
		}
		return fmt.Errorf("load guarantor: %w", err)
	}
	return nil
}

// reload returns the committed row, falling back to the in-memory copy.
func (s *ClientService) reload(ctx context.Context, fallback models.Client) (models.Client, error) {
	client, err := s.clients.GetByID(ctx, fallback.ID)
	if err != nil {
		return fallback, nil
	}
	return client, nil
}

func (in ClientInput) trimmed() ClientInput {
	return ClientInput{
		FullName:       strings.TrimSpace(in.FullName),
		Phone:          strings.TrimSpace(in.Phone),
		Address:        strings.TrimSpace(in.Address),
		NationalID:     strings.TrimSpace(in.NationalID),
		EducationLevel: strings.TrimSpace(in.EducationLevel),
		GuarantorID:    strings.TrimSpace(in.GuarantorID),
	}
}

func (in ClientInput) apply(c models.Client) models.Client {
	c.FullName = in.FullName
	c.Phone = in.Phone
	c.Address = in.Address
	c.NationalID = in.NationalID
	c.EducationLevel = in.EducationLevel
	c.GuarantorID = optional(in.GuarantorID)
	return c
}
