package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"remittance/internal/db"
	"remittance/internal/models"
	"remittance/internal/money"
	"remittance/internal/settings"
	"remittance/internal/store"
	"remittance/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LedgerService moves client balances. Every mutation runs in one serializable
// transaction with the affected clients row-locked in id order.
type LedgerService struct {
	txRunner     db.TxRunner
	clients      ClientStore
	ledger       LedgerStore
	transactions TransactionStore
	withdraws    WithdrawStore
	taxLogs      TaxLogStore
	settings     SettingStore
	audit        AuditStore
	hub          BalanceHub
	now          func() time.Time
}

func NewLedgerService(txRunner db.TxRunner, clients ClientStore, ledger LedgerStore, transactions TransactionStore, withdraws WithdrawStore, taxLogs TaxLogStore, settingStore SettingStore, audit AuditStore, hub BalanceHub) *LedgerService {
	return &LedgerService{
		txRunner:     txRunner,
		clients:      clients,
		ledger:       ledger,
		transactions: transactions,
		withdraws:    withdraws,
		taxLogs:      taxLogs,
		settings:     settingStore,
		audit:        audit,
		hub:          hub,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type TransactionRequest struct {
	Type             string
	Amount           money.Minor
	SenderClientID   string
	ReceiverClientID string
	ExternalName     string
	Notes            string
	ActorID          string
	IP               string
}

type TransactionResult struct {
	Transaction models.Transaction
	TaxLog      SideEffect
}

func (s *LedgerService) CreateTransaction(ctx context.Context, req TransactionRequest) (TransactionResult, error) {
	if req.Type != models.TransactionDebit && req.Type != models.TransactionCredit {
		return TransactionResult{}, ErrUnknownType
	}
	if req.Amount <= 0 {
		return TransactionResult{}, ErrInvalidAmount
	}
	isDebit := req.Type == models.TransactionDebit
	if isDebit {
		if req.SenderClientID == "" || req.ReceiverClientID == "" {
			return TransactionResult{}, ErrPartiesRequired
		}
		if req.SenderClientID == req.ReceiverClientID {
			return TransactionResult{}, ErrSameClient
		}
	} else if req.ReceiverClientID == "" {
		return TransactionResult{}, ErrReceiverRequired
	}

	now := s.now()
	var txn models.Transaction
	var updates []websocket.BalanceUpdate
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updates = nil
		rate, err := s.taxRate(ctx, tx)
		if err != nil {
			return err
		}
		taxAmount := money.ApplyRate(req.Amount, rate)
		totalAmount := req.Amount + taxAmount

		lockIDs := []string{req.ReceiverClientID}
		if isDebit {
			lockIDs = append(lockIDs, req.SenderClientID)
		}
		locked, err := lockClients(ctx, tx, s.clients, lockIDs...)
		if err != nil {
			return err
		}
		var sender models.Client
		if isDebit {
			var ok bool
			if sender, ok = locked[req.SenderClientID]; !ok {
				return ErrSenderNotFound
			}
		}
		receiver, ok := locked[req.ReceiverClientID]
		if !ok {
			return ErrReceiverNotFound
		}
		if isDebit && sender.Balance < totalAmount {
			return ErrInsufficientBalance
		}
		credited := req.Amount
		if !isDebit {
			credited = req.Amount - taxAmount
		}
		receiverAfter, ok := money.AddBalance(receiver.Balance, credited)
		if !ok {
			return ErrBalanceLimit
		}

		receipt, err := nextReceiptNumber(ctx, tx, s.settings, now)
		if err != nil {
			return err
		}
		txn = models.Transaction{
			ID:               uuid.NewString(),
			Type:             req.Type,
			Amount:           req.Amount,
			TaxRate:          rate.String(),
			TaxAmount:        taxAmount,
			TotalAmount:      totalAmount,
			ReceiverClientID: &receiver.ID,
			ReceiverName:     &receiver.FullName,
			ExternalName:     req.ExternalName,
			ReceiptNumber:    receipt,
			Status:           models.StatusCompleted,
			Notes:            req.Notes,
			CreatedBy:        optional(req.ActorID),
			Date:             now,
			CreatedAt:        now,
		}
		if isDebit {
			txn.SenderClientID = &sender.ID
			txn.SenderName = &sender.FullName
		}
		if err := s.transactions.Create(ctx, tx, txn); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		var entries []store.LedgerEntryInput
		var net money.Minor
		if isDebit {
			entries = append(entries, ledgerEntry(sender.ID, models.LedgerTransaction, txn.ID, -totalAmount, sender.Balance-totalAmount, "Debit "+receipt))
			entries = append(entries, ledgerEntry(receiver.ID, models.LedgerTransaction, txn.ID, req.Amount, receiverAfter, "Transfer received "+receipt))
			net = -taxAmount
		} else {
			entries = append(entries, ledgerEntry(receiver.ID, models.LedgerTransaction, txn.ID, credited, receiverAfter, "Credit "+receipt))
			net = credited
		}
		if err := ensureNet(entries, net); err != nil {
			return err
		}
		if err := s.applyEntries(ctx, tx, entries); err != nil {
			return err
		}
		updates = balanceUpdates(entries, models.LedgerTransaction)

		return s.audit.Log(ctx, tx, store.AuditEntry{
			ActorUserID:      req.ActorID,
			Action:           "create_transaction",
			TargetCollection: "Transaction",
			TargetID:         txn.ID,
			IP:               req.IP,
			Details: map[string]any{
				"receiptNumber": receipt,
				"type":          req.Type,
				"amount":        req.Amount,
				"taxRate":       rate.String(),
				"taxAmount":     taxAmount,
			},
		})
	})
	if err != nil {
		return TransactionResult{}, err
	}
	result := TransactionResult{Transaction: txn, TaxLog: s.recordTaxLog(ctx, txn)}
	s.broadcast(updates)
	return result, nil
}

type WithdrawRequest struct {
	ClientID string
	Amount   money.Minor
	Notes    string
	Date     *time.Time
	ActorID  string
	IP       string
}

type WithdrawResult struct {
	Withdraw       models.Withdraw
	ClientReceives money.Minor
}

func (s *LedgerService) CreateWithdraw(ctx context.Context, req WithdrawRequest) (WithdrawResult, error) {
	if req.ClientID == "" {
		return WithdrawResult{}, ErrClientRequired
	}
	if req.Amount <= 0 {
		return WithdrawResult{}, ErrInvalidAmount
	}
	now := s.now()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}

	var withdraw models.Withdraw
	var updates []websocket.BalanceUpdate
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updates = nil
		locked, err := lockClients(ctx, tx, s.clients, req.ClientID)
		if err != nil {
			return err
		}
		client, ok := locked[req.ClientID]
		if !ok {
			return ErrClientNotFound
		}
		rate, err := s.taxRate(ctx, tx)
		if err != nil {
			return err
		}
		taxAmount := money.ApplyRate(req.Amount, rate)
		totalReceived := req.Amount - taxAmount
		if client.Balance < req.Amount {
			return &InsufficientBalanceError{Required: req.Amount, Available: client.Balance}
		}

		withdraw = models.Withdraw{
			ID:            uuid.NewString(),
			ClientID:      client.ID,
			ClientName:    &client.FullName,
			Amount:        req.Amount,
			TaxRate:       rate.String(),
			TaxAmount:     taxAmount,
			TotalReceived: totalReceived,
			Notes:         req.Notes,
			Status:        models.StatusCompleted,
			CreatedBy:     optional(req.ActorID),
			Date:          date,
			CreatedAt:     now,
		}
		balanceAfter := client.Balance - req.Amount
		entries := []store.LedgerEntryInput{
			ledgerEntry(client.ID, models.LedgerWithdraw, withdraw.ID, -req.Amount, balanceAfter, "Withdraw"),
		}
		if err := s.applyEntries(ctx, tx, entries); err != nil {
			return err
		}
		if err := s.withdraws.Create(ctx, tx, withdraw); err != nil {
			return fmt.Errorf("insert withdraw: %w", err)
		}
		updates = balanceUpdates(entries, models.LedgerWithdraw)

		return s.audit.Log(ctx, tx, store.AuditEntry{
			ActorUserID:      req.ActorID,
			Action:           "withdraw_money",
			TargetCollection: "Withdraw",
			TargetID:         withdraw.ID,
			IP:               req.IP,
			Details: map[string]any{
				"client":             client.FullName,
				"amount":             req.Amount,
				"taxRate":            rate.String(),
				"taxAmount":          taxAmount,
				"totalReceived":      totalReceived,
				"clientBalanceAfter": balanceAfter,
			},
		})
	})
	if err != nil {
		return WithdrawResult{}, err
	}
	s.broadcast(updates)
	return WithdrawResult{Withdraw: withdraw, ClientReceives: withdraw.TotalReceived}, nil
}

// taxRate reads the taxRate setting on tx; a missing row means no tax.
func (s *LedgerService) taxRate(ctx context.Context, tx store.Getter) (decimal.Decimal, error) {
	setting, err := s.settings.Get(ctx, tx, settings.KeyTaxRate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("read tax rate: %w", err)
	}
	rate, err := settings.ParseRate(string(setting.Value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrTaxRateUnavailable, err)
	}
	return rate, nil
}

// applyEntries writes each entry's balance_after onto its client and appends the entries.
func (s *LedgerService) applyEntries(ctx context.Context, tx store.Execer, entries []store.LedgerEntryInput) error {
	for _, entry := range entries {
		if err := s.clients.UpdateBalance(ctx, tx, entry.ClientID, entry.BalanceAfter); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
	}
	if err := s.ledger.InsertEntries(ctx, tx, entries); err != nil {
		return fmt.Errorf("insert ledger entries: %w", err)
	}
	return nil
}

func (s *LedgerService) broadcast(updates []websocket.BalanceUpdate) {
	if s.hub == nil {
		return
	}
	for _, update := range updates {
		s.hub.BroadcastBalance(update)
	}
}

// lockClients takes FOR UPDATE locks in ascending id order. Missing clients are
// absent from the result so callers can report them in their own order.
func lockClients(ctx context.Context, tx store.Getter, clients ClientStore, ids ...string) (map[string]models.Client, error) {
	ordered := orderedIDs(ids...)
	locked := make(map[string]models.Client, len(ordered))
	for _, id := range ordered {
		client, err := clients.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("lock client %s: %w", id, err)
		}
		locked[id] = client
	}
	return locked, nil
}

func orderedIDs(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	ordered := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)
	return ordered
}

func ledgerEntry(clientID, sourceType, sourceID string, amount, balanceAfter money.Minor, description string) store.LedgerEntryInput {
	return store.LedgerEntryInput{
		ID:           uuid.NewString(),
		ClientID:     clientID,
		SourceType:   sourceType,
		SourceID:     optional(sourceID),
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Description:  description,
	}
}

// ensureNet checks that entries move client money by exactly want in total.
func ensureNet(entries []store.LedgerEntryInput, want money.Minor) error {
	var sum money.Minor
	for _, entry := range entries {
		sum += entry.Amount
	}
	if sum != want {
		return fmt.Errorf("ledger entries net %s, expected %s", sum, want)
	}
	return nil
}

func balanceUpdates(entries []store.LedgerEntryInput, source string) []websocket.BalanceUpdate {
	updates := make([]websocket.BalanceUpdate, 0, len(entries))
	for _, entry := range entries {
		updates = append(updates, websocket.BalanceUpdate{
			ClientID: entry.ClientID,
			Balance:  entry.BalanceAfter.String(),
			Source:   source,
		})
	}
	return updates
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
