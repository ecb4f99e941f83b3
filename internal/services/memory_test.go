package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"remittance/internal/models"
	"remittance/internal/money"
	"remittance/internal/store"
	"remittance/internal/websocket"

	"github.com/jmoiron/sqlx"
)

// memDB is an in-memory stand-in for the database. Transactions run one at a
// time through serialTxRunner and are rolled back by restoring a snapshot.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	clients      map[string]models.Client
	entries      []store.LedgerEntryInput
	transactions []models.Transaction
	withdraws    []models.Withdraw
	taxLogs      []models.TaxLog
	audits       []store.AuditEntry
	settings     map[string]string
	counter      int64
	lockOrder    []string

	taxLogErr error
}

func newMemDB() *memDB {
	return &memDB{
		clients:  map[string]models.Client{},
		settings: map[string]string{},
	}
}

func (m *memDB) addClient(id, name string, balance money.Minor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[id] = models.Client{ID: id, FullName: name, Balance: balance}
	if balance != 0 {
		m.entries = append(m.entries, store.LedgerEntryInput{ClientID: id, SourceType: models.LedgerOpening, Amount: balance, BalanceAfter: balance})
	}
}

func (m *memDB) balance(id string) money.Minor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[id].Balance
}

// ledgerSum is the balance implied by the client's ledger entries.
func (m *memDB) ledgerSum(id string) money.Minor {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum money.Minor
	for _, entry := range m.entries {
		if entry.ClientID == id {
			sum += entry.Amount
		}
	}
	return sum
}

type memSnapshot struct {
	clients      map[string]models.Client
	entries      []store.LedgerEntryInput
	transactions []models.Transaction
	withdraws    []models.Withdraw
	audits       []store.AuditEntry
	settings     map[string]string
	counter      int64
}

func (m *memDB) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := memSnapshot{
		clients:      make(map[string]models.Client, len(m.clients)),
		entries:      append([]store.LedgerEntryInput(nil), m.entries...),
		transactions: append([]models.Transaction(nil), m.transactions...),
		withdraws:    append([]models.Withdraw(nil), m.withdraws...),
		audits:       append([]store.AuditEntry(nil), m.audits...),
		settings:     make(map[string]string, len(m.settings)),
		counter:      m.counter,
	}
	for k, v := range m.clients {
		snap.clients[k] = v
	}
	for k, v := range m.settings {
		snap.settings[k] = v
	}
	return snap
}

func (m *memDB) restore(snap memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = snap.clients
	m.entries = snap.entries
	m.transactions = snap.transactions
	m.withdraws = snap.withdraws
	m.audits = snap.audits
	m.settings = snap.settings
	m.counter = snap.counter
}

type serialTxRunner struct {
	db *memDB
}

func (r serialTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	r.db.txMu.Lock()
	defer r.db.txMu.Unlock()
	snap := r.db.snapshot()
	if err := fn(nil); err != nil {
		r.db.restore(snap)
		return err
	}
	return nil
}

type memClients struct{ db *memDB }

func (s memClients) Create(ctx context.Context, tx store.Execer, c models.Client) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.clients[c.ID] = c
	return nil
}

func (s memClients) GetByID(ctx context.Context, clientID string) (models.Client, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.clients[clientID]
	if !ok {
		return models.Client{}, store.ErrNotFound
	}
	return c, nil
}

func (s memClients) GetForUpdate(ctx context.Context, tx store.Getter, clientID string) (models.Client, error) {
	s.db.mu.Lock()
	s.db.lockOrder = append(s.db.lockOrder, clientID)
	s.db.mu.Unlock()
	return s.GetByID(ctx, clientID)
}

func (s memClients) UpdateProfile(ctx context.Context, tx store.Execer, c models.Client) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	current, ok := s.db.clients[c.ID]
	if !ok {
		return 0, nil
	}
	c.Balance = current.Balance
	s.db.clients[c.ID] = c
	return 1, nil
}

func (s memClients) UpdateBalance(ctx context.Context, tx store.Execer, clientID string, balance money.Minor) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c := s.db.clients[clientID]
	c.Balance = balance
	s.db.clients[clientID] = c
	return nil
}

type memLedger struct{ db *memDB }

func (s memLedger) InsertEntries(ctx context.Context, tx store.Execer, entries []store.LedgerEntryInput) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.entries = append(s.db.entries, entries...)
	return nil
}

type memTransactions struct{ db *memDB }

func (s memTransactions) Create(ctx context.Context, tx store.Execer, t models.Transaction) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.transactions {
		if existing.ReceiptNumber == t.ReceiptNumber {
			return errors.New("duplicate receipt number")
		}
	}
	s.db.transactions = append(s.db.transactions, t)
	return nil
}

type memWithdraws struct{ db *memDB }

func (s memWithdraws) Create(ctx context.Context, tx store.Execer, w models.Withdraw) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.withdraws = append(s.db.withdraws, w)
	return nil
}

type memTaxLogs struct{ db *memDB }

func (s memTaxLogs) Record(ctx context.Context, log models.TaxLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.taxLogErr != nil {
		return s.db.taxLogErr
	}
	s.db.taxLogs = append(s.db.taxLogs, log)
	return nil
}

type memSettings struct{ db *memDB }

func (s memSettings) Get(ctx context.Context, q store.Getter, key string) (models.Setting, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	value, ok := s.db.settings[key]
	if !ok {
		return models.Setting{}, store.ErrNotFound
	}
	return models.Setting{Key: key, Value: models.JSONText(value)}, nil
}

func (s memSettings) NextReceiptCounter(ctx context.Context, tx store.Getter) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.counter++
	return s.db.counter, nil
}

type memAudit struct{ db *memDB }

func (s memAudit) Log(ctx context.Context, tx store.Execer, entry store.AuditEntry) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.audits = append(s.db.audits, entry)
	return nil
}

type recordingHub struct {
	mu      sync.Mutex
	updates []websocket.BalanceUpdate
}

func (h *recordingHub) BroadcastBalance(update websocket.BalanceUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, update)
}

var fixedNow = time.Date(2025, 5, 14, 9, 30, 0, 0, time.UTC)

func newMemLedgerService(m *memDB, hub BalanceHub) *LedgerService {
	service := NewLedgerService(serialTxRunner{db: m}, memClients{m}, memLedger{m}, memTransactions{m}, memWithdraws{m}, memTaxLogs{m}, memSettings{m}, memAudit{m}, hub)
	service.now = func() time.Time { return fixedNow }
	return service
}

// forbiddenTxRunner fails the test if a transaction is opened.
type forbiddenTxRunner struct {
	fail func(format string, args ...any)
}

func (r forbiddenTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	r.fail("unexpected transaction")
	return nil
}
