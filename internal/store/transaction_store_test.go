package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"remittance/internal/models"
)

func TestTransactionStoreCreate(t *testing.T) {
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 14 || args[0] != "tx-1" || args[9] != "RCPT202505-000017" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	txn := models.Transaction{ID: "tx-1", Type: models.TransactionDebit, Amount: 10000, ReceiptNumber: "RCPT202505-000017"}
	if err := NewTransactionStore(stubDB{}).Create(context.Background(), execer, txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreListFilters(t *testing.T) {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			for _, fragment := range []string{
				"t.date >= $1",
				"t.date < $2",
				"t.type = $3",
				"(t.sender_client_id = $4 OR t.receiver_client_id = $5)",
				"LIMIT $6",
				"LEFT JOIN clients sc",
			} {
				if !strings.Contains(query, fragment) {
					t.Fatalf("query missing %q: %s", fragment, query)
				}
			}
			if len(args) != 6 || args[2] != "debit" || args[5] != maxListLimit {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	_, err := store.List(context.Background(), TransactionFilter{
		Start:    &start,
		End:      &end,
		Type:     "debit",
		ClientID: "client-1",
		Limit:    5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreListNoFilters(t *testing.T) {
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if strings.Contains(query, "WHERE") {
				t.Fatalf("unexpected where clause: %s", query)
			}
			if len(args) != 1 || args[0] != 25 {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.List(context.Background(), TransactionFilter{Limit: 25}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
