package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"remittance/internal/models"
)

func TestWithdrawStoreListSearch(t *testing.T) {
	store := NewWithdrawStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "(w.notes ILIKE $2 OR c.full_name ILIKE $3)") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 4 || args[0] != "client-1" || args[1] != `%50\%%` {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.List(context.Background(), WithdrawFilter{ClientID: "client-1", Search: "50%"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithdrawStoreStats(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewWithdrawStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "w.date >= $1") || !strings.Contains(query, "w.status = $2") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*models.WithdrawStats) = models.WithdrawStats{TotalAmount: 20000, TotalTax: 2000, TotalReceived: 18000, Count: 1}
			return nil
		},
	})
	stats, err := store.Stats(context.Background(), &start, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalReceived != 18000 || stats.Count != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
