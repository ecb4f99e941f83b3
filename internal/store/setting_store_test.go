package store

import (
	"context"
	"strings"
	"testing"

	"remittance/internal/models"
)

func TestSettingStoreNextReceiptCounter(t *testing.T) {
	tx := stubTx{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "ON CONFLICT (key) DO UPDATE") || !strings.Contains(query, "RETURNING") {
				t.Fatalf("expected atomic upsert: %s", query)
			}
			if len(args) != 1 || args[0] != receiptCounterKey {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*int64) = 17
			return nil
		},
	}
	counter, err := NewSettingStore(stubDB{}).NextReceiptCounter(context.Background(), tx)
	if err != nil || counter != 17 {
		t.Fatalf("unexpected counter %d err=%v", counter, err)
	}
}

func TestSettingStoreEnsureKeepsExisting(t *testing.T) {
	tx := stubTx{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if strings.Contains(query, "SET value") {
				t.Fatalf("ensure must not overwrite value: %s", query)
			}
			*dest.(*models.Setting) = models.Setting{Key: "taxRate", Value: "0.05"}
			return nil
		},
	}
	setting, err := NewSettingStore(stubDB{}).Ensure(context.Background(), tx, "taxRate", "0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setting.Value != "0.05" {
		t.Fatalf("expected stored value, got %s", setting.Value)
	}
}

func TestSettingStoreUpsert(t *testing.T) {
	tx := stubTx{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "SET value = EXCLUDED.value") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "receiptPrefix" || args[1] != `"TX"` {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	}
	if _, err := NewSettingStore(stubDB{}).Upsert(context.Background(), tx, "receiptPrefix", `"TX"`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
