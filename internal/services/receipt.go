package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remittance/internal/settings"
	"remittance/internal/store"
)

// FormatReceipt renders {prefix}{YYYY}{MM}-{counter:06d}.
func FormatReceipt(prefix string, at time.Time, counter int64) string {
	return fmt.Sprintf("%s%s-%06d", prefix, at.Format("200601"), counter)
}

// nextReceiptNumber must run on the transaction that persists the receipt.
func nextReceiptNumber(ctx context.Context, tx store.Getter, settingStore SettingStore, at time.Time) (string, error) {
	prefix := settings.DefaultReceiptPrefix
	setting, err := settingStore.Get(ctx, tx, settings.KeyReceiptPrefix)
	switch {
	case err == nil:
		prefix = settings.ParseString(string(setting.Value), settings.DefaultReceiptPrefix)
	case !errors.Is(err, store.ErrNotFound):
		return "", fmt.Errorf("read receipt prefix: %w", err)
	}
	counter, err := settingStore.NextReceiptCounter(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("increment receipt counter: %w", err)
	}
	return FormatReceipt(prefix, at, counter), nil
}
