package services

import (
	"context"
	"time"

	"remittance/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SideEffectRecorded = "recorded"
	SideEffectFailed   = "failed"
)

// SideEffect reports a post-commit write that cannot fail the request.
type SideEffect struct {
	Status string `json:"status"`
	Error  string `json:"-"`
}

func deriveTaxLog(t models.Transaction, at time.Time) models.TaxLog {
	method := models.MethodReceive
	if t.Type == models.TransactionDebit {
		method = models.MethodSend
	}
	receipt := t.ReceiptNumber
	if receipt == "" {
		receipt = "N/A"
	}
	return models.TaxLog{
		ID:               uuid.NewString(),
		SenderClientID:   t.SenderClientID,
		ReceiverClientID: t.ReceiverClientID,
		TransactionID:    t.ID,
		AmountSent:       t.Amount,
		AmountReceived:   t.TotalAmount - t.TaxAmount,
		Profit:           t.TaxAmount,
		Method:           method,
		ProfitSource:     models.ProfitTransferFee,
		Description:      "Tax recorded for transaction " + receipt,
		Date:             at,
	}
}

func (s *LedgerService) recordTaxLog(ctx context.Context, t models.Transaction) SideEffect {
	log := deriveTaxLog(t, s.now())
	if err := s.taxLogs.Record(ctx, log); err != nil {
		zap.L().Error("failed to record tax log",
			zap.String("transaction_id", t.ID),
			zap.String("receipt_number", t.ReceiptNumber),
			zap.Error(err),
		)
		return SideEffect{Status: SideEffectFailed, Error: err.Error()}
	}
	zap.L().Debug("tax log recorded", zap.String("transaction_id", t.ID), zap.String("tax_log_id", log.ID))
	return SideEffect{Status: SideEffectRecorded}
}
