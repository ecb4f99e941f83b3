package services

import (
	"errors"
	"fmt"

	"remittance/internal/money"
)

var (
	ErrUnknownType         = errors.New("unknown transaction type")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrPartiesRequired     = errors.New("sender and receiver are required for debit")
	ErrReceiverRequired    = errors.New("receiver is required for credit")
	ErrSameClient          = errors.New("sender and receiver must be different clients")
	ErrSenderNotFound      = errors.New("sender not found")
	ErrReceiverNotFound    = errors.New("receiver not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrClientRequired      = errors.New("clientId is required")
	ErrClientNotFound      = errors.New("client not found")
	ErrFullNameRequired    = errors.New("fullName is required")
	ErrDuplicateClient     = errors.New("a client with this name already exists")
	ErrGuarantorNotFound   = errors.New("guarantor not found")
	ErrNegativeBalance     = errors.New("balance cannot be negative")
	ErrTaxRateUnavailable  = errors.New("tax rate setting is invalid")
	ErrBalanceLimit        = errors.New("balance would exceed the allowed maximum")
)

// InsufficientBalanceError carries the amounts behind a rejected withdrawal.
type InsufficientBalanceError struct {
	Required  money.Minor
	Available money.Minor
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient balance. Required: $%s, Available: $%s", e.Required, e.Available)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
