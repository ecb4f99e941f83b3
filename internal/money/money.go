package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
	ErrAmountTooLarge  = errors.New("amount exceeds the maximum allowed")
)

const (
	// MaxAmount caps a single parsed amount (10 trillion).
	MaxAmount Minor = 1_000_000_000_000_000
	// MaxBalance caps a stored balance, far inside the int64 range.
	MaxBalance Minor = 100 * MaxAmount
)

// Minor is an amount in cents. It is stored as BIGINT and rendered as "12.34".
type Minor int64

func (m Minor) String() string {
	return FormatMinor(int64(m))
}

func (m Minor) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Minor) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return ErrInvalidAmount
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// FromDecimal converts a decimal amount to cents, rejecting sub-cent precision.
func FromDecimal(d decimal.Decimal) (Minor, error) {
	value, err := ParseMinor(d.String())
	if err != nil {
		return 0, err
	}
	return Minor(value), nil
}

// AddBalance returns balance+delta, refusing results outside ±MaxBalance.
func AddBalance(balance, delta Minor) (Minor, bool) {
	if delta > 0 && balance > MaxBalance-delta {
		return 0, false
	}
	if delta < 0 && balance < -MaxBalance-delta {
		return 0, false
	}
	return balance + delta, true
}

// ApplyRate returns amount*rate rounded half-to-even to the cent.
func ApplyRate(amount Minor, rate decimal.Decimal) Minor {
	return Minor(decimal.NewFromInt(int64(amount)).Mul(rate).RoundBank(0).IntPart())
}

func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	sign := int64(1)
	switch trimmed[0] {
	case '-':
		sign = -1
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}
	parts := strings.SplitN(trimmed, ".", 2)
	wholePart := parts[0]
	if wholePart == "" {
		wholePart = "0"
	}
	if !isDigits(wholePart) {
		return 0, ErrInvalidAmount
	}
	fracPart := ""
	if len(parts) == 2 {
		fracPart = strings.TrimRight(parts[1], "0")
	}
	if len(fracPart) > 2 {
		return 0, ErrTooManyDecimals
	}
	if fracPart != "" && !isDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	if len(wholePart) > 16 {
		return 0, ErrAmountTooLarge
	}
	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	frac := int64(0)
	if len(fracPart) == 1 {
		frac = int64(fracPart[0]-'0') * 10
	} else if len(fracPart) == 2 {
		value, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		frac = value
	}
	minor := whole*100 + frac
	if minor > int64(MaxAmount) {
		return 0, ErrAmountTooLarge
	}
	return sign * minor, nil
}

func FormatMinor(value int64) string {
	negative := value < 0
	if negative {
		value = -value
	}
	whole := value / 100
	frac := value % 100
	formatted := fmt.Sprintf("%d.%02d", whole, frac)
	if negative {
		return "-" + formatted
	}
	return formatted
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
