// Package settings owns the built-in setting defaults and the typed readers over stored values.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

const (
	KeyTaxRate        = "taxRate"
	KeyWithdrawTax    = "withdraw_tax"
	KeySystemName     = "system_name"
	KeyReceiptPrefix  = "receiptPrefix"
	KeyReceiptCounter = "receiptCounter"

	DefaultReceiptPrefix = "RCPT"
)

var (
	ErrInvalidTaxRate   = errors.New("taxRate must be a number between 0 and 1")
	ErrTaxRatePrecision = errors.New("taxRate allows at most 6 decimal places")
	ErrInvalidValue     = errors.New("setting value must be a scalar")
)

// Defaults maps a setting key to the value created on first read.
type Defaults map[string]any

func BuiltinDefaults() Defaults {
	return Defaults{
		KeyTaxRate:       0,
		KeyWithdrawTax:   0,
		KeySystemName:    "Money Transfer System",
		KeyReceiptPrefix: DefaultReceiptPrefix,
	}
}

// LoadDefaults overlays the YAML file at path on the built-in defaults.
// A missing file is not an error.
func LoadDefaults(path string) (Defaults, error) {
	defaults := BuiltinDefaults()
	if path == "" {
		return defaults, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return nil, fmt.Errorf("read settings defaults: %w", err)
	}
	var overrides map[string]any
	if err := yaml.Unmarshal(content, &overrides); err != nil {
		return nil, fmt.Errorf("parse settings defaults %s: %w", path, err)
	}
	for key, value := range overrides {
		switch value.(type) {
		case string, int, int64, float64, bool:
		default:
			return nil, fmt.Errorf("settings default %q: %w", key, ErrInvalidValue)
		}
		defaults[key] = value
	}
	if err := ValidateValue(KeyTaxRate, mustJSON(defaults[KeyTaxRate])); err != nil {
		return nil, fmt.Errorf("settings defaults: %w", err)
	}
	return defaults, nil
}

// JSON returns the default for key encoded as JSON; unknown keys default to 0.
func (d Defaults) JSON(key string) string {
	value, ok := d[key]
	if !ok {
		return "0"
	}
	return mustJSON(value)
}

// ValidateValue checks a JSON value proposed for key.
func ValidateValue(key string, raw string) error {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return ErrInvalidValue
	}
	switch value.(type) {
	case string, float64, bool, nil:
	default:
		return ErrInvalidValue
	}
	if key == KeyTaxRate {
		if _, err := ParseRate(raw); err != nil {
			return err
		}
	}
	return nil
}

// ParseRate reads a tax rate stored as a JSON number or numeric string.
func ParseRate(raw string) (decimal.Decimal, error) {
	text := strings.Trim(strings.TrimSpace(raw), `"`)
	if text == "" || text == "null" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, ErrInvalidTaxRate
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, ErrInvalidTaxRate
	}
	if rate.Exponent() < -6 {
		return decimal.Zero, ErrTaxRatePrecision
	}
	return rate, nil
}

// ParseString reads a JSON string value, falling back when absent or not a string.
func ParseString(raw string, fallback string) string {
	var value string
	if err := json.Unmarshal([]byte(raw), &value); err != nil || value == "" {
		return fallback
	}
	return value
}

func mustJSON(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "null"
	}
	return string(encoded)
}
