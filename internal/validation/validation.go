// Package validation turns raw operand input into bounded decimal values.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"go-decimal-calculator/internal/config"
)

// ValidationError reports operand input that is not a number or lies
// outside the configured bound.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalidFormat(raw any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf("Invalid number format: %v", raw)}
}

// ValidateNumber parses raw as a decimal and checks its magnitude against
// cfg.MaxInputValue. Strings are trimmed; floats are converted through their
// shortest decimal representation.
func ValidateNumber(raw any, cfg config.Calculator) (decimal.Decimal, error) {
	value, ok := parse(raw)
	if !ok {
		return decimal.Zero, invalidFormat(raw)
	}
	if err := checkBound(value, cfg.MaxInputValue); err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

func checkBound(value, bound decimal.Decimal) error {
	if value.Abs().GreaterThan(bound) {
		return &ValidationError{Msg: fmt.Sprintf("Value exceeds maximum allowed: %s", bound)}
	}
	return nil
}

func parse(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	case string:
		return parseString(v)
	case json.Number:
		return parseString(string(v))
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int8:
		return decimal.NewFromInt(int64(v)), true
	case int16:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case uint:
		return fromUint64(uint64(v)), true
	case uint8:
		return fromUint64(uint64(v)), true
	case uint16:
		return fromUint64(uint64(v)), true
	case uint32:
		return fromUint64(uint64(v)), true
	case uint64:
		return fromUint64(v), true
	case float32:
		if !finite(float64(v)) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(v), true
	case float64:
		if !finite(v) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	default:
		return decimal.Zero, false
	}
}

func parseString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func fromUint64(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
