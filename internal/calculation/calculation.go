// Package calculation holds the immutable record of one arithmetic operation
// on arbitrary-precision decimal operands.
package calculation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Calculation is one completed arithmetic operation. The result is computed
// at construction and never changes afterwards.
type Calculation struct {
	operation Operation
	operand1  decimal.Decimal
	operand2  decimal.Decimal
	result    decimal.Decimal
	timestamp time.Time
}

// New performs op on a and b. It fails with an *OperationError for an
// unknown operation name or an operand pair outside the operation's domain.
func New(op string, a, b decimal.Decimal) (*Calculation, error) {
	return NewAt(op, a, b, time.Now())
}

// NewAt is New with an explicit timestamp.
func NewAt(op string, a, b decimal.Decimal, ts time.Time) (*Calculation, error) {
	parsed, err := ParseOperation(op)
	if err != nil {
		return nil, err
	}

	result, err := parsed.Apply(a, b)
	if err != nil {
		return nil, err
	}

	return &Calculation{
		operation: parsed,
		operand1:  a,
		operand2:  b,
		result:    result,
		timestamp: ts,
	}, nil
}

func (c *Calculation) Operation() Operation { return c.operation }
func (c *Calculation) Operand1() decimal.Decimal { return c.operand1 }
func (c *Calculation) Operand2() decimal.Decimal { return c.operand2 }
func (c *Calculation) Result() decimal.Decimal { return c.result }
func (c *Calculation) Timestamp() time.Time { return c.timestamp }

// FormatResult renders the result with exactly precision fractional digits,
// rounding half to even.
func (c *Calculation) FormatResult(precision int) string {
	if precision < 0 {
		precision = 0
	}
	return c.result.StringFixedBank(int32(precision))
}

// Equal reports whether both calculations share operation, operands and
// result. Timestamps are ignored.
func (c *Calculation) Equal(other *Calculation) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.operation == other.operation &&
		c.operand1.Equal(other.operand1) &&
		c.operand2.Equal(other.operand2) &&
		c.result.Equal(other.result)
}

func (c *Calculation) String() string {
	return fmt.Sprintf("%s(%s, %s) = %s", c.operation, c.operand1, c.operand2, c.result)
}

// ResultMatches reports whether stored, a previously persisted result,
// agrees with the re-derived one.
func (c *Calculation) ResultMatches(stored string) bool {
	d, err := decimal.NewFromString(stored)
	if err != nil {
		return false
	}
	return d.Equal(c.result)
}

func (c *Calculation) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToRecord())
}

func (c *Calculation) UnmarshalJSON(data []byte) error {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return invalidData(err)
	}
	parsed, err := FromRecord(rec)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}
