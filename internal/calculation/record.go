package calculation

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the persisted shape of a Calculation.
type Record struct {
	Operation string `json:"operation"`
	Operand1  string `json:"operand1"`
	Operand2  string `json:"operand2"`
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
}

// Accepted timestamp layouts, most specific first. The naive layouts cover
// history written without a zone offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (c *Calculation) ToRecord() Record {
	return Record{
		Operation: string(c.operation),
		Operand1:  c.operand1.String(),
		Operand2:  c.operand2.String(),
		Result:    c.result.String(),
		Timestamp: c.timestamp.Format(time.RFC3339Nano),
	}
}

// FromRecord rebuilds a Calculation from rec. The result is re-derived from
// the operands; rec.Result is not trusted.
func FromRecord(rec Record) (*Calculation, error) {
	a, err := decimal.NewFromString(rec.Operand1)
	if err != nil {
		return nil, invalidData(fmt.Errorf("operand1 %q: %w", rec.Operand1, err))
	}
	b, err := decimal.NewFromString(rec.Operand2)
	if err != nil {
		return nil, invalidData(fmt.Errorf("operand2 %q: %w", rec.Operand2, err))
	}
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return nil, invalidData(err)
	}

	c, err := NewAt(rec.Operation, a, b, ts)
	if err != nil {
		return nil, invalidData(err)
	}
	return c, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q is not ISO-8601", s)
}
