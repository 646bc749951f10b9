package calculator

import "go-decimal-calculator/internal/calculation"

// CalcRequest is the JSON body for POST /calculator/{op}. Operands may be
// JSON numbers or strings; strings keep full decimal precision.
type CalcRequest struct {
	A any `json:"a"`
	B any `json:"b"`
}

// CalcResponse is the JSON response for a performed calculation. Decimals
// are rendered as strings.
type CalcResponse struct {
	Operation string `json:"operation"`
	A         string `json:"a"`
	B         string `json:"b"`
	Result    string `json:"result"`
	Formatted string `json:"formatted"`
	Timestamp string `json:"timestamp"`
}

func newCalcResponse(c *calculation.Calculation, precision int) CalcResponse {
	rec := c.ToRecord()
	return CalcResponse{
		Operation: rec.Operation,
		A:         rec.Operand1,
		B:         rec.Operand2,
		Result:    rec.Result,
		Formatted: c.FormatResult(precision),
		Timestamp: rec.Timestamp,
	}
}

// HistoryResponse lists recorded calculations, oldest first.
type HistoryResponse struct {
	Count        int                  `json:"count"`
	Calculations []calculation.Record `json:"calculations"`
}

func newHistoryResponse(calcs []*calculation.Calculation) HistoryResponse {
	records := make([]calculation.Record, 0, len(calcs))
	for _, c := range calcs {
		records = append(records, c.ToRecord())
	}
	return HistoryResponse{Count: len(records), Calculations: records}
}

// OperationsResponse is the JSON response for GET /calculator/operations:
// route slug to operation name.
type OperationsResponse struct {
	Operations map[string]string `json:"operations"`
}
