package calculator

import "go-decimal-calculator/internal/calculation"

// memento is a frozen view of the history. Calculations are immutable, so
// copying the slice is enough.
type memento struct {
	calculations []*calculation.Calculation
}

func snapshot(h []*calculation.Calculation) memento {
	out := make([]*calculation.Calculation, len(h))
	copy(out, h)
	return memento{calculations: out}
}

func (m memento) restore() []*calculation.Calculation {
	return snapshot(m.calculations).calculations
}
