package calculation

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Operation names one of the fixed arithmetic kinds a Calculation may represent.
type Operation string

const (
	Addition       Operation = "Addition"
	Subtraction    Operation = "Subtraction"
	Multiplication Operation = "Multiplication"
	Division       Operation = "Division"
	Power          Operation = "Power"
	Root           Operation = "Root"
)

// Precision is the number of significant digits kept by inexact operations
// (division, roots, fractional and very large powers).
const Precision int32 = 28

const (
	guardDigits int32 = 8

	// Integer exponents up to this bound are evaluated exactly.
	maxExactExponent = 100000
	// Integer root indices up to this bound use Newton iteration.
	maxNewtonIndex = 64
	// Powers whose result lies further than this many decimal orders from
	// one are rejected as out of range.
	maxMagnitude = 1e8
)

var operations = []Operation{Addition, Subtraction, Multiplication, Division, Power, Root}

// Operations returns the supported operations in display order.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

// ParseOperation matches name case-sensitively against the supported set.
func ParseOperation(name string) (Operation, error) {
	for _, op := range operations {
		if string(op) == name {
			return op, nil
		}
	}
	return "", unknownOperation(name)
}

var commands = map[Operation]string{
	Addition:       "add",
	Subtraction:    "subtract",
	Multiplication: "multiply",
	Division:       "divide",
	Power:          "power",
	Root:           "root",
}

// Command is the short lower-case name used by the REPL and the HTTP routes.
func (op Operation) Command() string {
	return commands[op]
}

// ParseCommand maps a short command name such as "add" onto its operation.
func ParseCommand(cmd string) (Operation, bool) {
	for op, name := range commands {
		if name == cmd {
			return op, true
		}
	}
	return "", false
}

// Apply evaluates op on the two operands.
func (op Operation) Apply(a, b decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case Addition:
		return a.Add(b), nil
	case Subtraction:
		return a.Sub(b), nil
	case Multiplication:
		return a.Mul(b), nil
	case Division:
		return divide(a, b)
	case Power:
		return power(a, b)
	case Root:
		return root(a, b)
	default:
		return decimal.Zero, unknownOperation(string(op))
	}
}

func divide(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, opError(ErrDivisionByZero)
	}
	return quo(a, b), nil
}

func power(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsNegative() {
		return decimal.Zero, opError(ErrNegativeExponent)
	}
	if b.IsZero() {
		return decimal.NewFromInt(1), nil
	}
	if a.IsZero() || a.Equal(decimal.NewFromInt(1)) {
		return a, nil
	}
	if a.IsNegative() && !b.IsInteger() {
		return decimal.Zero, opError(ErrNegativeFraction)
	}
	if !inRange(a, b) {
		return decimal.Zero, opError(ErrOutOfRange)
	}
	if b.IsInteger() && b.LessThanOrEqual(decimal.NewFromInt(maxExactExponent)) {
		return intPow(a, b.BigInt().Uint64()), nil
	}
	r, err := pow(a, b)
	if err != nil {
		return decimal.Zero, err
	}
	return roundDigits(r, Precision), nil
}

// root rejects every negative base, odd indices included.
func root(a, n decimal.Decimal) (decimal.Decimal, error) {
	if a.IsNegative() {
		return decimal.Zero, opError(ErrNegativeRoot)
	}
	if n.IsZero() {
		return decimal.Zero, opError(ErrZeroRoot)
	}
	if a.IsZero() {
		if n.IsNegative() {
			return decimal.Zero, opError(ErrZeroNegativeRoot)
		}
		return decimal.Zero, nil
	}

	one := decimal.NewFromInt(1)
	idx := n.Abs()

	var r decimal.Decimal
	switch {
	case idx.Equal(one):
		r = a
	case idx.IsInteger() && idx.LessThanOrEqual(decimal.NewFromInt(maxNewtonIndex)):
		r = roundDigits(nthRoot(a, idx.BigInt().Uint64()), Precision)
	default:
		exp := quoDigits(one, idx, Precision+guardDigits)
		if !inRange(a, exp) {
			return decimal.Zero, opError(ErrOutOfRange)
		}
		var err error
		if r, err = pow(a, exp); err != nil {
			return decimal.Zero, err
		}
		r = roundDigits(r, Precision)
	}
	if n.IsNegative() {
		r = quo(one, r)
	}
	return r, nil
}

// magnitude is the position of the leading digit of a non-zero d: 1 for
// [1, 10), 0 for [0.1, 1), -1 for [0.01, 0.1) and so on.
func magnitude(d decimal.Decimal) int {
	return d.NumDigits() + int(d.Exponent())
}

// roundDigits rounds d to the given number of significant digits.
func roundDigits(d decimal.Decimal, digits int32) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	return d.Round(digits - int32(magnitude(d)))
}

// quo is a / b to Precision significant digits. Quotients that terminate
// within that many digits are exact.
func quo(a, b decimal.Decimal) decimal.Decimal {
	return quoDigits(a, b, Precision)
}

func quoDigits(a, b decimal.Decimal, digits int32) decimal.Decimal {
	if a.IsZero() {
		return decimal.Zero
	}
	// The quotient's magnitude is est or est+1.
	est := magnitude(a) - magnitude(b)
	q := a.DivRound(b, digits-int32(est))
	if m := magnitude(q); m != est {
		q = a.DivRound(b, digits-int32(m))
	}
	return q
}

// inRange reports whether |a|^b stays within maxMagnitude decimal orders of
// one, estimated in floating point.
func inRange(a, b decimal.Decimal) bool {
	est := log10Abs(a) * b.InexactFloat64()
	return !math.IsNaN(est) && math.Abs(est) <= maxMagnitude
}

func log10Abs(d decimal.Decimal) float64 {
	m := magnitude(d)
	f, _ := d.Abs().Shift(int32(1 - m)).Float64()
	return float64(m-1) + math.Log10(f)
}

// pow approximates a^b for b > 0 to Precision+guardDigits significant
// digits. Callers reject negative bases with fractional exponents.
func pow(a, b decimal.Decimal) (decimal.Decimal, error) {
	whole := b.Floor()
	frac := b.Sub(whole)

	r := decimal.NewFromInt(1)
	if whole.IsPositive() {
		r = roundedPow(a, whole.BigInt())
	}
	if frac.IsZero() {
		return r, nil
	}
	f, err := fracPow(a, frac)
	if err != nil {
		return decimal.Zero, err
	}
	return roundDigits(r.Mul(f), Precision+guardDigits), nil
}

// roundedPow is square-and-multiply with every product rounded to
// Precision+guardDigits significant digits.
func roundedPow(a decimal.Decimal, n *big.Int) decimal.Decimal {
	digits := Precision + guardDigits
	base := roundDigits(a, digits)
	result := decimal.NewFromInt(1)
	for i := n.BitLen() - 1; i >= 0; i-- {
		result = roundDigits(result.Mul(result), digits)
		if n.Bit(i) == 1 {
			result = roundDigits(result.Mul(base), digits)
		}
	}
	return result
}

// fracPow computes a^f for a > 0 and 0 < f < 1. With a = m * 10^e and
// m in [1, 10), a^f = m^f * 10^g * 10^k where e*f = k + g and g in [0, 1),
// so both series run on arguments of order one.
func fracPow(a, f decimal.Decimal) (decimal.Decimal, error) {
	e := magnitude(a) - 1
	m := a.Shift(int32(-e))

	ef := decimal.NewFromInt(int64(e)).Mul(f)
	k := ef.Floor()
	g := ef.Sub(k)

	prec := Precision + guardDigits
	mf := decimal.NewFromInt(1)
	if !m.Equal(mf) {
		var err error
		if mf, err = m.PowWithPrecision(f, prec); err != nil {
			return decimal.Zero, undefinedResult(err)
		}
	}
	tg, err := decimal.NewFromInt(10).PowWithPrecision(g, prec)
	if err != nil {
		return decimal.Zero, undefinedResult(err)
	}
	return roundDigits(mf.Mul(tg), prec).Shift(int32(k.IntPart())), nil
}

// intPow computes a^n exactly by repeated squaring.
func intPow(a decimal.Decimal, n uint64) decimal.Decimal {
	result := decimal.NewFromInt(1)
	base := a
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base)
		}
	}
	return result
}

// nthRoot finds the positive n-th root of a > 0 by Newton iteration. The
// radicand is first scaled by a power of 10^n into [1, 10^n) so the root lies
// in [1, 10) and a fixed number of fractional digits is enough.
func nthRoot(a decimal.Decimal, n uint64) decimal.Decimal {
	if n == 1 {
		return a
	}
	k := floorDiv(magnitude(a)-1, int(n))
	a = a.Shift(int32(-k * int(n)))

	prec := Precision + guardDigits
	dn := decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
	dn1 := decimal.NewFromBigInt(new(big.Int).SetUint64(n-1), 0)
	eps := decimal.New(1, -(prec - 2))

	x := initialGuess(a, n)
	for i := 0; i < 500; i++ {
		next := dn1.Mul(x).Add(a.DivRound(intPow(x, n-1), prec)).DivRound(dn, prec)
		done := next.Sub(x).Abs().LessThanOrEqual(eps)
		x = next
		if done {
			break
		}
	}
	return x.Shift(int32(k))
}

// initialGuess expects a in [1, 10^n), well inside float64 range.
func initialGuess(a decimal.Decimal, n uint64) decimal.Decimal {
	f, _ := a.Float64()
	g := math.Pow(f, 1/float64(n))
	if math.IsInf(g, 0) || math.IsNaN(g) || g <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(g)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
