// Package calculator owns the calculation history: it validates operands,
// builds calculations, keeps undo/redo snapshots, persists the history and
// notifies registered observers. It also serves the HTTP API over it.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-decimal-calculator/internal/calculation"
	"go-decimal-calculator/internal/config"
	"go-decimal-calculator/internal/history"
	"go-decimal-calculator/internal/observability"
	"go-decimal-calculator/internal/validation"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Calculator is safe for concurrent use. Observers run on the goroutine
// that performed the calculation, after the history lock is released, so
// they may call back into the Calculator.
type Calculator struct {
	cfg    config.Calculator
	fs     afero.Fs
	logger *zap.Logger
	clock  func() time.Time

	observers history.Observers

	mu      sync.Mutex
	history []*calculation.Calculation
	undo    []memento
	redo    []memento

	// saveMu serialises writers of the history file.
	saveMu sync.Mutex
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithFs sets the filesystem history is persisted to. Defaults to the OS
// filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *Calculator) { c.fs = fs }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) { c.logger = logger }
}

func WithClock(clock func() time.Time) Option {
	return func(c *Calculator) { c.clock = clock }
}

// WithObserver registers obs at construction time.
func WithObserver(obs history.Observer) Option {
	return func(c *Calculator) { c.observers.Add(obs) }
}

func New(cfg config.Calculator, opts ...Option) (*Calculator, error) {
	if err := InitMetrics(); err != nil {
		return nil, err
	}

	c := &Calculator{
		cfg:   cfg,
		fs:    afero.NewOsFs(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = observability.Logger
	}
	return c, nil
}

// Config returns the settings the calculator was built with.
func (c *Calculator) Config() config.Calculator {
	return c.cfg
}

func (c *Calculator) AddObserver(obs history.Observer) {
	c.observers.Add(obs)
}

func (c *Calculator) RemoveObserver(obs history.Observer) bool {
	return c.observers.Remove(obs)
}

// Perform is PerformContext with a background context.
func (c *Calculator) Perform(op string, a, b any) (*calculation.Calculation, error) {
	return c.PerformContext(context.Background(), op, a, b)
}

// PerformContext validates both operands, computes op, appends the result
// to the history and notifies observers in registration order. Validation
// and operation errors are returned unchanged and leave the history
// untouched. An observer error is returned together with the calculation,
// which by then is already recorded.
func (c *Calculator) PerformContext(ctx context.Context, op string, a, b any) (*calculation.Calculation, error) {
	ctx, span := tracer.Start(ctx, "calculator.perform",
		trace.WithAttributes(attribute.String("calculator.operation", op)),
	)
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("operation", op))

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		errorCounter.Add(ctx, 1, attrs)
		return err
	}

	x, err := validation.ValidateNumber(a, c.cfg)
	if err != nil {
		return nil, fail(err)
	}
	y, err := validation.ValidateNumber(b, c.cfg)
	if err != nil {
		return nil, fail(err)
	}

	start := time.Now()
	calc, err := calculation.NewAt(op, x, y, c.clock())
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms
	if err != nil {
		return nil, fail(err)
	}

	size := c.record(calc)

	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	if f, _ := calc.Result().Float64(); !math.IsInf(f, 0) {
		resultGauge.Record(ctx, f, attrs)
	}
	historySizeGauge.Set(float64(size))
	historyRecordsTotal.Inc()

	span.SetAttributes(
		attribute.String("calculator.operand1", calc.Operand1().String()),
		attribute.String("calculator.operand2", calc.Operand2().String()),
		attribute.String("calculator.result", calc.Result().String()),
	)

	if err := c.observers.Notify(calc); err != nil {
		return calc, fail(fmt.Errorf("notify observers: %w", err))
	}

	span.SetStatus(codes.Ok, "")
	return calc, nil
}

// record appends calc, evicting the oldest entries beyond MaxHistorySize,
// and returns the new history length.
func (c *Calculator) record(calc *calculation.Calculation) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	limit := c.cfg.MaxHistorySize

	c.undo = append(c.undo, snapshot(c.history))
	if limit > 0 && len(c.undo) > limit {
		c.undo = c.undo[len(c.undo)-limit:]
	}
	c.redo = nil

	c.history = append(c.history, calc)
	if limit > 0 && len(c.history) > limit {
		c.history = append([]*calculation.Calculation(nil), c.history[len(c.history)-limit:]...)
	}
	return len(c.history)
}

// History returns a copy of the recorded calculations, oldest first.
func (c *Calculator) History() []*calculation.Calculation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.history).calculations
}

// ClearHistory empties the history and both undo and redo stacks.
func (c *Calculator) ClearHistory() {
	c.mu.Lock()
	c.history = nil
	c.undo = nil
	c.redo = nil
	c.mu.Unlock()

	historySizeGauge.Set(0)
	c.logger.Info("history cleared")
}

// Undo restores the history as it was before the last calculation.
func (c *Calculator) Undo() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.undo) == 0 {
		return ErrNothingToUndo
	}
	c.redo = append(c.redo, snapshot(c.history))
	c.history = c.undo[len(c.undo)-1].restore()
	c.undo = c.undo[:len(c.undo)-1]
	historySizeGauge.Set(float64(len(c.history)))
	return nil
}

// Redo reapplies the last undone calculation.
func (c *Calculator) Redo() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.redo) == 0 {
		return ErrNothingToRedo
	}
	c.undo = append(c.undo, snapshot(c.history))
	c.history = c.redo[len(c.redo)-1].restore()
	c.redo = c.redo[:len(c.redo)-1]
	historySizeGauge.Set(float64(len(c.history)))
	return nil
}
