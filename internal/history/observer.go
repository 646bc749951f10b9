// Package history defines the observers notified each time a calculation is
// recorded, and the ordered list that delivers those notifications.
package history

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"go-decimal-calculator/internal/calculation"
	"go-decimal-calculator/internal/config"
	"go-decimal-calculator/internal/observability"
)

// ErrNilCalculator is returned when an AutoSaveObserver is built without a
// calculator to save.
var ErrNilCalculator = errors.New("history: auto-save observer requires a calculator")

// Observer reacts to a newly recorded calculation. It is called
// synchronously; a returned error stops delivery to later observers.
type Observer interface {
	Update(c *calculation.Calculation) error
}

// Saver is the part of a calculator the auto-save observer depends on.
type Saver interface {
	Config() config.Calculator
	SaveHistory() error
}

// mustCalculation panics on a nil calculation. Notifying without one is a
// caller bug, not a recoverable condition.
func mustCalculation(c *calculation.Calculation) {
	if c == nil {
		panic("history: observer notified with a nil calculation")
	}
}

// LoggingObserver writes one Info entry per calculation.
type LoggingObserver struct {
	logger *zap.Logger
}

// NewLoggingObserver logs through logger, or observability.Logger when
// logger is nil.
func NewLoggingObserver(logger *zap.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) Update(c *calculation.Calculation) error {
	mustCalculation(c)

	msg := fmt.Sprintf("Calculation performed: %s (%s, %s) = %s",
		c.Operation(), c.Operand1(), c.Operand2(), c.Result())

	loggerOr(o.logger).Info(msg,
		zap.String("operation", string(c.Operation())),
		zap.Stringer("operand1", c.Operand1()),
		zap.Stringer("operand2", c.Operand2()),
		zap.Stringer("result", c.Result()),
	)
	return nil
}

// AutoSaveObserver persists history after every calculation while the
// calculator's AutoSave setting is on.
type AutoSaveObserver struct {
	calculator Saver
	logger     *zap.Logger
}

func NewAutoSaveObserver(calculator Saver, logger *zap.Logger) (*AutoSaveObserver, error) {
	if isNil(calculator) {
		return nil, ErrNilCalculator
	}
	return &AutoSaveObserver{calculator: calculator, logger: logger}, nil
}

func (o *AutoSaveObserver) Update(c *calculation.Calculation) error {
	mustCalculation(c)

	if !o.calculator.Config().AutoSave {
		return nil
	}
	if err := o.calculator.SaveHistory(); err != nil {
		return fmt.Errorf("auto-save history: %w", err)
	}
	loggerOr(o.logger).Info("History auto-saved")
	return nil
}

func loggerOr(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	return observability.Logger
}

// isNil catches typed nil pointers stored in the interface as well.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
