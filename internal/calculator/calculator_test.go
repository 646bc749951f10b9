package calculator

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-decimal-calculator/internal/calculation"
	"go-decimal-calculator/internal/config"
	"go-decimal-calculator/internal/history"
	"go-decimal-calculator/internal/validation"
)

func testConfig() config.Calculator {
	cfg := config.Default().Calculator
	cfg.AutoSave = false
	return cfg
}

func newTestCalculator(t *testing.T, cfg config.Calculator, opts ...Option) (*Calculator, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	opts = append([]Option{WithFs(fs), WithLogger(zap.NewNop())}, opts...)
	calc, err := New(cfg, opts...)
	require.NoError(t, err)
	return calc, fs
}

type recordingObserver struct {
	name  string
	calls *[]string
	err   error
}

func (o *recordingObserver) Update(c *calculation.Calculation) error {
	*o.calls = append(*o.calls, o.name+":"+c.Result().String())
	return o.err
}

func TestPerformRecordsCalculation(t *testing.T) {
	calc, _ := newTestCalculator(t, testConfig())

	c, err := calc.Perform("Addition", "2", 3)
	require.NoError(t, err)
	assert.Equal(t, "5", c.Result().String())

	hist := calc.History()
	require.Len(t, hist, 1)
	assert.True(t, hist[0].Equal(c))
}

func TestPerformUsesClock(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	calc, _ := newTestCalculator(t, testConfig(), WithClock(func() time.Time { return at }))

	c, err := calc.Perform("Multiplication", 4, 2)
	require.NoError(t, err)
	assert.True(t, at.Equal(c.Timestamp()))
}

func TestPerformValidationError(t *testing.T) {
	calc, _ := newTestCalculator(t, testConfig())

	_, err := calc.Perform("Addition", "abc", 1)
	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid number format: abc", err.Error())
	assert.Empty(t, calc.History())
}

func TestPerformOperationError(t *testing.T) {
	calc, _ := newTestCalculator(t, testConfig())

	_, err := calc.Perform("Division", 1, 0)
	var operr *calculation.OperationError
	require.ErrorAs(t, err, &operr)
	assert.ErrorIs(t, err, calculation.ErrDivisionByZero)

	_, err = calc.Perform("Modulo", 1, 2)
	assert.ErrorIs(t, err, calculation.ErrUnknownOperation)
	assert.Empty(t, calc.History())
}

func TestPerformNotifiesObserversInOrder(t *testing.T) {
	var calls []string
	first := &recordingObserver{name: "first", calls: &calls}
	second := &recordingObserver{name: "second", calls: &calls}

	calc, _ := newTestCalculator(t, testConfig(), WithObserver(first))
	calc.AddObserver(second)

	_, err := calc.Perform("Subtraction", 5, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"first:2", "second:2"}, calls)

	assert.True(t, calc.RemoveObserver(first))
	_, err = calc.Perform("Subtraction", 5, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"first:2", "second:2", "second:1"}, calls)
}

func TestPerformObserverErrorKeepsCalculation(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	failing := &recordingObserver{name: "failing", calls: &calls, err: boom}
	after := &recordingObserver{name: "after", calls: &calls}

	calc, _ := newTestCalculator(t, testConfig(), WithObserver(failing), WithObserver(after))

	c, err := calc.Perform("Addition", 1, 1)
	require.ErrorIs(t, err, boom)
	require.NotNil(t, c)
	assert.Equal(t, []string{"failing:2"}, calls)
	assert.Len(t, calc.History(), 1)
}

func TestPerformEvictsOldest(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHistorySize = 2
	calc, _ := newTestCalculator(t, cfg)

	for i := 1; i <= 3; i++ {
		_, err := calc.Perform("Addition", i, 0)
		require.NoError(t, err)
	}

	hist := calc.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "2", hist[0].Result().String())
	assert.Equal(t, "3", hist[1].Result().String())
}

func TestUndoRedo(t *testing.T) {
	calc, _ := newTestCalculator(t, testConfig())

	assert.ErrorIs(t, calc.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, calc.Redo(), ErrNothingToRedo)

	_, err := calc.Perform("Addition", 1, 1)
	require.NoError(t, err)
	_, err = calc.Perform("Addition", 2, 2)
	require.NoError(t, err)

	require.NoError(t, calc.Undo())
	assert.Len(t, calc.History(), 1)
	require.NoError(t, calc.Undo())
	assert.Empty(t, calc.History())
	assert.ErrorIs(t, calc.Undo(), ErrNothingToUndo)

	require.NoError(t, calc.Redo())
	require.NoError(t, calc.Redo())
	hist := calc.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "4", hist[1].Result().String())
	assert.ErrorIs(t, calc.Redo(), ErrNothingToRedo)
}

func TestPerformClearsRedo(t *testing.T) {
	calc, _ := newTestCalculator(t, testConfig())

	_, err := calc.Perform("Addition", 1, 1)
	require.NoError(t, err)
	require.NoError(t, calc.Undo())

	_, err = calc.Perform("Addition", 3, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, calc.Redo(), ErrNothingToRedo)
}

func TestClearHistory(t *testing.T) {
	calc, _ := newTestCalculator(t, testConfig())

	_, err := calc.Perform("Addition", 1, 1)
	require.NoError(t, err)
	calc.ClearHistory()

	assert.Empty(t, calc.History())
	assert.ErrorIs(t, calc.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, calc.Redo(), ErrNothingToRedo)
}

func TestHistoryReturnsCopy(t *testing.T) {
	calc, _ := newTestCalculator(t, testConfig())

	_, err := calc.Perform("Addition", 1, 1)
	require.NoError(t, err)

	hist := calc.History()
	hist[0] = nil
	assert.NotNil(t, calc.History()[0])
}

func TestAutoSaveObserverWritesHistory(t *testing.T) {
	cfg := testConfig()
	cfg.AutoSave = true
	calc, fs := newTestCalculator(t, cfg)

	obs, err := history.NewAutoSaveObserver(calc, zap.NewNop())
	require.NoError(t, err)
	calc.AddObserver(obs)

	_, err = calc.Perform("Power", 2, 10)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, cfg.HistoryFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"result": "1024"`)
}

func TestPerformConcurrent(t *testing.T) {
	calc, _ := newTestCalculator(t, testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := calc.Perform("Addition", n, 1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, calc.History(), 50)
}
