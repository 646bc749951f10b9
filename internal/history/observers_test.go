package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-decimal-calculator/internal/calculation"
)

type recordingObserver struct {
	name  string
	calls *[]string
	err   error
}

func (r *recordingObserver) Update(c *calculation.Calculation) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestObserversNotifyInRegistrationOrder(t *testing.T) {
	var calls []string
	var obs Observers
	obs.Add(&recordingObserver{name: "first", calls: &calls})
	obs.Add(&recordingObserver{name: "second", calls: &calls})
	obs.Add(&recordingObserver{name: "third", calls: &calls})

	require.NoError(t, obs.Notify(sampleCalculation(t)))
	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestObserversNotifyStopsAtFirstError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	var obs Observers
	obs.Add(&recordingObserver{name: "first", calls: &calls})
	obs.Add(&recordingObserver{name: "failing", calls: &calls, err: boom})
	obs.Add(&recordingObserver{name: "skipped", calls: &calls})

	err := obs.Notify(sampleCalculation(t))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "failing"}, calls)
}

func TestObserversNotifyPropagatesPanic(t *testing.T) {
	var calls []string
	var obs Observers
	obs.Add(NewLoggingObserver(nil))
	obs.Add(&recordingObserver{name: "after", calls: &calls})

	assert.Panics(t, func() { _ = obs.Notify(nil) })
	assert.Empty(t, calls)
}

func TestObserversRemove(t *testing.T) {
	var calls []string
	first := &recordingObserver{name: "first", calls: &calls}
	second := &recordingObserver{name: "second", calls: &calls}

	var obs Observers
	obs.Add(first)
	obs.Add(second)

	assert.True(t, obs.Remove(first))
	assert.False(t, obs.Remove(first))
	assert.Equal(t, 1, obs.Len())

	require.NoError(t, obs.Notify(sampleCalculation(t)))
	assert.Equal(t, []string{"second"}, calls)
}

type observerFunc func(c *calculation.Calculation) error

func (f observerFunc) Update(c *calculation.Calculation) error { return f(c) }

type sliceObserver struct {
	seen []string
}

func (s sliceObserver) Update(c *calculation.Calculation) error { return nil }

func TestObserversRemoveNonComparable(t *testing.T) {
	calls := 0
	fn := observerFunc(func(*calculation.Calculation) error {
		calls++
		return nil
	})

	var obs Observers
	obs.Add(fn)
	obs.Add(sliceObserver{})

	assert.NotPanics(t, func() {
		assert.False(t, obs.Remove(fn))
		assert.False(t, obs.Remove(sliceObserver{}))
	})
	assert.Equal(t, 2, obs.Len())

	require.NoError(t, obs.Notify(sampleCalculation(t)))
	assert.Equal(t, 1, calls)
}
