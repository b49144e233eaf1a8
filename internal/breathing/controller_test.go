package breathing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harrylevesque/stillwater/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func nextState(t *testing.T, ch <-chan models.BreathingState) models.BreathingState {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state change")
	}
	return models.BreathingState{}
}

func assertQuiet(t *testing.T, ch <-chan models.BreathingState) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if ok {
			t.Fatalf("unexpected state change: %+v", s)
		}
	default:
	}
}

func newTestController(t *testing.T) (*Controller, *fakeClock, <-chan models.BreathingState) {
	t.Helper()
	clock := newFakeClock()
	c := NewController(WithClock(clock))
	t.Cleanup(c.Close)
	ch, cancel := c.Subscribe()
	t.Cleanup(cancel)
	return c, clock, ch
}

func TestNewControllerIsIdleInhale(t *testing.T) {
	c := NewController()
	defer c.Close()

	assert.Equal(t, models.BreathingState{Active: false, Phase: models.Inhale}, c.State())
}

func TestScenarioStartFlipStop(t *testing.T) {
	c, clock, ch := newTestController(t)

	c.Start()
	assert.Equal(t, models.BreathingState{Active: true, Phase: models.Inhale}, nextState(t, ch))

	clock.Advance(4000 * time.Millisecond)
	assert.Equal(t, models.Exhale, nextState(t, ch).Phase)

	clock.Advance(4000 * time.Millisecond)
	assert.Equal(t, models.Inhale, nextState(t, ch).Phase)

	clock.Advance(2000 * time.Millisecond)
	assertQuiet(t, ch)

	c.Stop()
	assert.Equal(t, models.BreathingState{Active: false, Phase: models.Inhale, Flips: 2}, nextState(t, ch))

	clock.Advance(2000 * time.Millisecond)
	clock.Advance(time.Minute)
	assertQuiet(t, ch)
	assert.Equal(t, models.BreathingState{Active: false, Phase: models.Inhale, Flips: 2}, c.State())
}

func TestFlipsAlternateStrictly(t *testing.T) {
	c, clock, ch := newTestController(t)
	c.Start()
	nextState(t, ch)

	want := models.Exhale
	for i := 1; i <= 6; i++ {
		clock.Advance(models.TickInterval)
		s := nextState(t, ch)
		assert.Equal(t, want, s.Phase, "flip %d", i)
		assert.Equal(t, uint64(i), s.Flips)
		want = want.Next()
	}
}

func TestOneFlipPerInterval(t *testing.T) {
	c, clock, ch := newTestController(t)
	c.Start()
	nextState(t, ch)

	clock.Advance(models.TickInterval - time.Millisecond)
	assertQuiet(t, ch)
	clock.Advance(time.Millisecond)
	assert.Equal(t, uint64(1), nextState(t, ch).Flips)
}

func TestRestartResumesFromCurrentPhase(t *testing.T) {
	c, clock, ch := newTestController(t)
	c.Start()
	nextState(t, ch)
	clock.Advance(models.TickInterval)
	require.Equal(t, models.Exhale, nextState(t, ch).Phase)

	c.Stop()
	nextState(t, ch)

	c.Start()
	assert.Equal(t, models.BreathingState{Active: true, Phase: models.Exhale, Flips: 1}, nextState(t, ch))
	clock.Advance(models.TickInterval)
	assert.Equal(t, models.Inhale, nextState(t, ch).Phase)
}

func TestStartIsIdempotent(t *testing.T) {
	c, clock, ch := newTestController(t)
	c.Start()
	c.Start()
	nextState(t, ch)
	assertQuiet(t, ch)
	assert.Equal(t, 1, clock.liveTickers())

	clock.Advance(models.TickInterval)
	assert.Equal(t, uint64(1), nextState(t, ch).Flips)
	assertQuiet(t, ch)
}

func TestStopIsIdempotent(t *testing.T) {
	c, clock, ch := newTestController(t)
	c.Stop()
	assertQuiet(t, ch)

	c.Start()
	nextState(t, ch)
	c.Stop()
	c.Stop()
	assert.False(t, nextState(t, ch).Active)
	assertQuiet(t, ch)
	assert.Equal(t, 0, clock.liveTickers())
}

func TestActiveFollowsLastCall(t *testing.T) {
	c := NewController(WithClock(newFakeClock()))
	defer c.Close()

	calls := []bool{true, true, false, true, false, false, true}
	for _, start := range calls {
		if start {
			c.Start()
		} else {
			c.Stop()
		}
		assert.Equal(t, start, c.State().Active)
	}
}

func TestCloseWhileActiveCancelsTimer(t *testing.T) {
	clock := newFakeClock()
	c := NewController(WithClock(clock))
	ch, _ := c.Subscribe()

	c.Start()
	nextState(t, ch)
	c.Close()

	assert.Equal(t, 0, clock.liveTickers())
	clock.Advance(time.Minute)
	assert.Equal(t, uint64(0), c.State().Flips)
	assert.False(t, c.State().Active)

	// drain the stop notification, then the channel must be closed
	for range ch {
	}
}

func TestStartDuringCloseDoesNotRearm(t *testing.T) {
	clock := newGateClock()
	c := NewController(WithClock(clock))

	c.Start()
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		c.Close()
	}()

	// Close is now waiting for the tick loop, which is stuck in Ticker.Stop.
	<-clock.entered
	c.Start()
	close(clock.release)
	<-closed

	assert.False(t, c.State().Active)
	assert.Equal(t, 0, clock.liveTickers())
	clock.Advance(3 * models.TickInterval)
	assert.Equal(t, uint64(0), c.State().Flips)
}

func TestStartAfterCloseIsNoop(t *testing.T) {
	clock := newFakeClock()
	c := NewController(WithClock(clock))
	c.Close()
	c.Close()

	c.Start()
	assert.False(t, c.State().Active)
	assert.Equal(t, 0, clock.liveTickers())

	ch, cancel := c.Subscribe()
	defer cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	c := NewController(WithClock(newFakeClock()))
	defer c.Close()

	ch, cancel := c.Subscribe()
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	c.Start()
	c.Stop()
}

func TestSubscribeStateSnapshotPrecedesUpdates(t *testing.T) {
	clock := newFakeClock()
	c := NewController(WithClock(clock))
	defer c.Close()

	c.Start()
	clock.Advance(models.TickInterval)
	require.Eventually(t, func() bool {
		return c.State().Flips == 1
	}, time.Second, time.Millisecond)

	snap, ch, cancel := c.SubscribeState()
	defer cancel()
	assert.Equal(t, models.BreathingState{Active: true, Phase: models.Exhale, Flips: 1}, snap)
	assertQuiet(t, ch)

	clock.Advance(models.TickInterval)
	assert.Equal(t, uint64(2), nextState(t, ch).Flips)
}

func TestSlowSubscriberDoesNotBlockTicks(t *testing.T) {
	clock := newFakeClock()
	c := NewController(WithClock(clock))
	defer c.Close()
	_, cancel := c.Subscribe()
	defer cancel()

	c.Start()
	for i := 0; i < subscriberBuffer*2; i++ {
		clock.Advance(models.TickInterval)
	}
	require.Eventually(t, func() bool {
		return c.State().Flips == subscriberBuffer*2
	}, time.Second, time.Millisecond)
	c.Stop()
	assert.Equal(t, uint64(subscriberBuffer*2), c.State().Flips)
}

func TestSystemClockStopsFlipping(t *testing.T) {
	c := NewController(WithInterval(5 * time.Millisecond))
	defer c.Close()
	ch, cancel := c.Subscribe()
	defer cancel()

	c.Start()
	nextState(t, ch)
	nextState(t, ch)
	nextState(t, ch)

	c.Stop()
	flips := c.State().Flips
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, flips, c.State().Flips)
}
