package breathing

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harrylevesque/stillwater/internal/models"
)

const subscriberBuffer = 16

// Controller alternates between inhale and exhale at a fixed cadence while
// active. It owns at most one ticker and one goroutine at a time.
type Controller struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	logger   *zap.Logger

	active bool
	phase  models.Phase
	flips  uint64
	closed bool

	// stopCh belongs to the running tick loop and is nil while idle. doneCh
	// is closed when the most recent tick loop has exited.
	stopCh chan struct{}
	doneCh chan struct{}

	subs   map[int]chan models.BreathingState
	nextID int
}

// Option configures a Controller.
type Option func(*Controller)

func WithClock(c Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(ctl *Controller) {
		if d > 0 {
			ctl.interval = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(ctl *Controller) {
		if l != nil {
			ctl.logger = l
		}
	}
}

// NewController returns an idle controller in the inhale phase.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		clock:    SystemClock,
		interval: models.TickInterval,
		logger:   zap.NewNop(),
		phase:    models.Inhale,
		subs:     make(map[int]chan models.BreathingState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start activates the controller. Calling it while active, or after Close,
// does nothing.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active || c.closed {
		return
	}
	c.active = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	go c.run(c.clock.NewTicker(c.interval), c.stopCh, c.doneCh)

	c.logger.Debug("breathing started", zap.Stringer("phase", c.phase))
	c.publishLocked()
}

// Stop deactivates the controller and waits for the tick loop to exit. No
// phase flip happens after Stop returns.
func (c *Controller) Stop() {
	c.mu.Lock()
	done := c.doneCh
	if !c.active {
		c.mu.Unlock()
		if done != nil {
			<-done
		}
		return
	}
	c.active = false
	close(c.stopCh)
	c.stopCh = nil

	c.logger.Debug("breathing stopped", zap.Stringer("phase", c.phase), zap.Uint64("flips", c.flips))
	c.publishLocked()
	c.mu.Unlock()

	<-done
}

// Close stops the controller and closes every subscription. The controller
// cannot be restarted afterwards.
func (c *Controller) Close() {
	// closed is set before stopping so a concurrent Start cannot arm a new
	// ticker while Stop waits for the loop to exit.
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.Stop()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

// State returns a snapshot of the controller.
func (c *Controller) State() models.BreathingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe returns a channel receiving every state change and a func that
// cancels the subscription. Updates are dropped for a subscriber whose buffer
// is full. On a closed controller the channel is already closed.
func (c *Controller) Subscribe() (<-chan models.BreathingState, func()) {
	_, ch, cancel := c.SubscribeState()
	return ch, cancel
}

// SubscribeState is Subscribe that also returns the state current at the
// moment of subscribing. The channel only carries changes after it.
func (c *Controller) SubscribeState() (models.BreathingState, <-chan models.BreathingState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.stateLocked()
	ch := make(chan models.BreathingState, subscriberBuffer)
	if c.closed {
		close(ch)
		return snap, ch, func() {}
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = ch

	var once sync.Once
	return snap, ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				close(sub)
				delete(c.subs, id)
			}
		})
	}
}

func (c *Controller) run(t Ticker, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer t.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-t.C():
			c.tick(stopCh)
		}
	}
}

func (c *Controller) tick(stopCh chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Stop closes stopCh under mu, so a tick that lost the race is dropped here.
	select {
	case <-stopCh:
		return
	default:
	}
	c.phase = c.phase.Next()
	c.flips++
	c.logger.Debug("breathing phase flipped", zap.Stringer("phase", c.phase), zap.Uint64("flips", c.flips))
	c.publishLocked()
}

func (c *Controller) stateLocked() models.BreathingState {
	return models.BreathingState{Active: c.active, Phase: c.phase, Flips: c.flips}
}

func (c *Controller) publishLocked() {
	s := c.stateLocked()
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
		}
	}
}
