package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pion/logging"
)

var (
	// ErrAlreadyRunning is returned by Start on a running loop.
	ErrAlreadyRunning = errors.New("engine: loop already running")
	// ErrNotRunning is returned by Stop on an idle loop.
	ErrNotRunning = errors.New("engine: loop not running")
)

// fadeMargin is added to the ramp time before an output collaborator may
// tear down after Stop.
const fadeMargin = 50 * time.Millisecond

// State is the loop lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Loop drives a Pipeline in real time.
//
// Start, Stop and the accessors may be called from any goroutine. The
// pipeline itself is only touched by the driver goroutine while running
// and by Start/Stop while idle.
type Loop struct {
	cfg      Config
	log      logging.LeveledLogger
	pipeline *Pipeline

	mu     sync.Mutex
	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	engaged atomic.Bool
	latest  atomic.Pointer[Snapshot]
	updates chan struct{}
	simNow  atomic.Uint64
	origin  atomic.Int64
	session atomic.Pointer[string]
}

// NewLoop builds an idle loop.
func NewLoop(opts ...Option) (*Loop, error) {
	cfg := ApplyOptions(opts...)
	p, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}

	l := &Loop{
		cfg:      cfg,
		log:      cfg.logger(),
		pipeline: p,
		updates:  make(chan struct{}, 1),
	}
	l.origin.Store(cfg.Clock().UnixNano())
	p.SetCommandClock(l.Clock)
	empty := ""
	l.session.Store(&empty)
	return l, nil
}

// Config returns the loop configuration.
func (l *Loop) Config() Config {
	return l.cfg
}

// Start performs a full reset and begins driving ticks. The driver stops
// when ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.State() == StateRunning {
		return ErrAlreadyRunning
	}
	if l.done != nil {
		<-l.done
	}

	id := uuid.NewString()
	l.pipeline.Reset()
	l.pipeline.sessionID = id
	l.session.Store(&id)
	l.latest.Store(nil)
	l.simNow.Store(0)
	select {
	case <-l.updates:
	default:
	}

	now := l.cfg.Clock()
	l.origin.Store(now.UnixNano())

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.state.Store(int32(StateRunning))

	go l.run(runCtx, NewScheduler(l.cfg.SampleRate, now), l.done)

	l.log.Infof("session %s started at %g Hz", id, l.cfg.SampleRate)
	return nil
}

// Stop halts the driver between ticks and waits for it to exit. The
// driver returns the loop to Idle and fades the gain envelope to zero on
// the session clock, whether it ends through Stop or through the context
// passed to Start.
func (l *Loop) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.State() != StateRunning {
		return ErrNotRunning
	}

	l.cancel()
	<-l.done
	return nil
}

// SetRunning starts or stops the loop to match running. It is a no-op when
// the loop is already in the requested state.
func (l *Loop) SetRunning(ctx context.Context, running bool) error {
	var err error
	if running {
		err = l.Start(ctx)
		if errors.Is(err, ErrAlreadyRunning) {
			return nil
		}
		return err
	}
	err = l.Stop()
	if errors.Is(err, ErrNotRunning) {
		return nil
	}
	return err
}

// State returns the lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// SessionID returns the ID of the current or last session, or "" before
// the first Start.
func (l *Loop) SessionID() string {
	return *l.session.Load()
}

// SetEngaged sets the engaged flag read once per tick.
func (l *Loop) SetEngaged(engaged bool) {
	l.engaged.Store(engaged)
}

// Engaged returns the engaged flag.
func (l *Loop) Engaged() bool {
	return l.engaged.Load()
}

// Latest returns the most recent snapshot, or nil if none has been
// published this session.
func (l *Loop) Latest() *Snapshot {
	return l.latest.Load()
}

// Updates receives a value after each publish. Notifications coalesce:
// a slow reader sees one pending signal and reads Latest.
func (l *Loop) Updates() <-chan struct{} {
	return l.updates
}

// Now returns the simulated time of the last processed sample.
func (l *Loop) Now() float64 {
	return math.Float64frombits(l.simNow.Load())
}

// Clock returns wall-clock seconds since the current session started.
// While running it leads Now by at most one wake interval, or by the
// whole stall during a catch-up. Gain commands are stamped on this clock
// and audio output evaluates the envelope on it.
func (l *Loop) Clock() float64 {
	return l.cfg.Clock().Sub(time.Unix(0, l.origin.Load())).Seconds()
}

// Level returns the gain envelope at session time t. It is safe to call
// from an audio callback.
func (l *Loop) Level(t float64) float64 {
	return l.pipeline.Controller().Level(t)
}

// FadeOutDelay is how long an output collaborator should keep playing
// after Stop before closing.
func (l *Loop) FadeOutDelay() time.Duration {
	return time.Duration(l.cfg.RampTime*float64(time.Second)) + fadeMargin
}

func (l *Loop) run(ctx context.Context, sched *Scheduler, done chan struct{}) {
	defer func() {
		l.pipeline.Controller().SetTarget(0, l.Clock())
		l.state.Store(int32(StateIdle))
		l.log.Infof("session %s stopped after %.3fs", l.SessionID(), l.Now())
		close(done)
	}()

	ticker := time.NewTicker(l.cfg.WakeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		l.tick(sched)
	}
}

func (l *Loop) tick(sched *Scheduler) {
	owed := sched.Owed(l.cfg.Clock())
	if owed == 0 {
		return
	}
	if owed > int64(l.cfg.CatchUpThreshold) {
		l.log.Warnf("catching up %d steps (%.3fs behind)", owed, float64(owed)/l.cfg.SampleRate)
	}

	for range owed {
		if s := l.pipeline.Step(l.engaged.Load()); s != nil {
			l.publish(s)
		}
	}
	sched.Done(owed)
	l.simNow.Store(math.Float64bits(l.pipeline.SimTime()))
}

func (l *Loop) publish(s *Snapshot) {
	l.latest.Store(s)
	select {
	case l.updates <- struct{}{}:
	default:
	}
}
