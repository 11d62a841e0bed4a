// Package keys turns raw terminal key presses into engine controls.
//
// Terminals report key presses, not releases, so holding space is
// recognised from the auto-repeat stream: the subject counts as engaged
// while space presses keep arriving within the hold timeout.
package keys

import (
	"errors"
	"sync"
	"time"
)

// DefaultHoldTimeout covers the initial auto-repeat delay of common
// terminals.
const DefaultHoldTimeout = 600 * time.Millisecond

const ctrlC = 0x03

var (
	// ErrUnsupported is returned on platforms without raw terminal input.
	ErrUnsupported = errors.New("keys: raw terminal input not supported on this platform")
	// ErrNotTerminal is returned when stdin is not a terminal.
	ErrNotTerminal = errors.New("keys: stdin is not a terminal")
)

// Handler receives the controls produced by key presses.
type Handler interface {
	SetEngaged(engaged bool)
	ToggleSession()
	Quit()
}

// Mapper converts key bytes into Handler calls.
type Mapper struct {
	handler Handler
	hold    time.Duration
	now     func() time.Time

	mu        sync.Mutex
	lastSpace time.Time
	holding   bool
	latched   bool
	engaged   bool
}

// NewMapper returns a mapper with the given hold timeout. A nil now uses
// time.Now.
func NewMapper(h Handler, hold time.Duration, now func() time.Time) *Mapper {
	if hold <= 0 {
		hold = DefaultHoldTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Mapper{handler: h, hold: hold, now: now}
}

// Key handles one byte of input.
func (m *Mapper) Key(b byte) {
	switch b {
	case ' ':
		m.mu.Lock()
		m.lastSpace = m.now()
		m.holding = true
		m.update()
		m.mu.Unlock()
	case 'l', 'L':
		m.mu.Lock()
		m.latched = !m.latched
		m.update()
		m.mu.Unlock()
	case 's', 'S':
		m.handler.ToggleSession()
	case 'q', 'Q', ctrlC:
		m.handler.Quit()
	}
}

// Tick releases a hold whose timeout has passed. Call it regularly.
func (m *Mapper) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holding && m.now().Sub(m.lastSpace) > m.hold {
		m.holding = false
		m.update()
	}
}

// Engaged returns the current engaged state.
func (m *Mapper) Engaged() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engaged
}

func (m *Mapper) update() {
	engaged := m.holding || m.latched
	if engaged != m.engaged {
		m.engaged = engaged
		m.handler.SetEngaged(engaged)
	}
}
