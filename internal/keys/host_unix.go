//go:build unix

package keys

import (
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

const pollInterval = 5 * time.Millisecond

// Host reads raw stdin and feeds bytes into a Mapper.
type Host struct {
	mapper *Mapper

	fd       int
	oldState *term.State
	nonblock bool

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
}

// NewHost creates a host reading stdin into m.
func NewHost(m *Mapper) *Host {
	return &Host{
		mapper: m,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start puts stdin into raw non-blocking mode and begins reading. Call
// Stop to restore the terminal.
func (h *Host) Start() error {
	h.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(h.fd) {
		close(h.done)
		return ErrNotTerminal
	}

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		close(h.done)
		return err
	}
	h.oldState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		_ = term.Restore(h.fd, h.oldState)
		h.oldState = nil
		close(h.done)
		return err
	}
	h.nonblock = true

	go h.read()
	return nil
}

func (h *Host) read() {
	defer close(h.done)
	buf := make([]byte, 16)

	for {
		select {
		case <-h.stopCh:
			return
		default:
		}

		n, err := syscall.Read(h.fd, buf)
		for _, b := range buf[:max(n, 0)] {
			h.mapper.Key(b)
		}
		h.mapper.Tick()

		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || n == 0 {
			time.Sleep(pollInterval)
			continue
		}
		if err != nil {
			return
		}
	}
}

// Stop terminates the reader and restores stdin.
func (h *Host) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblock {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblock = false
	}
	if h.oldState != nil {
		_ = term.Restore(h.fd, h.oldState)
		h.oldState = nil
	}
}
