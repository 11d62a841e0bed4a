//go:build headless

package audio

import (
	"sync"
	"time"

	"github.com/pion/logging"
)

// Backend names the compiled-in output implementation.
const Backend = "headless"

// headlessPlayer pulls the tone at real-time pace and discards it.
type headlessPlayer struct {
	tone *Tone
	log  logging.LeveledLogger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewPlayer returns a player with no device.
func NewPlayer(tone *Tone, log logging.LeveledLogger) (Player, error) {
	return &headlessPlayer{tone: tone, log: log}, nil
}

func (p *headlessPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		return nil
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)
	p.log.Debug("headless output started")
	return nil
}

func (p *headlessPlayer) run(stop, done chan struct{}) {
	defer close(done)

	const period = 20 * time.Millisecond
	buf := make([]float32, p.tone.SampleRate()*int(period)/int(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.tone.Render(buf)
		}
	}
}

func (p *headlessPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop == nil {
		return nil
	}
	close(p.stop)
	<-p.done
	p.stop = nil
	return nil
}
