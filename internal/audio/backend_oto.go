//go:build !headless && !portaudio

package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/pion/logging"
)

// Backend names the compiled-in output implementation.
const Backend = "oto"

type otoPlayer struct {
	tone *Tone
	log  logging.LeveledLogger

	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	started bool

	scratch []float32
}

// NewPlayer opens the default output device through oto.
func NewPlayer(tone *Tone, log logging.LeveledLogger) (Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   tone.SampleRate(),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	<-ready

	p := &otoPlayer{tone: tone, log: log, ctx: ctx}
	p.player = ctx.NewPlayer(p)
	return p, nil
}

// Read renders float32 little-endian samples for oto.
func (p *otoPlayer) Read(buf []byte) (int, error) {
	n := len(buf) / 4
	if cap(p.scratch) < n {
		p.scratch = make([]float32, n)
	}
	samples := p.scratch[:n]
	p.tone.Render(samples)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return n * 4, nil
}

func (p *otoPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
		p.log.Debugf("oto output started at %d Hz", p.tone.SampleRate())
	}
	return nil
}

func (p *otoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	p.started = false
	if serr := p.ctx.Suspend(); serr != nil && err == nil {
		err = serr
	}
	return err
}
