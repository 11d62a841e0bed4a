//go:build portaudio && !headless

package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/pion/logging"
)

// Backend names the compiled-in output implementation.
const Backend = "portaudio"

const framesPerBuffer = 512

type portaudioPlayer struct {
	tone *Tone
	log  logging.LeveledLogger

	mu     sync.Mutex
	stream *portaudio.Stream
}

// NewPlayer opens the default output device through PortAudio.
func NewPlayer(tone *Tone, log logging.LeveledLogger) (Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	p := &portaudioPlayer{tone: tone, log: log}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(tone.SampleRate()), framesPerBuffer, p.callback)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	p.stream = stream
	return p, nil
}

func (p *portaudioPlayer) callback(out []float32) {
	p.tone.Render(out)
}

func (p *portaudioPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrNoDevice
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("audio: start stream: %w", err)
	}
	p.log.Debugf("portaudio output started at %d Hz", p.tone.SampleRate())
	return nil
}

func (p *portaudioPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	_ = p.stream.Stop()
	err := p.stream.Close()
	p.stream = nil
	if terr := portaudio.Terminate(); terr != nil && err == nil {
		err = terr
	}
	return err
}
