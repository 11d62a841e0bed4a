package stream

import (
	"context"
	"time"

	"github.com/cwbudde/algo-neurofeedback/internal/audio"
)

// FrameDuration is the length of one PCM frame.
const FrameDuration = 20 * time.Millisecond

// Pump renders tone frames at real-time pace.
type Pump struct {
	tone     *audio.Tone
	frameLen int
}

// NewPump returns a pump producing 20 ms mono frames of tone.
func NewPump(tone *audio.Tone) *Pump {
	return &Pump{
		tone:     tone,
		frameLen: tone.SampleRate() * int(FrameDuration) / int(time.Second),
	}
}

// FrameLen returns the number of samples per frame.
func (p *Pump) FrameLen() int {
	return p.frameLen
}

// Frame renders one frame into a freshly allocated slice.
func (p *Pump) Frame(scratch []float32) ([]int16, []float32) {
	frame := make([]int16, p.frameLen)
	scratch = p.tone.RenderInt16(frame, scratch)
	return frame, scratch
}

// Run sends one frame per FrameDuration to out until ctx ends, then closes
// out. A frame is skipped rather than queued when out is full.
func (p *Pump) Run(ctx context.Context, out chan<- []int16) {
	defer close(out)

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	var scratch []float32
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var frame []int16
		frame, scratch = p.Frame(scratch)
		select {
		case out <- frame:
		default:
		}
	}
}
