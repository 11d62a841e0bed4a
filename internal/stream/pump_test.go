package stream

import (
	"context"
	"testing"
	"time"

	"github.com/cwbudde/algo-neurofeedback/internal/audio"
)

type fullGain struct{}

func (fullGain) Level(float64) float64 { return 1 }

func TestPump_FrameShape(t *testing.T) {
	p := NewPump(audio.NewTone(440, 48000, fullGain{}, nil))
	if p.FrameLen() != 960 {
		t.Fatalf("frame len = %d, want 960", p.FrameLen())
	}

	a, scratch := p.Frame(nil)
	b, _ := p.Frame(scratch)
	if len(a) != 960 || len(b) != 960 {
		t.Fatalf("frames %d/%d", len(a), len(b))
	}
	if &a[0] == &b[0] {
		t.Fatal("frames must not share storage")
	}
}

func TestPump_RunClosesOutput(t *testing.T) {
	p := NewPump(audio.NewTone(440, 48000, fullGain{}, nil))
	out := make(chan []int16, 100)
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	p.Run(ctx, out)

	n := 0
	for range out {
		n++
	}
	if n < 2 || n > 7 {
		t.Fatalf("frames in 120ms = %d", n)
	}
}
