package engine

import (
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-neurofeedback/dsp/signal"
	"github.com/cwbudde/algo-neurofeedback/internal/testutil"
)

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(ApplyOptions(opts...))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestPipeline_PublishCadence(t *testing.T) {
	p := newTestPipeline(t, WithNoise(signal.NewSeededNoise(1)))

	var times []float64
	for range 500 {
		if s := p.Step(false); s != nil {
			times = append(times, s.SimTime)
		}
	}

	want := []float64{0.252, 0.5, 0.752, 1.0, 1.252, 1.5, 1.752, 2.0}
	if len(times) != len(want) {
		t.Fatalf("published at %v, want %d snapshots", times, len(want))
	}
	for i := range want {
		if math.Abs(times[i]-want[i]) > 1e-9 {
			t.Fatalf("snapshot %d at %v, want %v", i, times[i], want[i])
		}
	}
}

func TestPipeline_SnapshotShape(t *testing.T) {
	p := newTestPipeline(t, WithNoise(signal.NewSeededNoise(2)))
	s := p.Advance(500, true)
	if s == nil {
		t.Fatal("no snapshot")
	}

	if len(s.RawTail) != 50 || len(s.Frame) != 16 {
		t.Fatalf("tail=%d frame=%d", len(s.RawTail), len(s.Frame))
	}
	if s.RawTail[49] != s.Frame[0] {
		t.Fatalf("tail newest %v != primary raw %v", s.RawTail[49], s.Frame[0])
	}
	if s.Samples != 500 || s.SimTime != 2 {
		t.Fatalf("samples=%d simTime=%v", s.Samples, s.SimTime)
	}
	testutil.RequireInRange(t, "coherence", s.Coherence, 0, 1)
	testutil.RequireInRange(t, "output", s.OutputLevel, 0, 1)
	testutil.RequireInRange(t, "target", s.TargetLevel, 0, 1)
	if s.BandPower < 0 || s.ComputeLatency < 0 {
		t.Fatalf("power=%v latency=%v", s.BandPower, s.ComputeLatency)
	}
	if !s.Engaged {
		t.Fatal("engaged flag lost")
	}
}

// Independent noise on both probes: no coherence and power below the
// reward floor.
func TestPipeline_DisengagedHasNoCoherence(t *testing.T) {
	p := newTestPipeline(t, WithNoise(signal.NewSeededNoise(42)))
	s := p.Advance(500, false)
	if s == nil {
		t.Fatal("no snapshot")
	}

	if math.Abs(s.Correlation) > 0.6 {
		t.Fatalf("correlation = %v, want near 0", s.Correlation)
	}
	if s.BandPower > 0.2 {
		t.Fatalf("band power = %v, want below noise floor", s.BandPower)
	}
	if s.TargetLevel != 0 {
		t.Fatalf("target level = %v, want 0", s.TargetLevel)
	}
}

func TestPipeline_DisengagedCoherenceAveragesNearZero(t *testing.T) {
	p := newTestPipeline(t, WithNoise(signal.NewSeededNoise(7)))
	p.Advance(250, false)

	var sumR, sumC float64
	n := 0
	for range 60 * 250 {
		if s := p.Step(false); s != nil {
			sumR += s.Correlation
			sumC += s.Coherence
			n++
		}
	}
	if math.Abs(sumR/float64(n)) > 0.1 {
		t.Fatalf("mean correlation = %v, want ~0", sumR/float64(n))
	}
	if sumC/float64(n) > 0.25 {
		t.Fatalf("mean coherence = %v, want < 0.25", sumC/float64(n))
	}
}

// A shared 10 Hz rhythm on both probes: coherence near 1 and power well
// above the disengaged baseline.
func TestPipeline_EngagedIsCoherent(t *testing.T) {
	rest := newTestPipeline(t, WithNoise(signal.NewSeededNoise(42))).Advance(500, false)
	p := newTestPipeline(t, WithNoise(signal.NewSeededNoise(42)))
	s := p.Advance(500, true)

	if s.Coherence <= 0.9 {
		t.Fatalf("coherence = %v, want > 0.9", s.Coherence)
	}
	if s.BandPower <= 5*rest.BandPower || s.BandPower < 1 {
		t.Fatalf("band power = %v, rest = %v", s.BandPower, rest.BandPower)
	}
	if s.TargetLevel < 0.6 {
		t.Fatalf("target level = %v, want high reward", s.TargetLevel)
	}
}

func TestPipeline_GainFollowsEngagement(t *testing.T) {
	p := newTestPipeline(t, WithNoise(signal.NewSeededNoise(3)))
	ctrl := p.Controller()

	p.Advance(500, true)
	high := ctrl.Level(p.SimTime())
	p.Advance(500, false)
	low := ctrl.Level(p.SimTime())

	if high < 0.6 || low > 0.05 {
		t.Fatalf("gain engaged=%v rest=%v", high, low)
	}
	if ctrl.LastCommand() > p.SimTime() || p.SimTime()-ctrl.LastCommand() > 1.0/60+1e-9 {
		t.Fatalf("last command %v too old at %v", ctrl.LastCommand(), p.SimTime())
	}
}

func TestPipeline_EngagedSampledOncePerTick(t *testing.T) {
	p := newTestPipeline(t, WithNoise(testutil.Silent()), WithPublishInterval(4*time.Millisecond))

	for i := range 1000 {
		engaged := i%3 != 0
		s := p.Step(engaged)
		if s == nil {
			t.Fatalf("step %d: no snapshot", i)
		}
		if s.Engaged != engaged {
			t.Fatalf("step %d: snapshot engaged=%v, want %v", i, s.Engaged, engaged)
		}
		if s.Frame[0] != s.Frame[4] {
			t.Fatalf("step %d: probes disagree %v vs %v", i, s.Frame[0], s.Frame[4])
		}
		if !engaged && s.Frame[0] != 0 {
			t.Fatalf("step %d: disengaged probe carries %v", i, s.Frame[0])
		}
		for ch := 1; ch < 16; ch++ {
			if ch != 4 && s.Frame[ch] != 0 {
				t.Fatalf("step %d: background channel %d = %v", i, ch, s.Frame[ch])
			}
		}
	}
}

func TestPipeline_ResetIsFull(t *testing.T) {
	p := newTestPipeline(t, WithNoise(signal.NewSeededNoise(5)))
	p.Advance(400, true)
	p.Reset()

	if p.SimTime() != 0 || p.Samples() != 0 {
		t.Fatalf("time not reset: %v / %d", p.SimTime(), p.Samples())
	}
	if p.Controller().Level(0) != 0 || p.Controller().Target() != 0 {
		t.Fatal("gain not reset")
	}
	for _, pr := range p.probes {
		if pr.filter.State() != [4]float64{} {
			t.Fatalf("filter %d state %v", pr.channel, pr.filter.State())
		}
	}

	s := p.Advance(63, false)
	if s == nil || s.Samples != 63 {
		t.Fatalf("first snapshot after reset = %+v", s)
	}
}

func TestPipeline_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewPipeline(ApplyOptions(WithSampleRate(15))); err == nil {
		t.Fatal("expected error for 10 Hz band at 15 Hz sampling")
	}
}

func BenchmarkPipelineStep(b *testing.B) {
	p, err := NewPipeline(ApplyOptions(WithNoise(signal.NewSeededNoise(1))))
	if err != nil {
		b.Fatal(err)
	}
	engaged := false
	for b.Loop() {
		p.Step(engaged)
		engaged = !engaged
	}
}

func TestPipeline_CommandClockStampsGain(t *testing.T) {
	p := newTestPipeline(t, WithNoise(signal.NewSeededNoise(3)))

	wall := 0.0
	p.SetCommandClock(func() float64 { return wall })

	// Every step runs at wall time 0: the envelope may change target but
	// must not move on the command timeline.
	s := p.Advance(500, true)
	if p.Controller().LastCommand() != 0 {
		t.Fatalf("last command stamped at %v, want wall time 0", p.Controller().LastCommand())
	}
	if p.Controller().Level(0) != 0 || s.OutputLevel != 0 {
		t.Fatalf("level moved without wall time: level=%v output=%v", p.Controller().Level(0), s.OutputLevel)
	}
	if s.TargetLevel < 0.6 {
		t.Fatalf("target = %v, want high reward", s.TargetLevel)
	}

	// One second later the first ramp has long finished, so commands at
	// wall time 1 all start from its target.
	prev := p.Controller().Target()
	wall = 1
	s = p.Advance(63, true)
	if p.Controller().LastCommand() != 1 {
		t.Fatalf("last command = %v, want 1", p.Controller().LastCommand())
	}
	if s.OutputLevel != prev {
		t.Fatalf("output = %v, want %v at the command instant", s.OutputLevel, prev)
	}
	if got := p.Controller().Level(1 + p.Config().RampTime); math.Abs(got-p.Controller().Target()) > 1e-12 {
		t.Fatalf("level after ramp = %v, want %v", got, p.Controller().Target())
	}

	p.SetCommandClock(nil)
	p.Advance(63, true)
	if got, want := p.Controller().LastCommand(), p.SimTime(); math.Abs(got-want) > 0.02 {
		t.Fatalf("without a clock commands use simulated time: %v vs %v", got, want)
	}
}
