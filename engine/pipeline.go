package engine

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-neurofeedback/dsp/buffer"
	"github.com/cwbudde/algo-neurofeedback/dsp/core"
	"github.com/cwbudde/algo-neurofeedback/dsp/filter/biquad"
	"github.com/cwbudde/algo-neurofeedback/dsp/filter/design"
	"github.com/cwbudde/algo-neurofeedback/dsp/gain"
	"github.com/cwbudde/algo-neurofeedback/dsp/signal"
	"github.com/cwbudde/algo-neurofeedback/measure/metrics"
)

// cadenceEpsilon absorbs rounding when comparing accumulated times.
const cadenceEpsilon = 1e-9

type probe struct {
	channel int
	filter  *biquad.Section
}

// Pipeline processes the montage one sample-step at a time. It is not safe
// for concurrent use: exactly one goroutine drives Step.
type Pipeline struct {
	cfg     Config
	coeffs  biquad.Coefficients
	source  *signal.Source
	probes  []probe
	primary int
	left    int
	right   int

	estimator *metrics.Estimator
	tail      *buffer.Ring
	control   *gain.Controller
	clock     func() float64

	sessionID string
	samples   int64
	frame     []float64

	controlPeriod float64
	publishPeriod float64
	nextControl   float64
	nextPublish   float64

	power       float64
	correlation float64
	latency     time.Duration
}

// NewPipeline validates cfg, designs the bandpass once and allocates all
// per-channel state.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	coeffs, err := design.NewBandpass(cfg.AlphaFreq, cfg.Q, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	left, right := cfg.Montage.Probes()
	est, err := metrics.NewEstimator(
		metrics.WithSampleRate(cfg.SampleRate),
		metrics.WithWindow(cfg.WindowSeconds),
		metrics.WithChannels(left, right),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	tail, err := buffer.NewRing(cfg.TailLength)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	ctrl, err := gain.NewController(cfg.RampTime)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	p := &Pipeline{
		cfg:           cfg,
		coeffs:        coeffs,
		source:        signal.NewSource(cfg.Source, cfg.Noise),
		primary:       cfg.Montage.Primary(),
		left:          left,
		right:         right,
		estimator:     est,
		tail:          tail,
		control:       ctrl,
		frame:         make([]float64, len(cfg.Montage)),
		controlPeriod: cfg.ControlInterval.Seconds(),
		publishPeriod: cfg.PublishInterval.Seconds(),
	}
	for _, ch := range cfg.Montage {
		if ch.Role.IsProbe() {
			p.probes = append(p.probes, probe{channel: ch.Index, filter: biquad.NewSection(coeffs)})
		}
	}
	p.Reset()

	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Coefficients returns the designed bandpass.
func (p *Pipeline) Coefficients() biquad.Coefficients {
	return p.coeffs
}

// Controller returns the gain envelope driven by the pipeline.
func (p *Pipeline) Controller() *gain.Controller {
	return p.control
}

// SetCommandClock sets the timeline gain commands are stamped on. The
// envelope must be read on the same clock, so a real-time driver whose
// audio follows the wall clock passes that clock here. A nil clock stamps
// commands with simulated time.
func (p *Pipeline) SetCommandClock(clock func() float64) {
	p.clock = clock
}

// SimTime returns the simulated time of the last processed sample.
func (p *Pipeline) SimTime() float64 {
	return float64(p.samples) / p.cfg.SampleRate
}

// Samples returns the number of sample-steps processed since Reset.
func (p *Pipeline) Samples() int64 {
	return p.samples
}

// Reset clears filters, windows, tail, gain and simulated time.
func (p *Pipeline) Reset() {
	for _, pr := range p.probes {
		pr.filter.Reset()
	}
	p.estimator.Reset()
	p.tail.Reset()
	p.control.Reset(0)
	for i := range p.frame {
		p.frame[i] = 0
	}

	p.samples = 0
	p.nextControl = p.controlPeriod
	p.nextPublish = p.publishPeriod
	p.power = 0
	p.correlation = 0
	p.latency = 0
}

// Step advances by one sample period. Simulated time moves forward before
// the samples are generated, so the first step is evaluated at 1/fs.
// It returns a snapshot when the step crosses a publish boundary and nil
// otherwise.
func (p *Pipeline) Step(engaged bool) *Snapshot {
	p.samples++
	t := p.SimTime()

	p.frame = p.source.Frame(p.frame, p.cfg.Montage, engaged, t)
	for _, pr := range p.probes {
		p.estimator.Push(pr.channel, core.FlushDenormals(pr.filter.ProcessSample(p.frame[pr.channel])))
	}
	p.tail.Push(p.frame[p.primary])

	doControl := t+cadenceEpsilon >= p.nextControl
	doPublish := t+cadenceEpsilon >= p.nextPublish
	if !doControl && !doPublish {
		return nil
	}

	now := t
	if p.clock != nil {
		now = p.clock()
	}
	p.measure()
	if doControl {
		p.control.SetTarget(p.cfg.Reward.Level(p.power), now)
		for p.nextControl <= t+cadenceEpsilon {
			p.nextControl += p.controlPeriod
		}
	}
	if !doPublish {
		return nil
	}
	for p.nextPublish <= t+cadenceEpsilon {
		p.nextPublish += p.publishPeriod
	}
	return p.snapshot(t, now, engaged)
}

// Advance runs n steps with a fixed engaged flag and returns the last
// snapshot produced, or nil.
func (p *Pipeline) Advance(n int, engaged bool) *Snapshot {
	var last *Snapshot
	for range n {
		if s := p.Step(engaged); s != nil {
			last = s
		}
	}
	return last
}

func (p *Pipeline) measure() {
	start := time.Now()
	p.power = p.estimator.Power(p.primary)
	p.correlation = p.estimator.Coherence(p.left, p.right)
	p.latency = time.Since(start)
}

func (p *Pipeline) snapshot(t, now float64, engaged bool) *Snapshot {
	return &Snapshot{
		SessionID:      p.sessionID,
		SimTime:        t,
		Samples:        p.samples,
		BandPower:      p.power,
		Coherence:      metrics.ClampCoherence(p.correlation),
		Correlation:    p.correlation,
		ComputeLatency: p.latency,
		Engaged:        engaged,
		RawTail:        p.tail.Values(nil),
		Frame:          append([]float64(nil), p.frame...),
		OutputLevel:    p.control.Level(now),
		TargetLevel:    p.control.Target(),
	}
}
