package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/cwbudde/algo-neurofeedback/dsp/filter/design"
	"github.com/cwbudde/algo-neurofeedback/dsp/gain"
	"github.com/cwbudde/algo-neurofeedback/dsp/signal"
	"github.com/pion/logging"
)

// ErrInvalidConfig is returned by Validate for inconsistent settings.
var ErrInvalidConfig = errors.New("engine: invalid config")

// Config holds every tunable constant of the loop.
type Config struct {
	SampleRate      float64
	WindowSeconds   float64
	PublishInterval time.Duration
	// ControlInterval is the cadence of metric and gain updates.
	ControlInterval time.Duration

	AlphaFreq float64
	Q         float64

	RampTime float64
	Reward   gain.Reward

	Source  signal.SourceConfig
	Montage signal.Montage

	// TailLength is the number of raw primary-probe samples per snapshot.
	TailLength int

	// WakeInterval is how often the scheduler wakes to run owed steps.
	WakeInterval time.Duration
	// CatchUpThreshold is the owed step count above which a wake is logged
	// as a stall.
	CatchUpThreshold int

	Noise  signal.Noise
	Clock  func() time.Time
	Logger logging.LeveledLogger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the reference configuration: 250 Hz, 0.5 s window,
// 4 Hz publishing, 10 Hz / Q 2.5 bandpass and a 0.1 s gain ramp.
func DefaultConfig() Config {
	return Config{
		SampleRate:       250,
		WindowSeconds:    0.5,
		PublishInterval:  250 * time.Millisecond,
		ControlInterval:  time.Second / 60,
		AlphaFreq:        10,
		Q:                2.5,
		RampTime:         gain.DefaultRampTime,
		Reward:           gain.DefaultReward(),
		Source:           signal.DefaultSourceConfig(),
		Montage:          signal.DefaultMontage(16),
		TailLength:       50,
		WakeInterval:     4 * time.Millisecond,
		CatchUpThreshold: 250,
		Clock:            time.Now,
	}
}

// WithSampleRate sets the simulated sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithWindow sets the rolling window length in seconds.
func WithWindow(seconds float64) Option {
	return func(cfg *Config) {
		if seconds > 0 {
			cfg.WindowSeconds = seconds
		}
	}
}

// WithPublishInterval sets the snapshot cadence in simulated time.
func WithPublishInterval(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.PublishInterval = d
		}
	}
}

// WithControlInterval sets the gain update cadence in simulated time.
func WithControlInterval(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.ControlInterval = d
		}
	}
}

// WithBand sets the bandpass center frequency and Q.
func WithBand(freq, q float64) Option {
	return func(cfg *Config) {
		if freq > 0 {
			cfg.AlphaFreq = freq
		}
		if q > 0 {
			cfg.Q = q
		}
	}
}

// WithRampTime sets the gain ramp duration in seconds.
func WithRampTime(seconds float64) Option {
	return func(cfg *Config) {
		if seconds > 0 {
			cfg.RampTime = seconds
		}
	}
}

// WithReward sets the power-to-level mapping.
func WithReward(noiseFloor, dynamicRange float64) Option {
	return func(cfg *Config) {
		cfg.Reward = gain.Reward{NoiseFloor: noiseFloor, DynamicRange: dynamicRange}
	}
}

// WithSource sets the synthesized signal parameters.
func WithSource(src signal.SourceConfig) Option {
	return func(cfg *Config) {
		cfg.Source = src
	}
}

// WithMontage sets the channel layout.
func WithMontage(m signal.Montage) Option {
	return func(cfg *Config) {
		if len(m) > 0 {
			cfg.Montage = m
		}
	}
}

// WithTailLength sets the raw tail length carried by snapshots.
func WithTailLength(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.TailLength = n
		}
	}
}

// WithWakeInterval sets the scheduler wake period.
func WithWakeInterval(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.WakeInterval = d
		}
	}
}

// WithCatchUpThreshold sets the owed step count that triggers a stall
// warning.
func WithCatchUpThreshold(steps int) Option {
	return func(cfg *Config) {
		if steps > 0 {
			cfg.CatchUpThreshold = steps
		}
	}
}

// WithNoise injects the noise generator. Tests pass a seeded source.
func WithNoise(n signal.Noise) Option {
	return func(cfg *Config) {
		cfg.Noise = n
	}
}

// WithClock replaces the wall clock used by the scheduler.
func WithClock(clock func() time.Time) Option {
	return func(cfg *Config) {
		if clock != nil {
			cfg.Clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.LeveledLogger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate rejects settings the engine cannot run with.
func (cfg Config) Validate() error {
	if !(cfg.SampleRate > 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %g", ErrInvalidConfig, cfg.SampleRate)
	}
	if !(cfg.WindowSeconds > 0) {
		return fmt.Errorf("%w: window must be > 0: %g", ErrInvalidConfig, cfg.WindowSeconds)
	}
	if cfg.PublishInterval <= 0 || cfg.ControlInterval <= 0 || cfg.WakeInterval <= 0 {
		return fmt.Errorf("%w: intervals must be > 0", ErrInvalidConfig)
	}
	if cfg.TailLength < 1 {
		return fmt.Errorf("%w: tail length must be >= 1: %d", ErrInvalidConfig, cfg.TailLength)
	}
	if err := design.ValidateBandpass(cfg.AlphaFreq, cfg.Q, cfg.SampleRate); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !(cfg.RampTime > 0) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, gain.ErrInvalidRampTime)
	}
	if err := cfg.Reward.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Montage.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (cfg Config) logger() logging.LeveledLogger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return logging.NewDefaultLoggerFactory().NewLogger("engine")
}
