package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/cwbudde/algo-neurofeedback/dsp/signal"
	"github.com/cwbudde/algo-neurofeedback/engine"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Engine
	SampleRate      float64
	WindowSeconds   float64
	PublishInterval time.Duration
	AlphaHz         float64
	Q               float64
	RampSeconds     float64
	NoiseFloor      float64
	DynamicRange    float64
	Seed            int64 // 0 draws from the OS entropy pool

	// Audio
	Audio     bool
	CarrierHz float64
	AudioRate int

	// Server
	Port int

	LogLevel string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SampleRate:      envFloat("NF_SAMPLE_RATE", 250),
		WindowSeconds:   envFloat("NF_WINDOW_SECONDS", 0.5),
		PublishInterval: time.Duration(envInt("NF_PUBLISH_MS", 250)) * time.Millisecond,
		AlphaHz:         envFloat("NF_ALPHA_HZ", 10),
		Q:               envFloat("NF_Q", 2.5),
		RampSeconds:     envFloat("NF_RAMP_SECONDS", 0.1),
		NoiseFloor:      envFloat("NF_NOISE_FLOOR", 0.2),
		DynamicRange:    envFloat("NF_DYNAMIC_RANGE", 1.3),
		Seed:            int64(envInt("NF_SEED", 0)),

		Audio:     envBool("NF_AUDIO", true),
		CarrierHz: envFloat("NF_CARRIER_HZ", 440),
		AudioRate: envInt("NF_AUDIO_RATE", 48000),

		Port: envInt("NF_PORT", 8080),

		LogLevel: envStr("NF_LOG_LEVEL", "info"),
	}
}

// RegisterFlags binds command-line flags to cfg. Values already loaded
// from the environment become the flag defaults.
func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Float64Var(&cfg.SampleRate, "rate", cfg.SampleRate, "simulated sample rate in Hz")
	fs.Float64Var(&cfg.WindowSeconds, "window", cfg.WindowSeconds, "rolling window length in seconds")
	fs.DurationVar(&cfg.PublishInterval, "publish", cfg.PublishInterval, "snapshot interval")
	fs.Float64Var(&cfg.AlphaHz, "alpha", cfg.AlphaHz, "bandpass center frequency in Hz")
	fs.Float64Var(&cfg.Q, "q", cfg.Q, "bandpass quality factor")
	fs.Float64Var(&cfg.RampSeconds, "ramp", cfg.RampSeconds, "gain ramp time in seconds")
	fs.Float64Var(&cfg.NoiseFloor, "floor", cfg.NoiseFloor, "band power mapped to silence")
	fs.Float64Var(&cfg.DynamicRange, "range", cfg.DynamicRange, "band power span from silence to full level")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "noise seed (0 = random)")
	fs.BoolVar(&cfg.Audio, "audio", cfg.Audio, "play the feedback tone on the local device")
	fs.Float64Var(&cfg.CarrierHz, "carrier", cfg.CarrierHz, "feedback tone frequency in Hz")
	fs.IntVar(&cfg.AudioRate, "audio-rate", cfg.AudioRate, "local audio device sample rate (the WebRTC stream is always 48 kHz)")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port (0 disables the server)")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level: trace, debug, info, warn, error, disabled")
}

// Noise returns the noise source selected by Seed.
func (cfg Config) Noise() signal.Noise {
	if cfg.Seed != 0 {
		return signal.NewSeededNoise(cfg.Seed)
	}
	return signal.NewEntropyNoise()
}

// EngineOptions converts the configuration to engine options.
func (cfg Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithSampleRate(cfg.SampleRate),
		engine.WithWindow(cfg.WindowSeconds),
		engine.WithPublishInterval(cfg.PublishInterval),
		engine.WithBand(cfg.AlphaHz, cfg.Q),
		engine.WithRampTime(cfg.RampSeconds),
		engine.WithReward(cfg.NoiseFloor, cfg.DynamicRange),
		engine.WithNoise(cfg.Noise()),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
