package audio

import (
	"context"
	"errors"
	"time"
)

// ErrNoDevice is returned when the output device cannot be opened.
var ErrNoDevice = errors.New("audio: no output device")

// Player plays a Tone on an output device.
type Player interface {
	Start() error
	Close() error
}

// FadeOut waits for delay so a gain ramp to zero can finish, then closes
// p. It closes immediately if ctx ends first.
func FadeOut(ctx context.Context, p Player, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return p.Close()
}
