package signal

import (
	"errors"
	"fmt"
)

// Role classifies a channel.
type Role int

const (
	// RoleBackground channels carry noise only.
	RoleBackground Role = iota
	// RoleProbeLeft is the left frontal probe.
	RoleProbeLeft
	// RoleProbeRight is the right frontal probe.
	RoleProbeRight
)

// IsProbe reports whether the role is filtered and windowed.
func (r Role) IsProbe() bool {
	return r == RoleProbeLeft || r == RoleProbeRight
}

func (r Role) String() string {
	switch r {
	case RoleBackground:
		return "background"
	case RoleProbeLeft:
		return "probe-left"
	case RoleProbeRight:
		return "probe-right"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Channel is one position of a montage.
type Channel struct {
	Index int
	Role  Role
	Label string
}

// Montage is the ordered channel list of a recording.
type Montage []Channel

// ErrInvalidMontage reports a montage the engine cannot run.
var ErrInvalidMontage = errors.New("signal: invalid montage")

// Default probe positions: first channel of the left and right frontal groups.
const (
	DefaultProbeLeft  = 0
	DefaultProbeRight = 4
)

// DefaultMontage returns n channels labelled by region: channels 0-3 left
// frontal, 4-7 right frontal, the rest visual. Channel 0 is the left probe
// and channel 4 the right probe when n >= 5.
func DefaultMontage(n int) Montage {
	m := make(Montage, n)
	for i := range m {
		m[i] = Channel{Index: i, Label: regionLabel(i)}
	}
	if n > DefaultProbeLeft {
		m[DefaultProbeLeft].Role = RoleProbeLeft
	}
	if n > DefaultProbeRight {
		m[DefaultProbeRight].Role = RoleProbeRight
	}
	return m
}

func regionLabel(i int) string {
	switch {
	case i < 4:
		return fmt.Sprintf("F-L%d", i+1)
	case i < 8:
		return fmt.Sprintf("F-R%d", i-3)
	default:
		return fmt.Sprintf("V%d", i-7)
	}
}

// Probes returns the indices of the left and right probe channels, or -1
// for a missing role.
func (m Montage) Probes() (left, right int) {
	left, right = -1, -1
	for i, ch := range m {
		switch ch.Role {
		case RoleProbeLeft:
			if left < 0 {
				left = i
			}
		case RoleProbeRight:
			if right < 0 {
				right = i
			}
		}
	}
	return left, right
}

// Primary returns the channel whose raw samples feed the visualization
// tail: the left probe.
func (m Montage) Primary() int {
	left, _ := m.Probes()
	return left
}

// Validate checks that the montage has exactly one probe of each side and
// that indices match positions.
func (m Montage) Validate() error {
	if len(m) < 2 {
		return fmt.Errorf("%w: need at least 2 channels, got %d", ErrInvalidMontage, len(m))
	}
	var left, right int
	for i, ch := range m {
		if ch.Index != i {
			return fmt.Errorf("%w: channel at position %d has index %d", ErrInvalidMontage, i, ch.Index)
		}
		switch ch.Role {
		case RoleProbeLeft:
			left++
		case RoleProbeRight:
			right++
		case RoleBackground:
		default:
			return fmt.Errorf("%w: channel %d has unknown role %v", ErrInvalidMontage, i, ch.Role)
		}
	}
	if left != 1 || right != 1 {
		return fmt.Errorf("%w: want one left and one right probe, got %d and %d", ErrInvalidMontage, left, right)
	}
	return nil
}
