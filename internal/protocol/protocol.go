// Package protocol describes when a simulated subject is engaged over the
// course of a session: always, never, in alternating rest/engage blocks, or
// as decided by a Lua script.
package protocol

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidSchedule is returned for unparsable schedule descriptions.
var ErrInvalidSchedule = errors.New("protocol: invalid schedule")

// Schedule reports the engaged state at simulated time t seconds.
type Schedule interface {
	Engaged(t float64) bool
}

// Constant is engaged always (true) or never (false).
type Constant bool

// Engaged implements Schedule.
func (c Constant) Engaged(float64) bool { return bool(c) }

// Blocks alternates Rest seconds disengaged with Engage seconds engaged,
// starting with rest.
type Blocks struct {
	Rest   float64
	Engage float64
}

// Engaged implements Schedule.
func (b Blocks) Engaged(t float64) bool {
	period := b.Rest + b.Engage
	if period <= 0 || t < 0 {
		return false
	}
	return math.Mod(t, period) >= b.Rest
}

// Parse builds a schedule from a short description:
//
//	on | off                constant
//	blocks:REST,ENGAGE      alternating blocks in seconds
//	lua:PATH                script defining engaged(t)
func Parse(desc string) (Schedule, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(desc), ":")
	switch strings.ToLower(kind) {
	case "on", "true", "engaged":
		return Constant(true), nil
	case "off", "false", "rest", "":
		return Constant(false), nil
	case "blocks":
		restStr, engageStr, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, fmt.Errorf("%w: blocks needs REST,ENGAGE: %q", ErrInvalidSchedule, desc)
		}
		rest, err1 := strconv.ParseFloat(strings.TrimSpace(restStr), 64)
		engage, err2 := strconv.ParseFloat(strings.TrimSpace(engageStr), 64)
		if err1 != nil || err2 != nil || rest < 0 || engage < 0 || rest+engage <= 0 {
			return nil, fmt.Errorf("%w: bad block durations: %q", ErrInvalidSchedule, desc)
		}
		return Blocks{Rest: rest, Engage: engage}, nil
	case "lua":
		src, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("protocol: read script: %w", err)
		}
		return NewLuaSchedule(string(src))
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSchedule, kind)
	}
}
