package protocol

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// LuaSchedule evaluates a script's global engaged(t) function. The script
// runs in a state with only the base, math, string and table libraries.
type LuaSchedule struct {
	mu  sync.Mutex
	L   *lua.LState
	fn  lua.LValue
	err error
}

// NewLuaSchedule compiles src and looks up engaged.
func NewLuaSchedule(src string) (*LuaSchedule, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("protocol: load script: %w", err)
	}

	fn := L.GetGlobal("engaged")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%w: script must define function engaged(t)", ErrInvalidSchedule)
	}

	return &LuaSchedule{L: L, fn: fn}, nil
}

// Engaged calls engaged(t). A runtime error yields false and is kept for
// Err.
func (s *LuaSchedule) Engaged(t float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(t)); err != nil {
		if s.err == nil {
			s.err = err
		}
		return false
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return lua.LVAsBool(ret)
}

// Err returns the first runtime error raised by the script.
func (s *LuaSchedule) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases the interpreter.
func (s *LuaSchedule) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
}
