package protocol

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConstant(t *testing.T) {
	if !Constant(true).Engaged(3) || Constant(false).Engaged(3) {
		t.Fatal("constant schedule wrong")
	}
}

func TestBlocks(t *testing.T) {
	b := Blocks{Rest: 2, Engage: 1}
	tests := []struct {
		t    float64
		want bool
	}{
		{-1, false}, {0, false}, {1.99, false}, {2, true}, {2.99, true}, {3, false}, {5.5, true},
	}
	for _, tt := range tests {
		if got := b.Engaged(tt.t); got != tt.want {
			t.Errorf("Engaged(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if (Blocks{}).Engaged(1) {
		t.Fatal("empty blocks should never engage")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		desc string
		want Schedule
	}{
		{"on", Constant(true)},
		{"OFF", Constant(false)},
		{"", Constant(false)},
		{"blocks:10, 20", Blocks{Rest: 10, Engage: 20}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.desc)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.desc, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %#v, want %#v", tt.desc, got, tt.want)
		}
	}

	for _, bad := range []string{"blocks:10", "blocks:a,b", "blocks:-1,2", "blocks:0,0", "wave"} {
		if _, err := Parse(bad); !errors.Is(err, ErrInvalidSchedule) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidSchedule", bad, err)
		}
	}
	if _, err := Parse("lua:/does/not/exist.lua"); err == nil {
		t.Error("missing script should fail")
	}
}

func TestLuaSchedule(t *testing.T) {
	s, err := NewLuaSchedule(`
function engaged(t)
  return math.floor(t) % 2 == 1
end`)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for _, tt := range []struct {
		t    float64
		want bool
	}{{0.5, false}, {1.2, true}, {2.9, false}, {3.0, true}} {
		if got := s.Engaged(tt.t); got != tt.want {
			t.Errorf("Engaged(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if s.Err() != nil {
		t.Fatalf("unexpected error: %v", s.Err())
	}
}

func TestLuaSchedule_Errors(t *testing.T) {
	if _, err := NewLuaSchedule("this is not lua"); err == nil {
		t.Fatal("syntax error should fail")
	}
	if _, err := NewLuaSchedule("x = 1"); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("missing function err = %v", err)
	}
	if _, err := NewLuaSchedule(`os.exit(1)`); err == nil {
		t.Fatal("os library should not be available")
	}

	s, err := NewLuaSchedule(`function engaged(t) error("boom") end`)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Engaged(1) {
		t.Fatal("runtime error should disengage")
	}
	if s.Err() == nil {
		t.Fatal("runtime error not recorded")
	}
}

func TestParseLuaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocol.lua")
	if err := os.WriteFile(path, []byte("function engaged(t) return t >= 10 end"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Parse("lua:" + path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.(*LuaSchedule).Close()

	if s.Engaged(9) || !s.Engaged(10) {
		t.Fatal("script schedule wrong")
	}
}
