package main

import (
	lua "github.com/yuin/gopher-lua"
)

// BreakpointScript is an optional Lua hook bound to the debugger's
// fixed breakpoint: when the breakpoint fires, the script runs with
// read-only access to registers and memory through a small table of
// host functions, echoing the wider pack's macro/scripting texture
// without a full multi-CPU monitor.
type BreakpointScript struct {
	state  *lua.LState
	source string
}

func NewBreakpointScript(source string) *BreakpointScript {
	return &BreakpointScript{source: source}
}

// Invoke runs the script against a snapshot of the machine's visible
// state at the moment the breakpoint fired. Errors are logged, never
// fatal — a malformed script must not stop the emulator.
func (s *BreakpointScript) Invoke(m *Machine, logger *Logger) {
	if s.source == "" {
		return
	}
	if s.state == nil {
		s.state = lua.NewState()
		s.registerHost(m)
	}

	if err := s.state.DoString(s.source); err != nil {
		logger.Printf("breakpoint script error: %v", err)
	}
}

func (s *BreakpointScript) registerHost(m *Machine) {
	s.state.SetGlobal("reg_a", lua.LNumber(0))
	s.state.SetGlobal("read_reg", s.state.NewFunction(func(L *lua.LState) int {
		name := L.ToString(1)
		L.Push(lua.LNumber(s.readRegister(m, name)))
		return 1
	}))
	s.state.SetGlobal("read_mem", s.state.NewFunction(func(L *lua.LState) int {
		addr := uint16(L.ToInt(1))
		L.Push(lua.LNumber(m.Bus.Read(addr)))
		return 1
	}))
}

func (s *BreakpointScript) readRegister(m *Machine, name string) uint16 {
	c := m.CPU
	switch name {
	case "af":
		return c.AF()
	case "bc":
		return c.BC()
	case "de":
		return c.DE()
	case "hl":
		return c.HL()
	case "ix":
		return c.IX
	case "iy":
		return c.IY
	case "sp":
		return c.SP
	case "pc":
		return c.PC
	default:
		return 0
	}
}

func (s *BreakpointScript) Close() {
	if s.state != nil {
		s.state.Close()
	}
}
