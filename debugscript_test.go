package main

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestBreakpointScriptInvokeReadsRegistersAndMemory(t *testing.T) {
	bus := NewBus()
	bus.Write(0x1234, 0x42)
	cpu := NewCPU(bus)
	cpu.PC = 0x1234
	m := &Machine{Bus: bus, CPU: cpu}

	script := NewBreakpointScript(`seen_pc = read_reg("pc"); seen_mem = read_mem(seen_pc)`)
	defer script.Close()
	script.Invoke(m, NewLogger(discardWriter{}))

	pc, ok := script.state.GetGlobal("seen_pc").(lua.LNumber)
	if !ok || uint16(pc) != 0x1234 {
		t.Fatalf("expected script to observe PC 0x1234, got %v", script.state.GetGlobal("seen_pc"))
	}
	mem, ok := script.state.GetGlobal("seen_mem").(lua.LNumber)
	if !ok || byte(mem) != 0x42 {
		t.Fatalf("expected script to observe memory byte 0x42, got %v", script.state.GetGlobal("seen_mem"))
	}
}

func TestBreakpointScriptEmptySourceIsNoop(t *testing.T) {
	script := NewBreakpointScript("")
	defer script.Close()
	// Must not panic or allocate a Lua state for an empty/unset script.
	script.Invoke(nil, NewLogger(discardWriter{}))
	if script.state != nil {
		t.Fatalf("empty-source script should never allocate a Lua state")
	}
}

func TestBreakpointScriptFiresFromRunOneFrameBody(t *testing.T) {
	m, err := NewMachine(1, "", NewLogger(discardWriter{}))
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	loadProgram(m.Bus, 0, 0x00, 0x00, 0x00, 0x00) // four NOPs
	m.Debugger.SetBreakpoint(0x0002)
	m.Debugger.Run() // the breakpoint guard is only active in Run/RunFast

	m.BreakpointScript = NewBreakpointScript(`fired = true`)
	defer m.BreakpointScript.Close()

	m.runOneFrameBody()

	if v, ok := m.BreakpointScript.state.GetGlobal("fired").(lua.LBool); !ok || !bool(v) {
		t.Fatalf("expected breakpoint script to run once PC reached the breakpoint")
	}
	if m.CPU.PC != 0x0002 {
		t.Fatalf("execution should stop at the breakpoint, got PC=0x%04X", m.CPU.PC)
	}
}
