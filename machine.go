package main

import (
	"os"
	"path/filepath"
)

// LoadState is observed by the UI only; it records which kind of
// image (if any) is currently resident.
type LoadState int

const (
	LoadNone LoadState = iota
	LoadRom
	LoadSna
	LoadZ80
	LoadBin
)

// Machine is the façade: it owns every stateful component (C1-C9) and
// exposes the handful of operations a host loop or debugger front end
// needs — run_frame, step_once, load, reset.
type Machine struct {
	Bus          *Bus
	CPU          *CPU
	Video        *VideoComposer
	Stack        *StackTracker
	Interrupts   *InterruptScheduler
	Debugger     *Debugger
	Run          *RunState
	stepDriver   *StepDriver
	unimpl       *UnimplTracker
	executed     *ExecutedMap
	logger       *Logger

	interruptPending bool
	frameAccum       int
	loadState        LoadState
	lastSnapshot     *StepSnapshot
	scale            int

	BreakpointScript *BreakpointScript
}

func NewMachine(scale int, romPath string, logger *Logger) (*Machine, error) {
	bus := NewBus()
	cpu := NewCPU(bus)
	m := &Machine{
		Bus:        bus,
		CPU:        cpu,
		Video:      NewVideoComposer(),
		Stack:      NewStackTracker(),
		Interrupts: NewInterruptScheduler(),
		Debugger:   NewDebugger(),
		Run:        NewRunState(),
		unimpl:     NewUnimplTracker(),
		executed:   NewExecutedMap(),
		logger:     logger,
		scale:      scale,
	}
	m.stepDriver = NewStepDriver(cpu, bus, logger)

	if romPath != "" {
		if err := LoadImage(romPath, bus, cpu, m.Run, m.Interrupts); err != nil {
			return nil, err
		}
		m.loadState = LoadRom
	}

	return m, nil
}

// StepOnce invokes the step driver regardless of the debugger's
// current mode; it is what the UI's Step button drives.
func (m *Machine) StepOnce() {
	snap := m.stepDriver.Step(m.Run, m.interruptPending, m.executed, m.unimpl, m.Stack, true)
	m.lastSnapshot = snap
	if m.CPU.PC == 0x0038 {
		m.interruptPending = false
	}
}

// RunFrame dispatches according to the debugger's mode.
func (m *Machine) RunFrame() {
	switch m.Debugger.Mode() {
	case ModePaused:
		return
	case ModeStep:
		m.StepOnce()
	case ModeRun:
		m.runOneFrameBody()
		m.Video.UpdateFromBus(m.Bus)
		m.Video.OnVSync()
	case ModeRunFast:
		for i := 0; i < 10; i++ {
			m.runOneFrameBody()
			m.Video.OnVSync()
		}
		m.Video.UpdateFromBus(m.Bus)
	}
}

// runOneFrameBody executes one frame's worth of steps (up to the
// 69888 T-state budget), feeding each step's cost into the interrupt
// scheduler and honoring the breakpoint as a pre-step guard.
func (m *Machine) runOneFrameBody() {
	m.frameAccum = 0
	for m.frameAccum < tStatesPerFrame {
		if m.Debugger.CheckBreakpoint(m.CPU.PC) {
			if m.BreakpointScript != nil {
				m.BreakpointScript.Invoke(m, m.logger)
			}
			return
		}

		snap := m.stepDriver.Step(m.Run, m.interruptPending, m.executed, m.unimpl, m.Stack, false)
		m.lastSnapshot = snap
		m.frameAccum += snap.Cycles

		if m.Interrupts.AddCycles(snap.Cycles) {
			m.interruptPending = true
		}
		if m.CPU.PC == 0x0038 {
			m.interruptPending = false
		}
	}
}

func (m *Machine) Load(path string) error {
	if err := LoadImage(path, m.Bus, m.CPU, m.Run, m.Interrupts); err != nil {
		return err
	}
	m.interruptPending = false
	m.lastSnapshot = nil
	m.Run.Halted = false

	switch ext := filepath.Ext(path); ext {
	case ".sna", ".SNA":
		m.loadState = LoadSna
	case ".z80", ".Z80":
		m.loadState = LoadZ80
	case ".bin", ".BIN":
		m.loadState = LoadBin
	case ".rom", ".ROM":
		m.loadState = LoadRom
	}
	return nil
}

// ResetMachine performs a soft reset: PC/SP to power-on values, fresh
// run state, cleared interrupt state, debugger paused.
func (m *Machine) ResetMachine() {
	m.CPU.PC = 0
	m.CPU.SP = 0xFFFF
	m.Run = NewRunState()
	m.Interrupts.Reset()
	m.interruptPending = false
	m.Debugger.Pause()
}

// PowerResetMachine additionally clears RAM, rebuilds the unimpl and
// stack trackers, and resets video timing.
func (m *Machine) PowerResetMachine() {
	m.ResetMachine()
	m.Bus.ClearRange(0x4000, 0xFFFF)
	m.unimpl = NewUnimplTracker()
	m.Stack = NewStackTracker()
	m.Video.ResetTiming()
}

func (m *Machine) LastSnapshot() *StepSnapshot { return m.lastSnapshot }
func (m *Machine) LoadState() LoadState        { return m.loadState }

func defaultROMPath() string {
	if p := os.Getenv("ZX48_ROM_PATH"); p != "" {
		return p
	}
	return "roms/48.rom"
}
