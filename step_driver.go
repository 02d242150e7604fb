package main

// RunState is the façade-owned run state threaded through every step:
// halted/interrupt flip-flops, the EI-deferral countdown, the running
// T-state total, and the BIN-load interrupt-disarm flag.
type RunState struct {
	Halted          bool
	IFF1            bool
	IFF1Pending     bool
	IFF1Delay       int
	IM              byte
	TStates         uint64
	AllowInterrupts bool
}

func NewRunState() *RunState {
	return &RunState{AllowInterrupts: true}
}

// StepSnapshot is the bookkeeping record produced by one step: enough
// for the debugger to render registers, flags, a disassembly window,
// and a stack window without re-reading the bus.
type StepSnapshot struct {
	PCBefore, SPBefore uint16
	FBefore            byte
	PCAfter, SPAfter   uint16

	A, F, B, C, D, E, H, L       byte
	A2, F2, B2, C2, D2, E2, H2, L2 byte
	IX, IY                       uint16
	I, R                         byte

	MemWindow   []byte
	StackWindow []byte

	Length     int
	Mnemonic   string
	Cycles     int
	FromStep   bool
}

// UnimplTracker records which PCs have already produced a logged
// UNIMPL notice, so the log is not flooded by a tight loop re-hitting
// the same unsupported opcode.
type UnimplTracker struct {
	seen map[uint16]bool
}

func NewUnimplTracker() *UnimplTracker {
	return &UnimplTracker{seen: make(map[uint16]bool)}
}

func (u *UnimplTracker) ReportOnce(pc uint16, mnemonic string) bool {
	if u.seen[pc] {
		return false
	}
	u.seen[pc] = true
	return true
}

func (u *UnimplTracker) Clear() { u.seen = make(map[uint16]bool) }

// ExecutedMap is the PC -> (length, mnemonic) map used by the
// debugger's disassembly window to avoid redundant re-disassembly of
// code already executed this session.
type ExecutedMap struct {
	entries map[uint16]executedEntry
}

type executedEntry struct {
	Length   int
	Mnemonic string
}

func NewExecutedMap() *ExecutedMap {
	return &ExecutedMap{entries: make(map[uint16]executedEntry)}
}

func (m *ExecutedMap) Insert(pc uint16, length int, mnemonic string) {
	m.entries[pc] = executedEntry{Length: length, Mnemonic: mnemonic}
}

func (m *ExecutedMap) Lookup(pc uint16) (int, string, bool) {
	e, ok := m.entries[pc]
	return e.Length, e.Mnemonic, ok
}

// StepDriver runs exactly one Z80 instruction, owning every piece of
// interrupt/port-intercept bookkeeping the opcode engine itself does
// not know about (§6.5's collaborator contract ends at execute()).
type StepDriver struct {
	cpu    *CPU
	bus    *Bus
	logger *Logger
}

func NewStepDriver(cpu *CPU, bus *Bus, logger *Logger) *StepDriver {
	return &StepDriver{cpu: cpu, bus: bus, logger: logger}
}

// Step runs the sequence described by the step driver's contract:
// HALT handling, prefetch+disassemble, port intercepts, delegation to
// the opcode engine, EI deferral, EI/DI/HALT observation, IM1
// interrupt injection, stack provenance recording, and bookkeeping.
func (d *StepDriver) Step(run *RunState, interruptPending bool, executed *ExecutedMap, unimpl *UnimplTracker, stack *StackTracker, fromStepButton bool) *StepSnapshot {
	c := d.cpu
	pcBefore := c.PC
	spBefore := c.SP
	fBefore := c.F

	if run.Halted {
		if interruptPending && run.IFF1 {
			run.Halted = false
		} else {
			run.TStates += 4
			return d.minimalSnapshot(pcBefore, spBefore, fBefore, fromStepButton)
		}
	}

	window := make([]byte, 4)
	for i := range window {
		window[i] = d.bus.Read(pcBefore + uint16(i))
	}
	mnemonic, length := disassemble(window, pcBefore, pcBefore)
	if len(mnemonic) >= 6 && mnemonic[:6] == "UNIMPL" {
		if unimpl.ReportOnce(pcBefore, mnemonic) {
			d.logger.Printf("UNIMPL opcode at 0x%04X: %s", pcBefore, mnemonic)
		}
	}

	opcode := window[0]

	if opcode == 0xDB {
		n := window[1]
		port := uint16(c.A)<<8 | uint16(n)
		if port&1 == 0 {
			c.A = d.bus.In(port)
			c.PC = pcBefore + 2
			cycles := 11
			run.TStates += uint64(cycles)
			executed.Insert(pcBefore, 2, mnemonic)
			return d.finishSnapshot(pcBefore, spBefore, fBefore, cycles, 2, mnemonic, fromStepButton)
		}
	}

	if opcode == 0xED {
		sub := window[1]
		if sub&0xC7 == 0x40 && sub != 0x76 {
			port := c.BC()
			if port&1 == 0 {
				val := d.bus.In(port)
				reg := (sub >> 3) & 0x07
				if reg != 6 {
					c.writeReg8Plain(reg, val)
				}
				c.updateInFlags(val)
				c.PC = pcBefore + 2
				cycles := 12
				run.TStates += uint64(cycles)
				executed.Insert(pcBefore, 2, mnemonic)
				return d.finishSnapshot(pcBefore, spBefore, fBefore, cycles, 2, mnemonic, fromStepButton)
			}
		}
	}

	cycles := c.Execute()

	if run.IFF1Pending {
		run.IFF1Delay--
		if run.IFF1Delay <= 0 {
			run.IFF1 = true
			run.IFF1Pending = false
		}
	}

	switch opcode {
	case 0xFB:
		run.IFF1Pending = true
		run.IFF1Delay = 1
	case 0xF3:
		run.IFF1 = false
		run.IFF1Pending = false
	case 0x76:
		run.Halted = true
	case 0xED:
		switch window[1] {
		case 0x45, 0x55, 0x5D, 0x65, 0x6D, 0x75, 0x7D, 0x4D:
			run.IFF1 = c.IFF2
			run.IFF1Pending = false
		}
	}

	spAfterExecute := c.SP
	if spAfterExecute < spBefore {
		kind := StackManual
		switch {
		case len(mnemonic) >= 4 && mnemonic[:4] == "CALL":
			kind = StackCall
		case len(mnemonic) >= 3 && mnemonic[:3] == "RST":
			kind = StackCall
		case len(mnemonic) >= 4 && mnemonic[:4] == "PUSH":
			kind = StackPush
		}
		for addr := spAfterExecute; addr < spBefore; addr++ {
			stack.Record(addr, kind, pcBefore)
		}
	}

	run.TStates += uint64(cycles)
	executed.Insert(pcBefore, length, mnemonic)

	if interruptPending && run.IFF1 && run.AllowInterrupts {
		snap := d.finishSnapshot(pcBefore, spBefore, fBefore, cycles, length, mnemonic, fromStepButton)
		preInjectionPC := c.PC
		run.Halted = false
		run.IFF1 = false
		c.IFF1, c.IFF2 = false, false
		c.pushWord(preInjectionPC)
		for addr := c.SP; addr < spAfterExecute; addr++ {
			stack.Record(addr, StackInterrupt, preInjectionPC)
		}
		c.PC = 0x0038
		injectCycles := 13
		run.TStates += uint64(injectCycles)
		return snap
	}

	return d.finishSnapshot(pcBefore, spBefore, fBefore, cycles, length, mnemonic, fromStepButton)
}

func (d *StepDriver) minimalSnapshot(pcBefore, spBefore uint16, fBefore byte, fromStep bool) *StepSnapshot {
	return d.finishSnapshot(pcBefore, spBefore, fBefore, 4, 0, "HALT", fromStep)
}

func (d *StepDriver) finishSnapshot(pcBefore, spBefore uint16, fBefore byte, cycles, length int, mnemonic string, fromStep bool) *StepSnapshot {
	c := d.cpu
	windowStart := pcBefore - 128
	mem := make([]byte, 512)
	for i := range mem {
		mem[i] = d.bus.Read(windowStart + uint16(i))
	}
	stackWindow := make([]byte, 32)
	for i := range stackWindow {
		stackWindow[i] = d.bus.Read(c.SP + uint16(i))
	}

	return &StepSnapshot{
		PCBefore: pcBefore, SPBefore: spBefore, FBefore: fBefore,
		PCAfter: c.PC, SPAfter: c.SP,
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		A2: c.A2, F2: c.F2, B2: c.B2, C2: c.C2, D2: c.D2, E2: c.E2, H2: c.H2, L2: c.L2,
		IX: c.IX, IY: c.IY, I: c.I, R: c.R,
		MemWindow: mem, StackWindow: stackWindow,
		Length: length, Mnemonic: mnemonic, Cycles: cycles, FromStep: fromStep,
	}
}
