package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// TerminalDebugger is a minimal curses-less front end: it puts the
// controlling terminal into raw mode, reads single keystrokes to
// drive the command surface (Step/Run/RunFast/Pause/DebugToggle/Quit;
// there is no Load key), and, while the debug toggle is on, renders a
// one-line register/mnemonic status line after every frame. It is the
// one piece of the otherwise out-of-scope rendering
// backend that this module ships, since the core must still exist as
// a runnable program.
type TerminalDebugger struct {
	machine  *Machine
	logger   *Logger
	oldState *term.State
	fd       int
	reader   *bufio.Reader
}

func NewTerminalDebugger(m *Machine, logger *Logger) (*TerminalDebugger, error) {
	fd := int(os.Stdin.Fd())
	td := &TerminalDebugger{machine: m, logger: logger, fd: fd, reader: bufio.NewReader(os.Stdin)}

	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		td.oldState = old
	}

	return td, nil
}

func (td *TerminalDebugger) Close() {
	if td.oldState != nil {
		_ = term.Restore(td.fd, td.oldState)
	}
}

// Run drives the 50 Hz frame loop: poll for a command keystroke (non-
// blocking would require extra plumbing in raw mode, so a keystroke
// is consumed once per tick when available), advance one frame, and
// sleep out the remainder of the 20 ms tick. Exits cleanly on 'q'.
func (td *TerminalDebugger) Run() int {
	td.machine.Debugger.Run()

	for {
		start := time.Now()

		if td.hasInput() {
			b, err := td.reader.ReadByte()
			if err == nil && td.handleKey(b) {
				return 0
			}
		}

		td.machine.RunFrame()
		td.renderStatusLine()

		elapsed := time.Since(start)
		const frameInterval = 20 * time.Millisecond
		if elapsed < frameInterval {
			time.Sleep(frameInterval - elapsed)
		}
	}
}

func (td *TerminalDebugger) hasInput() bool {
	return td.reader.Buffered() > 0
}

// handleKey applies one command keystroke; returns true on quit.
func (td *TerminalDebugger) handleKey(b byte) bool {
	switch b {
	case 'q', 'Q', 0x1B:
		return true
	case 's', 'S':
		td.machine.Debugger.Step()
		td.machine.StepOnce()
	case 'r', 'R':
		td.machine.Debugger.Run()
	case 'f', 'F':
		td.machine.Debugger.RunFast()
	case 'p', 'P':
		td.machine.Debugger.Pause()
	case 'd', 'D':
		td.machine.Debugger.ToggleDebug()
	}
	return false
}

func (td *TerminalDebugger) renderStatusLine() {
	if !td.machine.Debugger.DebugEnabled() {
		return
	}
	snap := td.machine.LastSnapshot()
	if snap == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "\rPC=%04X SP=%04X AF=%02X%02X BC=%02X%02X DE=%02X%02X HL=%02X%02X  %s\x1b[K",
		td.machine.CPU.PC, td.machine.CPU.SP,
		snap.A, snap.F, snap.B, snap.C, snap.D, snap.E, snap.H, snap.L, snap.Mnemonic)
}
