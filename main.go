package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: zx48 <mode> <image> [breakpoint-script]")
	fmt.Fprintln(os.Stderr, "  mode: run")
	fmt.Fprintln(os.Stderr, "  image: path to a .rom/.sna/.z80/.bin file")
	fmt.Fprintln(os.Stderr, "  breakpoint-script: optional Lua file run when the fixed breakpoint fires")
}

func printBanner() {
	fmt.Println("zx48 -- ZX Spectrum 48K emulation core")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 2 && len(args) != 3 {
		printUsage()
		return 1
	}

	mode, imagePath := args[0], args[1]
	if mode != "run" {
		printUsage()
		return 1
	}

	logger := NewLogger(os.Stderr)

	m, err := NewMachine(1, defaultROMPath(), logger)
	if err != nil {
		logger.Printf("failed to initialise machine: %v", err)
		return 1
	}

	if err := m.Load(imagePath); err != nil {
		logger.Printf("failed to load %s: %v", imagePath, err)
		return 1
	}

	if len(args) == 3 {
		src, err := os.ReadFile(args[2])
		if err != nil {
			logger.Printf("failed to read breakpoint script %s: %v", args[2], err)
			return 1
		}
		m.BreakpointScript = NewBreakpointScript(string(src))
		defer m.BreakpointScript.Close()
	}

	printBanner()

	term, err := NewTerminalDebugger(m, logger)
	if err != nil {
		logger.Printf("failed to start terminal debugger: %v", err)
		return 1
	}
	defer term.Close()

	return term.Run()
}
