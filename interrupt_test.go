package main

import "testing"

func TestInterruptSchedulerFiresAtFrameBoundary(t *testing.T) {
	s := NewInterruptScheduler()
	if s.AddCycles(tStatesPerFrame - 1) {
		t.Fatalf("should not fire one T-state short of a frame")
	}
	if !s.AddCycles(1) {
		t.Fatalf("should fire exactly at the frame boundary")
	}
}

func TestInterruptSchedulerCarriesOvershoot(t *testing.T) {
	s := NewInterruptScheduler()
	if !s.AddCycles(tStatesPerFrame + 20) {
		t.Fatalf("should fire when a single instruction crosses the boundary")
	}
	// the 20 T-state overshoot should count toward the next frame, not be discarded
	if s.AddCycles(tStatesPerFrame - 20 - 1) {
		t.Fatalf("overshoot should have been carried forward, firing one T-state early")
	}
	if !s.AddCycles(1) {
		t.Fatalf("next frame should fire once its remaining budget is consumed")
	}
}

func TestInterruptSchedulerReset(t *testing.T) {
	s := NewInterruptScheduler()
	s.AddCycles(1000)
	s.Reset()
	if s.AddCycles(tStatesPerFrame - 1) {
		t.Fatalf("reset should clear accumulated T-states")
	}
}
