// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package typewriter

import (
	"strings"
	"testing"

	"github.com/jeranaias/buai-tui/internal/segment"
)

// fakeSurface records every SetBlocks call.
type fakeSurface struct {
	blocks []string
	sets   int
}

func (f *fakeSurface) SetBlocks(blocks []string) {
	f.blocks = blocks
	f.sets++
}

// drain runs the controller until the reveal completes.
func drain(t *testing.T, c *Controller, gen uint64) {
	t.Helper()
	for i := 0; i < 100000; i++ {
		kind, _ := c.Advance(gen)
		if kind == StepDone || kind == StepNone {
			return
		}
	}
	t.Fatal("reveal did not terminate")
}

// =============================================================================
// STATE MACHINE TESTS
// =============================================================================

func TestStateStepSequence(t *testing.T) {
	s := NewState("Hi")

	s, kind := s.Step()
	if kind != StepChar || s.CharIndex != 1 {
		t.Fatalf("first step = %v, CharIndex %d", kind, s.CharIndex)
	}
	if got := s.Visible(); len(got) != 1 || got[0] != "H" {
		t.Fatalf("Visible after one char = %v", got)
	}

	s, kind = s.Step()
	if kind != StepChar {
		t.Fatalf("second step = %v", kind)
	}

	s, kind = s.Step()
	if kind != StepParagraph || s.ParagraphIndex != 1 || s.CharIndex != 0 {
		t.Fatalf("paragraph step = %v, state %d/%d", kind, s.ParagraphIndex, s.CharIndex)
	}

	s, kind = s.Step()
	if kind != StepDone || s.Running {
		t.Fatalf("final step = %v, running %v", kind, s.Running)
	}
}

func TestStateMultipleParagraphs(t *testing.T) {
	s := NewState("One.\n\nTwo.")

	var chars, paragraphs int
	for s.Running {
		var kind StepKind
		s, kind = s.Step()
		switch kind {
		case StepChar:
			chars++
		case StepParagraph:
			paragraphs++
		}
	}

	if chars != len("One.")+len("Two.") {
		t.Errorf("char steps = %d, want %d", chars, len("One.")+len("Two."))
	}
	if paragraphs != 2 {
		t.Errorf("paragraph steps = %d, want 2", paragraphs)
	}
}

func TestStateUnicodeSteps(t *testing.T) {
	s := NewState("héllo")

	var chars int
	for s.Running {
		var kind StepKind
		s, kind = s.Step()
		if kind == StepChar {
			chars++
		}
	}

	if chars != 5 {
		t.Errorf("char steps = %d, want 5 (rune-based)", chars)
	}
}

func TestCadenceRatio(t *testing.T) {
	if ParagraphDelay != 30*CharDelay {
		t.Errorf("ParagraphDelay = %v, want 30x CharDelay (%v)", ParagraphDelay, 30*CharDelay)
	}
	if StepChar.Delay() != CharDelay {
		t.Errorf("StepChar.Delay() = %v", StepChar.Delay())
	}
	if StepDone.Delay() != 0 {
		t.Errorf("StepDone.Delay() = %v, want 0", StepDone.Delay())
	}
}

// =============================================================================
// CONTROLLER TESTS
// =============================================================================

func TestControllerRevealCompletes(t *testing.T) {
	var c Controller
	surface := &fakeSurface{}

	text := "First point.\nSecond point starts here.\n* bullet"
	gen, _ := c.Start(surface, text)
	drain(t, &c, gen)

	want := segment.Split(text)
	if strings.Join(surface.blocks, "\n\n") != strings.Join(want, "\n\n") {
		t.Errorf("final blocks = %v, want %v", surface.blocks, want)
	}
	if c.Running() {
		t.Error("controller still running after completion")
	}
}

func TestControllerSingleFlightPreemption(t *testing.T) {
	var c Controller
	first := &fakeSurface{}
	second := &fakeSurface{}

	gen1, _ := c.Start(first, "First message.\n\nWith two paragraphs.")
	// First reveal barely underway when the second preempts it.
	c.Advance(gen1)

	gen2, _ := c.Start(second, "Second message.")

	// The first surface must hold the complete first text, never a partial.
	wantFirst := segment.Join(segment.Split("First message.\n\nWith two paragraphs."))
	if got := strings.Join(first.blocks, "\n\n"); got != wantFirst {
		t.Errorf("preempted surface = %q, want complete %q", got, wantFirst)
	}

	// Stale ticks from the first reveal are discarded.
	if kind, _ := c.Advance(gen1); kind != StepNone {
		t.Errorf("stale advance = %v, want StepNone", kind)
	}

	drain(t, &c, gen2)
	if got := strings.Join(second.blocks, "\n\n"); got != "Second message." {
		t.Errorf("second surface = %q", got)
	}
}

func TestControllerStopIdempotent(t *testing.T) {
	var c Controller

	// Safe with nothing running.
	c.Stop(true)
	c.Stop(false)

	surface := &fakeSurface{}
	gen, _ := c.Start(surface, "Some text to reveal.")
	c.Advance(gen)

	c.Stop(true)
	if got := strings.Join(surface.blocks, "\n\n"); got != "Some text to reveal." {
		t.Errorf("surface after Stop(true) = %q, want complete text", got)
	}
	if c.Running() {
		t.Error("controller running after Stop")
	}

	// Second stop is a no-op; the surface is untouched.
	sets := surface.sets
	c.Stop(true)
	if surface.sets != sets {
		t.Error("Stop rewrote the surface after reset")
	}
}

func TestControllerStopWithoutComplete(t *testing.T) {
	var c Controller
	surface := &fakeSurface{}

	gen, _ := c.Start(surface, "Hello there.")
	c.Advance(gen)
	partial := strings.Join(surface.blocks, "\n\n")

	c.Stop(false)
	if got := strings.Join(surface.blocks, "\n\n"); got != partial {
		t.Errorf("Stop(false) altered surface: %q -> %q", partial, got)
	}
	if kind, _ := c.Advance(gen); kind != StepNone {
		t.Errorf("advance after stop = %v, want StepNone", kind)
	}
}
