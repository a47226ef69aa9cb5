// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typewriter implements the interruptible reveal state machine
// that paces how advisor text appears on screen.
//
// The state machine is timer-independent: Step computes one transition and
// reports which cadence applies before the next one. The UI layer realizes
// the delays (tea.Tick) and guards against stale timers with the
// Controller's generation counter.
package typewriter

import (
	"time"

	"github.com/jeranaias/buai-tui/internal/segment"
)

// Cadences. The paragraph pause is 30x the character cadence, a brief
// beat between paragraphs. Tune-able, not invariants.
const (
	CharDelay      = 10 * time.Millisecond
	ParagraphDelay = 300 * time.Millisecond
)

// =============================================================================
// STEP KIND
// =============================================================================

// StepKind classifies a single transition of the reveal state machine.
type StepKind int

const (
	// StepNone means the step did not apply (not running, or preempted).
	StepNone StepKind = iota
	// StepChar revealed one character; reschedule at the character cadence.
	StepChar
	// StepParagraph finished a paragraph; reschedule at the paragraph cadence.
	StepParagraph
	// StepDone means the reveal ran past the last paragraph and stopped.
	StepDone
)

// Delay returns the cadence to wait before the step after this one.
func (k StepKind) Delay() time.Duration {
	switch k {
	case StepChar:
		return CharDelay
	case StepParagraph:
		return ParagraphDelay
	default:
		return 0
	}
}

// =============================================================================
// TYPING STATE
// =============================================================================

// State is the transient reveal state for one target text. The zero value
// is the empty, not-running state.
type State struct {
	// paragraphs are the pre-segmented blocks, stored as runes so each
	// step advances one character regardless of encoding width.
	paragraphs [][]rune

	ParagraphIndex int
	CharIndex      int
	Running        bool
}

// NewState segments fullText and positions the reveal at its beginning.
func NewState(fullText string) State {
	blocks := segment.Split(fullText)
	paragraphs := make([][]rune, len(blocks))
	for i, b := range blocks {
		paragraphs[i] = []rune(b)
	}
	return State{
		paragraphs: paragraphs,
		Running:    true,
	}
}

// Step performs one transition and returns the successor state.
//
// Past the last paragraph the reveal marks itself not-running and reports
// StepDone. With characters remaining in the current paragraph it reveals
// exactly one and reports StepChar. With the current paragraph exhausted
// it advances to the next and reports StepParagraph.
func (s State) Step() (State, StepKind) {
	if !s.Running {
		return s, StepNone
	}

	if s.ParagraphIndex >= len(s.paragraphs) {
		s.Running = false
		return s, StepDone
	}

	current := s.paragraphs[s.ParagraphIndex]
	if s.CharIndex < len(current) {
		s.CharIndex++
		return s, StepChar
	}

	s.ParagraphIndex++
	s.CharIndex = 0
	return s, StepParagraph
}

// Visible returns the paragraph blocks revealed so far: every completed
// paragraph in full, plus the revealed prefix of the current one. A block
// appears the moment its first character does.
func (s State) Visible() []string {
	if len(s.paragraphs) == 0 {
		return nil
	}

	var blocks []string
	for i := 0; i < s.ParagraphIndex && i < len(s.paragraphs); i++ {
		blocks = append(blocks, string(s.paragraphs[i]))
	}
	if s.ParagraphIndex < len(s.paragraphs) && s.CharIndex > 0 {
		current := s.paragraphs[s.ParagraphIndex]
		blocks = append(blocks, string(current[:s.CharIndex]))
	}
	return blocks
}

// Complete returns all paragraph blocks fully rendered.
func (s State) Complete() []string {
	blocks := make([]string, len(s.paragraphs))
	for i, p := range s.paragraphs {
		blocks[i] = string(p)
	}
	return blocks
}

// Done reports whether the reveal has run to completion or never started.
func (s State) Done() bool {
	return !s.Running
}
