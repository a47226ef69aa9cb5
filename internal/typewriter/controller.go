// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package typewriter

import "time"

// Surface is the render target of a reveal: the content area of one
// message in the visual log. SetBlocks replaces the visible paragraph
// blocks wholesale; callers auto-scroll after every mutation.
type Surface interface {
	SetBlocks(blocks []string)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the process-wide typing state and enforces single-flight:
// at most one reveal is running at any instant, and starting a new one
// synchronously finalizes the previous one first.
//
// The controller lives inside the UI model and is only touched from the
// single update loop, so it needs no locking. Scheduled steps carry the
// generation they were issued for; a step whose generation is stale (the
// reveal was preempted or stopped) is discarded in Advance, which is how
// pending timers are "cancelled" in a message-driven loop.
type Controller struct {
	state   State
	surface Surface
	gen     uint64

	// Cadence overrides; the package constants apply when zero.
	CharDelay      time.Duration
	ParagraphDelay time.Duration
}

// delayFor maps a step kind to the configured cadence.
func (c *Controller) delayFor(kind StepKind) time.Duration {
	switch kind {
	case StepChar:
		if c.CharDelay > 0 {
			return c.CharDelay
		}
	case StepParagraph:
		if c.ParagraphDelay > 0 {
			return c.ParagraphDelay
		}
	}
	return kind.Delay()
}

// Start begins revealing fullText into surface. Any in-flight reveal is
// completed instantly first, so no two reveals ever interleave writes.
// It performs the first step immediately and returns the generation to
// attach to the scheduled follow-up step, plus its delay.
func (c *Controller) Start(surface Surface, fullText string) (uint64, time.Duration) {
	c.Stop(true)

	c.gen++
	c.surface = surface
	c.state = NewState(fullText)
	surface.SetBlocks(nil)

	_, delay := c.Advance(c.gen)
	return c.gen, delay
}

// Stop cancels the reveal. With instantComplete set and a live target, the
// surface content is replaced with the fully-rendered blocks in one shot.
// Stop is idempotent and safe to call when nothing is running; the typing
// state is always reset to its empty form afterward.
func (c *Controller) Stop(instantComplete bool) {
	if instantComplete && c.surface != nil && c.state.Running {
		c.surface.SetBlocks(c.state.Complete())
	}
	c.state = State{}
	c.surface = nil
	c.gen++ // invalidates any step still scheduled
}

// Advance executes one scheduled step. Steps from a superseded generation
// report StepNone and change nothing. Otherwise the surface is updated
// with the newly visible blocks and the cadence for the next step is
// returned; a zero delay means no further step is due.
func (c *Controller) Advance(gen uint64) (StepKind, time.Duration) {
	if gen != c.gen || !c.state.Running {
		return StepNone, 0
	}

	next, kind := c.state.Step()
	c.state = next

	switch kind {
	case StepChar, StepParagraph:
		c.surface.SetBlocks(c.state.Visible())
	case StepDone:
		c.surface.SetBlocks(c.state.Complete())
		c.surface = nil
		c.state = State{}
	}

	return kind, c.delayFor(kind)
}

// Running reports whether a reveal is currently in flight.
func (c *Controller) Running() bool {
	return c.state.Running
}

// Generation returns the current reveal generation. Ticks carrying an
// older generation are stale.
func (c *Controller) Generation() uint64 {
	return c.gen
}
