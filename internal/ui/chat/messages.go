// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the advisor chat view for the TUI.
//
// This file defines the Bubble Tea message types used by the chat view:
//   - Sending: delivery results for an outgoing message
//   - Feed: records arriving from the message log subscription
//   - Reveal: scheduled typewriter steps
//   - Export: transcript export results
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buai-tui/internal/model"
)

// =============================================================================
// SENDING MESSAGES
// =============================================================================

// SendResultMsg reports the outcome of one send. Exactly one arrives per
// submission, success or failure, which is what re-enables the input.
type SendResultMsg struct {
	// LocalReply is the model's reply when no log is attached; the view
	// renders it directly instead of waiting for a feed record.
	LocalReply string

	// Timestamp of the local reply.
	Timestamp time.Time

	// Err is set when persisting either side of the exchange failed.
	Err error
}

// =============================================================================
// FEED MESSAGES
// =============================================================================

// FeedRecordMsg delivers one appended record from the log subscription.
type FeedRecordMsg struct {
	Record model.ChatMessage
}

// FeedClosedMsg signals the subscription ended; no further records come.
type FeedClosedMsg struct{}

// waitForRecord blocks on the feed and converts the next record into a
// message. The handler re-issues it after every delivery, keeping exactly
// one pump reader alive for the life of the program.
func waitForRecord(feed <-chan model.ChatMessage) tea.Cmd {
	return func() tea.Msg {
		rec, ok := <-feed
		if !ok {
			return FeedClosedMsg{}
		}
		return FeedRecordMsg{Record: rec}
	}
}

// =============================================================================
// REVEAL MESSAGES
// =============================================================================

// TypeTickMsg triggers one reveal step. Gen pins the tick to the reveal it
// was scheduled for; the controller ignores ticks from a superseded reveal,
// which is how a preempted animation's pending timer dies.
type TypeTickMsg struct {
	Gen uint64
}

// typeTick schedules the next reveal step after delay.
func typeTick(gen uint64, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TypeTickMsg{Gen: gen}
	})
}

// =============================================================================
// EXPORT MESSAGES
// =============================================================================

// ExportResultMsg reports where the transcript landed, or why it did not.
type ExportResultMsg struct {
	Path string
	Err  error
}

// durationMs converts a millisecond count from config, clamping negatives.
func durationMs(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
