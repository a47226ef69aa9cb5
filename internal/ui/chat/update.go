// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the advisor chat view for the TUI.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buai-tui/internal/model"
	"github.com/jeranaias/buai-tui/internal/segment"
	"github.com/jeranaias/buai-tui/internal/typewriter"
)

// Notices shown in the visual log. Wording is part of the product surface;
// tests pin it.
const (
	noticeLocalOnly     = "Warning: Database connection failed. Showing AI response locally only."
	noticeDeliveryError = "System Error: Sorry, the API call or external service failed."
)

// structuredFallbackPrefix introduces the raw payload when a structured
// reply cannot be decoded.
const structuredFallbackPrefix = "I tried to generate a structured list, but encountered an error. Here is the raw response: "

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages for the chat view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendResultMsg:
		return m.handleSendResult(msg)

	case FeedRecordMsg:
		return m.handleFeedRecord(msg)

	case FeedClosedMsg:
		// Log gone mid-session; future sends fall back to local mode.
		m.log = nil
		m.feed = nil
		return m, nil

	case TypeTickMsg:
		return m.handleTypeTick(msg)

	case ExportResultMsg:
		return m.handleExportResult(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateComponents(msg)
}

// updateComponents routes messages the chat handlers did not consume to
// the focused input and the viewport.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// RESIZE
// =============================================================================

// handleResize recomputes the layout. Fixed rows: header (1), thinking
// line (1), input (3 with border), status bar (1); the viewport takes the
// rest.
func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	const fixedRows = 1 + 1 + 3 + 1
	vpHeight := m.height - fixedRows
	if vpHeight < 1 {
		vpHeight = 1
	}

	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.ready = true
	m.input.Width = m.width - 6

	m.syncViewport()
	return m
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		// Skip to the end of the current reveal.
		if m.typew.Running() {
			m.typew.Stop(true)
			m.syncViewport()
		}
		return m, nil

	case "enter":
		return m.submitInput()

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SENDING
// =============================================================================

// submitInput starts one send. Empty input and in-flight sends are dropped
// without feedback; slash commands are dispatched instead of sent.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" || m.sending {
		return m, nil
	}
	if strings.HasPrefix(content, "/") {
		m.input.Reset()
		return m.handleCommand(content)
	}

	// A new exchange preempts any reveal still running.
	m.typew.Stop(true)

	m.sending = true
	m.state = StateSending
	m.loading = true
	m.input.Reset()
	m.input.Blur()

	if m.log == nil && !m.localWarned {
		m.localWarned = true
		m.appendNotice(noticeLocalOnly)
	}
	m.syncViewport()

	return m, tea.Batch(m.spinner.Tick, m.sendCmd(content))
}

// sendCmd performs the full exchange off the UI loop: persist the outgoing
// message, obtain the reply, persist the reply. Rendering happens when the
// log feed delivers the records back; in local mode the reply rides home
// on the result message instead.
func (m *Model) sendCmd(text string) tea.Cmd {
	log := m.log
	client := m.client
	viewerID := m.sess.ViewerID

	return func() tea.Msg {
		ctx := context.Background()

		if log != nil {
			if _, err := log.Append(ctx, viewerID, text, ""); err != nil {
				return SendResultMsg{Err: err}
			}
		}

		reply := client.GenerateReply(ctx, text)

		if log != nil {
			if _, err := log.Append(ctx, model.AssistantID, reply, ""); err != nil {
				return SendResultMsg{Err: err}
			}
			return SendResultMsg{}
		}
		return SendResultMsg{LocalReply: reply, Timestamp: time.Now()}
	}
}

// handleSendResult closes out a send. Runs exactly once per submission,
// so input re-enabling lives here and nowhere else.
func (m Model) handleSendResult(msg SendResultMsg) (tea.Model, tea.Cmd) {
	m.sending = false
	m.loading = false
	m.state = StateIdle
	m.input.Focus()

	cmds := []tea.Cmd{textinput.Blink}

	switch {
	case msg.Err != nil:
		m.appendNotice(noticeDeliveryError)

	case msg.LocalReply != "":
		rec := model.ChatMessage{
			SenderID:  model.AssistantID,
			Text:      msg.LocalReply,
			Timestamp: msg.Timestamp,
		}
		if cmd := m.renderIncoming(rec, true); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	m.syncViewport()
	return m, tea.Batch(cmds...)
}

// =============================================================================
// FEED
// =============================================================================

// handleFeedRecord renders one appended record and re-arms the pump.
// Records already covered by the history replay are dropped by sequence.
func (m Model) handleFeedRecord(msg FeedRecordMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForRecord(m.feed)}

	rec := msg.Record
	if rec.Seq > m.lastSeq {
		m.lastSeq = rec.Seq
		if m.sending && rec.SenderID == m.sess.ViewerID {
			m.state = StateAwaitingReply
		}
		if cmd := m.renderIncoming(rec, true); cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.syncViewport()
	}

	return m, tea.Batch(cmds...)
}

// =============================================================================
// INCOMING RENDER DISPATCH
// =============================================================================

// renderIncoming appends one record to the visual log. isNew marks records
// that arrived after startup; only those qualify for animation. The
// returned command, when non-nil, drives the reveal that was started.
func (m *Model) renderIncoming(rec model.ChatMessage, isNew bool) tea.Cmd {
	sender := model.ResolveSender(rec.SenderID, m.sess.ViewerID)
	if sender == model.SenderOther {
		// Another viewer's message in the shared log; this client only
		// shows its own conversation.
		return nil
	}

	if rec.HasStructuredData() {
		return m.renderStructured(rec, sender, isNew)
	}
	return m.renderPlain(rec, sender, isNew)
}

// renderPlain appends a text bubble. A newly arrived assistant reply with
// no structured payload is revealed progressively; everything else renders
// complete in one shot.
func (m *Model) renderPlain(rec model.ChatMessage, sender model.Sender, isNew bool) tea.Cmd {
	e := &entry{kind: entryBubble, sender: sender}
	m.entries = append(m.entries, e)

	if isNew && sender == model.SenderAssistant && !rec.HasStructuredData() {
		m.loading = false
		gen, delay := m.typew.Start(entrySurface{e: e}, rec.Text)
		if delay > 0 {
			return typeTick(gen, delay)
		}
		return nil
	}

	e.blocks = segment.Split(rec.Text)
	return nil
}

// renderStructured appends course cards. A payload that fails to decode
// falls back to a plain bubble carrying the raw string, prefixed so the
// reader knows what they are looking at; the fallback never animates
// because the record still carries structured data.
func (m *Model) renderStructured(rec model.ChatMessage, sender model.Sender, isNew bool) tea.Cmd {
	// Structured content replaces whatever reveal is still in flight.
	m.typew.Stop(true)

	courses, err := model.DecodeCourses(rec.StructuredData)
	if err != nil {
		rec.Text = structuredFallbackPrefix + rec.StructuredData
		return m.renderPlain(rec, sender, isNew)
	}

	if isNew {
		m.loading = false
	}
	m.entries = append(m.entries, &entry{kind: entryCards, sender: sender, courses: courses})
	return nil
}

// appendNotice adds a system line to the visual log.
func (m *Model) appendNotice(text string) {
	m.entries = append(m.entries, &entry{kind: entryNotice, notice: text})
}

// =============================================================================
// REVEAL TICKS
// =============================================================================

// handleTypeTick advances the reveal one step and schedules the next one.
// Stale ticks, from a reveal that was preempted or skipped, do nothing.
func (m Model) handleTypeTick(msg TypeTickMsg) (tea.Model, tea.Cmd) {
	kind, delay := m.typew.Advance(msg.Gen)
	if kind == typewriter.StepNone {
		return m, nil
	}

	m.syncViewport()
	if delay > 0 {
		return m, typeTick(msg.Gen, delay)
	}
	return m, nil
}
