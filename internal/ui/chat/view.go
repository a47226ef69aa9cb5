// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the advisor chat view for the TUI.
//
// This file contains the rendering logic: the overall layout, the visual
// log entries (bubbles, course cards, notices), the thinking line, the
// input box and the status bar.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/buai-tui/internal/model"
	"github.com/jeranaias/buai-tui/internal/segment"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat layout.
// Layout: header (1) + messages (viewport) + thinking (1) + input (3) + status (1).
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderThinking(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Bu.ai")
	sub := " | Binghamton Academic Advisor"
	return m.theme.Header.Width(m.width).Render(title + sub)
}

// renderThinking occupies one line; blank when no reply is pending.
func (m Model) renderThinking() string {
	if !m.loading {
		return ""
	}
	return m.theme.Loading.Render(m.spinner.View() + " Bu.ai is thinking...")
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf("User ID: %s (Public Chat)", m.sess.ShortID())
	if m.log == nil {
		left += "  [Local Mode]"
	}

	var right string
	switch m.state {
	case StateSending:
		right = "sending"
	case StateAwaitingReply:
		right = "awaiting reply"
	default:
		right = "ready"
	}

	line := left + "  |  " + right
	line = runewidth.Truncate(line, m.width-2, "...")
	return m.theme.StatusBar.Width(m.width).Render(line)
}

// =============================================================================
// VISUAL LOG
// =============================================================================

// syncViewport re-renders the visual log into the viewport and follows the
// newest content. Every mutation of the log or a reveal step goes through
// here so the conversation always tracks its tail.
func (m *Model) syncViewport() {
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m *Model) renderEntries() string {
	parts := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		parts = append(parts, m.renderEntry(e))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderEntry(e *entry) string {
	switch e.kind {
	case entryNotice:
		return m.theme.SystemNotice.Width(m.contentWidth()).Render("[ " + e.notice + " ]")
	case entryCards:
		return m.renderCards(e)
	default:
		return m.renderBubble(e)
	}
}

func (m *Model) renderBubble(e *entry) string {
	label := m.theme.SenderLabel.Render(e.sender.DisplayName())

	style := m.theme.AssistantBubble
	if e.sender == model.SenderViewer {
		style = m.theme.UserBubble
	}

	body := segment.Join(e.blocks)
	bubble := style.MaxWidth(m.contentWidth()).Render(body)
	return label + "\n" + bubble
}

// renderCards renders a structured reply as one bordered card per course.
func (m *Model) renderCards(e *entry) string {
	label := m.theme.SenderLabel.Render(e.sender.DisplayName())

	parts := []string{label}
	for _, c := range e.courses {
		title := m.theme.CourseTitle.Render(c.CourseID + " - " + c.Name)
		desc := m.theme.CourseDesc.Render(c.Description)
		parts = append(parts, m.theme.CourseCard.MaxWidth(m.contentWidth()).Render(title+"\n"+desc))
	}
	return strings.Join(parts, "\n")
}

// contentWidth is the usable width inside the viewport.
func (m *Model) contentWidth() int {
	w := m.viewport.Width - 2
	if w < 20 {
		w = 20
	}
	return w
}
