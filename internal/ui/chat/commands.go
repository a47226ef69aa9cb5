// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the advisor chat view for the TUI.
//
// This file implements the slash command registry: input starting with "/"
// is dispatched to an individual handler instead of being sent.
package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command. It receives the model and the
// arguments after the command word.
type CommandHandler func(m Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names to their handler functions.
var commandHandlers = map[string]CommandHandler{
	"help": handleHelpCommand,
	"h":    handleHelpCommand,
	"?":    handleHelpCommand,
	"quit": handleQuitCommand,
	"q":    handleQuitCommand,
	"exit": handleQuitCommand,

	"clear":  handleClearCommand,
	"c":      handleClearCommand,
	"export": handleExportCommand,
	"e":      handleExportCommand,
}

// handleCommand parses a slash command line and dispatches it.
func (m Model) handleCommand(raw string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.TrimPrefix(raw, "/"))
	if len(fields) == 0 {
		return m, nil
	}

	name := strings.ToLower(fields[0])
	handler, ok := commandHandlers[name]
	if !ok {
		m.appendNotice(fmt.Sprintf("Unknown command: /%s (try /help)", name))
		m.syncViewport()
		return m, nil
	}
	return handler(m, fields[1:])
}

// =============================================================================
// INDIVIDUAL HANDLERS
// =============================================================================

func handleHelpCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.appendNotice("Commands: /clear wipes the screen, /export saves a transcript, /quit exits. Esc skips the current reveal.")
	m.syncViewport()
	return m, nil
}

func handleQuitCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// handleClearCommand wipes the visual log only; persisted records are
// untouched and lastSeq keeps the feed from replaying them.
func handleClearCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.typew.Stop(false)
	m.entries = nil
	m.appendGreeting()
	m.syncViewport()
	return m, nil
}

func handleExportCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	// Finalize any reveal so the transcript carries complete text.
	m.typew.Stop(true)
	m.syncViewport()
	return m, exportTranscript(m.transcriptMarkdown())
}
