// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buai-tui/internal/segment"
	"github.com/jeranaias/buai-tui/internal/util"
)

// =============================================================================
// TRANSCRIPT EXPORT
// =============================================================================

// transcriptMarkdown renders the visual log as a Markdown document.
func (m *Model) transcriptMarkdown() string {
	var b strings.Builder
	b.WriteString("# Bu.ai Conversation\n\n")
	b.WriteString(fmt.Sprintf("Exported %s\n\n", time.Now().Format(time.RFC1123)))

	for _, e := range m.entries {
		switch e.kind {
		case entryNotice:
			b.WriteString(fmt.Sprintf("> %s\n\n", e.notice))
		case entryCards:
			b.WriteString(fmt.Sprintf("**%s:**\n\n", e.sender.DisplayName()))
			for _, c := range e.courses {
				b.WriteString(fmt.Sprintf("- **%s - %s**: %s\n", c.CourseID, c.Name, c.Description))
			}
			b.WriteString("\n")
		default:
			b.WriteString(fmt.Sprintf("**%s:**\n\n%s\n\n", e.sender.DisplayName(), segment.Join(e.blocks)))
		}
	}
	return b.String()
}

// exportTranscript writes the transcript next to the user's home directory
// with a timestamped name. The write is atomic so a crash mid-export never
// leaves a half-written file.
func exportTranscript(content string) tea.Cmd {
	return func() tea.Msg {
		home, err := os.UserHomeDir()
		if err != nil {
			return ExportResultMsg{Err: err}
		}
		path := filepath.Join(home, fmt.Sprintf("buai-transcript-%s.md", time.Now().Format("20060102-150405")))
		if err := util.AtomicWriteFile(path, []byte(content), 0o644); err != nil {
			return ExportResultMsg{Err: err}
		}
		return ExportResultMsg{Path: path}
	}
}

// handleExportResult surfaces the outcome in the visual log.
func (m Model) handleExportResult(msg ExportResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendNotice(fmt.Sprintf("Export failed: %v", msg.Err))
	} else {
		m.appendNotice(fmt.Sprintf("Transcript saved to %s", msg.Path))
	}
	m.syncViewport()
	return m, nil
}
