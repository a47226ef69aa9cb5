// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the advisor chat view for the TUI.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buai-tui/internal/config"
	"github.com/jeranaias/buai-tui/internal/model"
	"github.com/jeranaias/buai-tui/internal/segment"
	"github.com/jeranaias/buai-tui/internal/session"
	"github.com/jeranaias/buai-tui/internal/typewriter"
	"github.com/jeranaias/buai-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateIdle          State = iota // Ready for input
	StateSending                    // Outgoing message in flight
	StateAwaitingReply              // Outgoing delivered, waiting on the model
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Replier produces the advisory model's reply for one user message. It
// never fails: transport problems surface as an apology string, which the
// pipeline renders like any other reply.
type Replier interface {
	GenerateReply(ctx context.Context, userMessage string) string
}

// Log is the persistence surface the pipeline writes through. A nil Log
// puts the pipeline in local mode: replies render directly and nothing
// survives the session.
type Log interface {
	Append(ctx context.Context, senderID, text, structuredData string) (model.ChatMessage, error)
}

// =============================================================================
// VISUAL LOG ENTRIES
// =============================================================================

type entryKind int

const (
	entryBubble entryKind = iota
	entryCards
	entryNotice
)

// entry is one rendered item in the visual log. Entries are held by
// pointer so an in-flight reveal can keep mutating its entry while the
// Bubble Tea model value is copied through Update.
type entry struct {
	kind   entryKind
	sender model.Sender

	// entryBubble: paragraph blocks, possibly partial during a reveal.
	blocks []string

	// entryCards: decoded structured payload.
	courses []model.Course

	// entryNotice: system notice text.
	notice string
}

// entrySurface adapts an entry to the reveal target interface. Auto-scroll
// happens in Update after every controller call, not here, so the surface
// stays a plain data sink.
type entrySurface struct {
	e *entry
}

func (s entrySurface) SetBlocks(blocks []string) {
	s.e.blocks = blocks
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the advisor chat view.
type Model struct {
	// State
	state   State
	sending bool // single-flight guard for submissions

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Collaborators
	sess   *session.Session
	log    Log // nil in local mode
	client Replier

	// Feed of appended records, in sequence order. Nil in local mode.
	feed <-chan model.ChatMessage

	// Visual log
	entries []*entry
	lastSeq int64 // highest record sequence already rendered

	// Reveal
	typew typewriter.Controller

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	loading  bool

	// One-shot flags
	localWarned bool

	quitting bool
}

// Options configures the chat view.
type Options struct {
	Session *session.Session
	Log     Log
	Client  Replier
	Feed    <-chan model.ChatMessage

	// History is the persisted conversation, replayed statically before
	// the feed takes over. Records arriving on the feed with a sequence
	// at or below the highest history sequence are dropped as duplicates.
	History []model.ChatMessage

	// UI carries cadence tuning; nil means defaults.
	UI *config.UIConfig
}

// New creates the chat model. History renders immediately; animation is
// reserved for records that arrive after startup.
func New(opts Options) Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Ask about courses, requirements, majors..."
	input.Prompt = theme.InputPrompt.Render("> ")
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Loading

	m := Model{
		state:   StateIdle,
		theme:   theme,
		sess:    opts.Session,
		log:     opts.Log,
		client:  opts.Client,
		feed:    opts.Feed,
		input:   input,
		spinner: sp,
	}

	if opts.UI != nil {
		m.typew.CharDelay = durationMs(opts.UI.CharDelayMs)
		m.typew.ParagraphDelay = durationMs(opts.UI.ParagraphDelayMs)
	}

	for i := range opts.History {
		rec := opts.History[i]
		if rec.Seq > m.lastSeq {
			m.lastSeq = rec.Seq
		}
		m.renderIncoming(rec, false)
	}
	if len(opts.History) == 0 {
		m.appendGreeting()
	}

	return m
}

// appendGreeting seeds an empty conversation with the advisor's opener.
func (m *Model) appendGreeting() {
	m.entries = append(m.entries, &entry{
		kind:   entryBubble,
		sender: model.SenderAssistant,
		blocks: segment.Split("Hello! I'm Bu.ai, your academic advisor for Binghamton University.\n\nAsk me about courses, graduation requirements, majors, or academic policies."),
	})
}

// Init starts the input cursor blink and, when a feed is attached, the
// long-running feed pump.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.feed != nil {
		cmds = append(cmds, waitForRecord(m.feed))
	}
	return tea.Batch(cmds...)
}

// visibleBlocks returns the rendered blocks of one visual log entry.
func (m *Model) visibleBlocks(i int) []string {
	if i < 0 || i >= len(m.entries) {
		return nil
	}
	return m.entries[i].blocks
}
