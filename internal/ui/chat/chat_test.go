// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/buai-tui/internal/model"
	"github.com/jeranaias/buai-tui/internal/segment"
	"github.com/jeranaias/buai-tui/internal/session"
	"github.com/jeranaias/buai-tui/internal/store"
	"github.com/jeranaias/buai-tui/internal/typewriter"
)

// fakeReplier returns a canned reply and counts calls.
type fakeReplier struct {
	reply string
	calls int
}

func (f *fakeReplier) GenerateReply(_ context.Context, _ string) string {
	f.calls++
	return f.reply
}

func newLocalModel(reply string) Model {
	return New(Options{
		Session: session.New(false),
		Client:  &fakeReplier{reply: reply},
	})
}

// runReveal pumps reveal ticks until the controller stops. The cap guards
// against a reveal that never terminates.
func runReveal(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 10000 && m.typew.Running(); i++ {
		updated, _ := m.Update(TypeTickMsg{Gen: m.typew.Generation()})
		m = updated.(Model)
	}
	require.False(t, m.typew.Running(), "reveal did not terminate")
	return m
}

// =============================================================================
// INCOMING RENDER DISPATCH
// =============================================================================

func TestRenderIncomingStructuredCards(t *testing.T) {
	m := newLocalModel("")
	base := len(m.entries)

	rec := model.ChatMessage{
		SenderID:       model.AssistantID,
		StructuredData: `[{"courseID":"CS 101","name":"Intro to CS","description":"First course."}]`,
	}
	cmd := m.renderIncoming(rec, true)

	assert.Nil(t, cmd)
	require.Len(t, m.entries, base+1)
	e := m.entries[base]
	assert.Equal(t, entryCards, e.kind)
	require.Len(t, e.courses, 1)
	assert.Equal(t, "CS 101", e.courses[0].CourseID)
	assert.False(t, m.typew.Running(), "structured replies never animate")
}

func TestRenderIncomingStructuredFallback(t *testing.T) {
	m := newLocalModel("")
	base := len(m.entries)

	rec := model.ChatMessage{
		SenderID:       model.AssistantID,
		StructuredData: "this is not json",
	}
	cmd := m.renderIncoming(rec, true)

	assert.Nil(t, cmd)
	require.Len(t, m.entries, base+1)
	e := m.entries[base]
	assert.Equal(t, entryBubble, e.kind)

	want := segment.Split(structuredFallbackPrefix + "this is not json")
	assert.Equal(t, want, e.blocks, "fallback renders the raw payload instantly")
	assert.False(t, m.typew.Running(), "malformed structured payload must not animate")
}

func TestRenderIncomingOtherSenderFiltered(t *testing.T) {
	m := newLocalModel("")
	base := len(m.entries)

	rec := model.ChatMessage{SenderID: "someone-else", Text: "hi"}
	cmd := m.renderIncoming(rec, true)

	assert.Nil(t, cmd)
	assert.Len(t, m.entries, base, "other viewers' messages are not shown")
}

func TestRenderIncomingHistoryIsStatic(t *testing.T) {
	m := newLocalModel("")
	base := len(m.entries)

	rec := model.ChatMessage{SenderID: model.AssistantID, Text: "First.\nSecond paragraph."}
	cmd := m.renderIncoming(rec, false)

	assert.Nil(t, cmd)
	require.Len(t, m.entries, base+1)
	assert.Equal(t, segment.Split(rec.Text), m.entries[base].blocks)
	assert.False(t, m.typew.Running())
}

func TestRenderIncomingNewAssistantAnimates(t *testing.T) {
	m := newLocalModel("")
	base := len(m.entries)

	rec := model.ChatMessage{SenderID: model.AssistantID, Text: "Hello there"}
	cmd := m.renderIncoming(rec, true)

	assert.NotNil(t, cmd, "a new assistant reply schedules reveal ticks")
	assert.True(t, m.typew.Running())

	m = runReveal(t, m)
	assert.Equal(t, segment.Split(rec.Text), m.entries[base].blocks)
}

// =============================================================================
// SINGLE-FLIGHT SEND
// =============================================================================

func TestSubmitDroppedWhileSending(t *testing.T) {
	m := newLocalModel("ok")
	m.sending = true
	m.input.SetValue("second message")

	updated, cmd := m.submitInput()
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, "second message", m.input.Value(), "dropped submit leaves the input untouched")
}

func TestSubmitEmptyDropped(t *testing.T) {
	m := newLocalModel("ok")
	m.input.SetValue("   ")

	_, cmd := m.submitInput()
	assert.Nil(t, cmd)
}

// =============================================================================
// LOCAL MODE
// =============================================================================

func TestLocalModeSendRendersReplyWithoutEcho(t *testing.T) {
	reply := "You need 126 credits.\nSee the bulletin for details."
	m := newLocalModel(reply)
	base := len(m.entries)

	m.input.SetValue("how many credits to graduate?")
	updated, cmd := m.submitInput()
	m = updated.(Model)
	require.NotNil(t, cmd)

	// One-time local notice, no echoed user bubble.
	require.Len(t, m.entries, base+1)
	assert.Equal(t, entryNotice, m.entries[base].kind)
	assert.Equal(t, noticeLocalOnly, m.entries[base].notice)
	assert.True(t, m.sending)

	// Run the exchange and deliver its result.
	res := m.sendCmd("how many credits to graduate?")()
	sendRes, ok := res.(SendResultMsg)
	require.True(t, ok)
	assert.Equal(t, reply, sendRes.LocalReply)

	updated, _ = m.Update(sendRes)
	m = updated.(Model)
	assert.False(t, m.sending, "result re-enables input")

	require.Len(t, m.entries, base+2)
	m = runReveal(t, m)
	assert.Equal(t, segment.Split(reply), m.entries[base+1].blocks)
}

func TestLocalNoticeShownOnce(t *testing.T) {
	m := newLocalModel("ok")

	m.input.SetValue("first")
	updated, _ := m.submitInput()
	m = updated.(Model)
	m.sending = false

	base := len(m.entries)
	m.input.SetValue("second")
	updated, _ = m.submitInput()
	m = updated.(Model)

	assert.Len(t, m.entries, base, "the local-mode warning appears once per session")
}

func TestSendErrorNotice(t *testing.T) {
	m := newLocalModel("ok")
	m.sending = true
	m.loading = true
	base := len(m.entries)

	updated, _ := m.Update(SendResultMsg{Err: assert.AnError})
	m = updated.(Model)

	assert.False(t, m.sending)
	assert.False(t, m.loading)
	require.Len(t, m.entries, base+1)
	assert.Equal(t, noticeDeliveryError, m.entries[base].notice)
}

// =============================================================================
// PERSISTED FLOW
// =============================================================================

func TestPersistedSendRoundTrip(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "messages.db"))
	require.NoError(t, err)
	defer s.Close()

	feed := s.Subscribe(16)
	reply := "MATH 224 covers differential calculus.\n\nIt runs every fall."
	sess := session.New(true)

	m := New(Options{
		Session: sess,
		Log:     s,
		Client:  &fakeReplier{reply: reply},
		Feed:    feed,
	})
	base := len(m.entries)

	m.input.SetValue("tell me about MATH 224")
	updated, cmd := m.submitInput()
	m = updated.(Model)
	require.NotNil(t, cmd)

	// The exchange persists both sides before reporting success.
	res := m.sendCmd("tell me about MATH 224")()
	sendRes, ok := res.(SendResultMsg)
	require.True(t, ok)
	require.NoError(t, sendRes.Err)
	assert.Empty(t, sendRes.LocalReply)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, sess.ViewerID, all[0].SenderID)
	assert.Equal(t, model.AssistantID, all[1].SenderID)
	assert.Equal(t, reply, all[1].Text)

	// Feed delivers the records in sequence order; render both.
	for i := 0; i < 2; i++ {
		select {
		case rec := <-feed:
			updated, _ := m.Update(FeedRecordMsg{Record: rec})
			m = updated.(Model)
		case <-time.After(time.Second):
			t.Fatal("feed record not delivered")
		}
	}

	require.Len(t, m.entries, base+2)
	assert.Equal(t, model.SenderViewer, m.entries[base].sender)
	assert.Equal(t, segment.Split("tell me about MATH 224"), m.entries[base].blocks)

	assert.Equal(t, model.SenderAssistant, m.entries[base+1].sender)
	m = runReveal(t, m)
	assert.Equal(t, segment.Split(reply), m.entries[base+1].blocks)
}

func TestFeedDedupeBySequence(t *testing.T) {
	m := newLocalModel("")
	m.feed = make(chan model.ChatMessage) // re-armed pump needs a channel
	m.lastSeq = 5
	base := len(m.entries)

	updated, _ := m.Update(FeedRecordMsg{Record: model.ChatMessage{
		Seq:      5,
		SenderID: model.AssistantID,
		Text:     "already replayed",
	}})
	m = updated.(Model)

	assert.Len(t, m.entries, base, "records at or below lastSeq are duplicates")
}

// =============================================================================
// REVEAL PREEMPTION
// =============================================================================

func TestNewSendPreemptsRunningReveal(t *testing.T) {
	reply := "Paragraph one is long enough to still be typing.\n\nParagraph two."
	m := newLocalModel(reply)
	base := len(m.entries)

	cmd := m.renderIncoming(model.ChatMessage{SenderID: model.AssistantID, Text: reply}, true)
	require.NotNil(t, cmd)
	staleGen := m.typew.Generation()

	// A few steps in, the user sends again.
	for i := 0; i < 5; i++ {
		updated, _ := m.Update(TypeTickMsg{Gen: staleGen})
		m = updated.(Model)
	}
	require.True(t, m.typew.Running())

	m.input.SetValue("next question")
	updated, _ := m.submitInput()
	m = updated.(Model)

	assert.Equal(t, segment.Split(reply), m.entries[base].blocks,
		"preempted reveal completes instantly")

	// The preempted reveal's pending tick is now inert.
	updated, tick := m.Update(TypeTickMsg{Gen: staleGen})
	m = updated.(Model)
	assert.Nil(t, tick)
	assert.Equal(t, segment.Split(reply), m.entries[base].blocks)
}

func TestEscSkipsReveal(t *testing.T) {
	reply := "A reasonably long paragraph for the skip test."
	m := newLocalModel(reply)
	base := len(m.entries)

	require.NotNil(t, m.renderIncoming(model.ChatMessage{SenderID: model.AssistantID, Text: reply}, true))
	require.True(t, m.typew.Running())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	assert.False(t, m.typew.Running())
	assert.Equal(t, segment.Split(reply), m.entries[base].blocks)
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestClearCommandKeepsSequenceCursor(t *testing.T) {
	m := newLocalModel("")
	m.lastSeq = 42
	m.renderIncoming(model.ChatMessage{SenderID: model.AssistantID, Text: "old"}, false)

	m.input.SetValue("/clear")
	updated, _ := m.submitInput()
	m = updated.(Model)

	require.Len(t, m.entries, 1, "clear leaves only the greeting")
	assert.Equal(t, int64(42), m.lastSeq, "clear must not replay persisted records")
}

func TestUnknownCommandNotice(t *testing.T) {
	m := newLocalModel("")
	base := len(m.entries)

	m.input.SetValue("/bogus")
	updated, _ := m.submitInput()
	m = updated.(Model)

	require.Len(t, m.entries, base+1)
	assert.Equal(t, entryNotice, m.entries[base].kind)
	assert.Contains(t, m.entries[base].notice, "/bogus")
}

func TestQuitCommand(t *testing.T) {
	m := newLocalModel("")
	m.input.SetValue("/quit")

	updated, cmd := m.submitInput()
	m = updated.(Model)

	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func TestTranscriptMarkdown(t *testing.T) {
	m := newLocalModel("")
	m.entries = nil
	m.renderIncoming(model.ChatMessage{SenderID: m.sess.ViewerID, Text: "question"}, false)
	m.renderIncoming(model.ChatMessage{
		SenderID:       model.AssistantID,
		StructuredData: `[{"courseID":"CS 101","name":"Intro","description":"Basics."}]`,
	}, false)
	m.appendNotice("note")

	md := m.transcriptMarkdown()
	assert.True(t, strings.HasPrefix(md, "# Bu.ai Conversation"))
	assert.Contains(t, md, "**You:**\n\nquestion")
	assert.Contains(t, md, "- **CS 101 - Intro**: Basics.")
	assert.Contains(t, md, "> note")
}

// Guards the reveal/cadence wiring: a stale generation tick never steps.
func TestStaleTickIsNoOp(t *testing.T) {
	m := newLocalModel("")
	kind, delay := m.typew.Advance(999)
	assert.Equal(t, typewriter.StepNone, kind)
	assert.Equal(t, time.Duration(0), delay)
}
