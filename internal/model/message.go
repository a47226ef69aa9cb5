// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and senders.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// AssistantID is the reserved sender identity for the advisor bot.
// Every message written by the model request pipeline carries this ID,
// and incoming records with this ID render on the assistant side.
const AssistantID = "bu.ai"

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender is the closed set of message authorship roles. Incoming records
// are resolved to a Sender exactly once, before rendering; stray identities
// (neither the viewer nor the assistant) resolve to SenderOther and are
// filtered out of the visual log.
type Sender int

const (
	SenderViewer Sender = iota
	SenderAssistant
	SenderOther
)

// ResolveSender classifies a raw sender identity against the viewer's
// session identity.
func ResolveSender(senderID, viewerID string) Sender {
	switch senderID {
	case AssistantID:
		return SenderAssistant
	case viewerID:
		return SenderViewer
	default:
		return SenderOther
	}
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderViewer:
		return "You"
	case SenderAssistant:
		return "Bu.ai"
	default:
		return "Unknown"
	}
}

// String returns the string representation of the sender.
func (s Sender) String() string {
	switch s {
	case SenderViewer:
		return "viewer"
	case SenderAssistant:
		return "assistant"
	default:
		return "other"
	}
}

// =============================================================================
// CHAT MESSAGE TYPE
// =============================================================================

// ChatMessage is a single message in the conversation log.
//
// Exactly one rendering path applies per message: StructuredData, when
// non-empty, takes the card-list path; otherwise Text takes the plain
// (possibly animated) path. Messages are immutable once created and are
// never deleted by the client.
type ChatMessage struct {
	// ID is a local identity assigned at creation. Seq is the store-assigned
	// ordering key and stays zero until the message has been persisted.
	ID  string `json:"id"`
	Seq int64  `json:"seq,omitempty"`

	SenderID string `json:"sender_id"`
	Text     string `json:"text"`

	// StructuredData is an optional JSON-encoded list of Course records.
	StructuredData string `json:"structured_data,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage creates an unpersisted message with a generated ID.
func NewChatMessage(senderID, text string) *ChatMessage {
	return &ChatMessage{
		ID:        generateID(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// HasStructuredData reports whether the card-list rendering path applies.
func (m *ChatMessage) HasStructuredData() bool {
	return m.StructuredData != ""
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m *ChatMessage) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	return string(runes[:maxLen-3]) + "..."
}

// generateID creates a unique local message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
