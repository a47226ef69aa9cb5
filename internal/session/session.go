// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session supplies the per-session viewer identity.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is the identity collaborator: a stable per-session identifier
// used as the sender ID for outgoing messages, plus whether the
// persistence layer came up. When it did not, the client still functions;
// it renders locally and shows a one-time local-mode notice.
type Session struct {
	ViewerID  string
	StartedAt time.Time

	// PersistReady is false when the message log could not be opened.
	PersistReady bool
}

// New creates a session with a freshly generated viewer identity.
func New(persistReady bool) *Session {
	return &Session{
		ViewerID:     uuid.NewString(),
		StartedAt:    time.Now(),
		PersistReady: persistReady,
	}
}

// ShortID returns a truncated viewer ID for the status line.
func (s *Session) ShortID() string {
	if len(s.ViewerID) <= 10 {
		return s.ViewerID
	}
	return s.ViewerID[:10] + "..."
}
