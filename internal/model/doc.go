// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the chat data model shared by the store, the
// request client, and the UI: messages, sender resolution, and the
// structured course payload.
package model
