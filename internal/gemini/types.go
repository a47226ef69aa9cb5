// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the generateContent endpoint.
package gemini

// =============================================================================
// WIRE TYPES
// =============================================================================

// Part is a single text fragment of a content block.
type Part struct {
	Text string `json:"text"`
}

// Content is an ordered list of parts.
type Content struct {
	Parts []Part `json:"parts"`
}

// GenerateRequest is the request body for generateContent.
type GenerateRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

// GenerateResponse is the subset of the response body the client reads.
// Success means candidates[0].content.parts[0].text is present.
type GenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Text extracts the first candidate's text content, if any.
func (r *GenerateResponse) Text() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", false
	}
	return parts[0].Text, true
}
