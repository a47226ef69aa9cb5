// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package segment normalizes raw advisor text into paragraph blocks for
// progressive reveal or static display.
package segment

import (
	"regexp"
	"strings"
)

// Separator is the paragraph separator the advisor persona is instructed
// to use between distinct paragraphs and list blocks.
const Separator = "\n\n"

var (
	// A line starting a bulleted or numbered list item gets its own
	// paragraph break, unless one is already there (the consumed
	// whitespace run collapses to exactly one blank line either way).
	listItemRe = regexp.MustCompile(`\n\s*([*-]|\d+\.)`)

	// Sentence-terminating punctuation followed by a line break and a
	// capital letter or emphasis marker marks a paragraph boundary.
	sentenceRe = regexp.MustCompile(`([.?!])\s*\n\s*([A-Z*])`)
)

// Split normalizes raw text and splits it into ordered paragraph blocks.
//
// Split is pure and total: the same input always yields the same block
// sequence, and malformed input simply yields a single block. Single
// newlines inside a block are preserved; they render as explicit line
// breaks within the paragraph.
func Split(raw string) []string {
	s := listItemRe.ReplaceAllString(raw, "\n\n${1}")
	s = sentenceRe.ReplaceAllString(s, "${1}\n\n${2}")
	return strings.Split(s, Separator)
}

// Join is the inverse of the display layout: blocks joined back into the
// paragraph-separated form used for instant rendering.
func Join(blocks []string) string {
	return strings.Join(blocks, Separator)
}
