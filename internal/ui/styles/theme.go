// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the buai TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// PALETTE
// =============================================================================

// Bing green, the campus accent color.
var Green = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

var GreenDeep = lipgloss.AdaptiveColor{Light: "#065F46", Dark: "#064E3B"}

var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#D1FAE5", Dark: "#065F46"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#064E3B", Dark: "#ECFDF5"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#10B981"}

var AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#374151"}
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F9FAFB"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}

var CardBorder = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

// =============================================================================
// THEME
// =============================================================================

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// Message bubbles
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SenderLabel     lipgloss.Style
	SystemNotice    lipgloss.Style

	// Structured course cards
	CourseCard  lipgloss.Style
	CourseTitle lipgloss.Style
	CourseDesc  lipgloss.Style

	// Input area
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// Status bar
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	Loading     lipgloss.Style
}

// NewTheme creates the theme for the current terminal.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Green).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Green)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(8)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(8)

	t.SenderLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.SystemNotice = lipgloss.NewStyle().
		Italic(true).
		Foreground(TextMuted).
		Align(lipgloss.Center)

	// Course cards
	t.CourseCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(CardBorder).
		Background(SurfaceDim).
		Padding(0, 1).
		MarginBottom(1)

	t.CourseTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.CourseDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(GreenDeep).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Green)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusError = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.Loading = lipgloss.NewStyle().
		Italic(true).
		Foreground(TextSecondary)
}
