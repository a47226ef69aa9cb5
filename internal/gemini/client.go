// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// PersonaPrompt is the fixed system instruction describing the advisor
// persona and its formatting convention. The double-newline rule is what
// the segmentation and reveal pipeline keys off.
const PersonaPrompt = "You are Bu.ai, a friendly and professional academic advisor bot for " +
	"Binghamton University students. Your primary role is to answer questions about courses, " +
	"graduation requirements, majors, and academic policies at Binghamton. " +
	"Keep your responses concise, helpful, and encouraging. " +
	"Ensure that bulleted lists and distinct paragraphs are separated by a double newline (\\n\\n) " +
	"for best readability."

// Fixed fallback strings. The caller never sees an error; it sees one of
// these or the model's reply.
const (
	DefaultApology  = "Sorry, I encountered an issue connecting to the core advisory model. Please try again in a moment."
	NoValidResponse = "The model did not return a valid text response."
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Gemini client.
type ClientConfig struct {
	// BaseURL is the API base URL (default: the public v1beta endpoint)
	BaseURL string

	// Model is the generation model name (default: "gemini-2.5-flash")
	Model string

	// APIKey is sent as x-goog-api-key when set. Leave empty when the
	// hosting environment injects credentials.
	APIKey string

	// Timeout for a single request attempt (default: 30s)
	Timeout time.Duration

	// MaxRetries is the total number of delivery attempts (default: 3)
	MaxRetries int

	// InitialBackoff is the wait before the second attempt; it doubles
	// for every retry after that (default: 1s -> 1s, 2s, ...)
	InitialBackoff time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
		Model:          "gemini-2.5-flash",
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
	}
}

// =============================================================================
// RESULT KINDS
// =============================================================================

// resultKind classifies one delivery attempt. Transient failures are
// retried because they are expected to self-resolve; a malformed success
// body is a content defect that retrying cannot fix, so it short-circuits.
type resultKind int

const (
	resultOK resultKind = iota
	resultRetryable
	resultContentDefect
)

// =============================================================================
// CLIENT
// =============================================================================

// Client issues generateContent requests with bounded retry and
// exponential backoff. It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client

	// sleep realizes the backoff wait; injectable for tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = 1 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		sleep: sleepContext,
	}
}

// =============================================================================
// GENERATION
// =============================================================================

// GenerateReply fetches a model reply for userMessage.
//
// It never fails from the caller's perspective: transient failures are
// retried up to MaxRetries with doubling backoff and exhausted attempts
// yield DefaultApology; a well-formed response without usable text yields
// NoValidResponse immediately.
func (c *Client) GenerateReply(ctx context.Context, userMessage string) string {
	payload := GenerateRequest{
		Contents: []Content{
			{Parts: []Part{{Text: userMessage}}},
		},
		SystemInstruction: &Content{
			Parts: []Part{{Text: PersonaPrompt}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return DefaultApology
	}

	response := DefaultApology
	delay := c.config.InitialBackoff

	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		text, kind := c.attempt(ctx, body)

		if kind == resultOK {
			response = text
			break
		}
		if kind == resultContentDefect {
			response = NoValidResponse
			break
		}

		// Retryable failure: wait and try again, unless this was the
		// final attempt, in which case the apology stands.
		if attempt < c.config.MaxRetries-1 {
			c.sleep(ctx, delay)
			delay *= 2
		}
	}

	return response
}

// attempt performs one delivery and classifies the outcome.
func (c *Client) attempt(ctx context.Context, body []byte) (string, resultKind) {
	url := c.config.BaseURL + "/models/" + c.config.Model + ":generateContent"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", resultRetryable
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("x-goog-api-key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", resultRetryable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", resultRetryable
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// An unreadable success body counts as a delivery failure.
		return "", resultRetryable
	}

	text, ok := result.Text()
	if !ok {
		// Shape problem in an otherwise successful response; retrying
		// cannot fix it.
		return "", resultContentDefect
	}

	return text, resultOK
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
