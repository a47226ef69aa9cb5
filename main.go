// buai TUI - a terminal advisor chat for Binghamton University students.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buai-tui/internal/config"
	"github.com/jeranaias/buai-tui/internal/gemini"
	"github.com/jeranaias/buai-tui/internal/model"
	"github.com/jeranaias/buai-tui/internal/session"
	"github.com/jeranaias/buai-tui/internal/store"
	"github.com/jeranaias/buai-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "print version and exit")
		configPath  = flag.String("config", "", "config file (default ~/.buai/config.toml)")
		noPersist   = flag.Bool("no-persist", false, "run without the message log")
		dbPath      = flag.String("db", "", "message log location (default ~/.buai/messages.db)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("buai %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *noPersist {
		cfg.Store.Disabled = true
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// run wires the collaborators and hands control to Bubble Tea.
func run(cfg *config.Config) error {
	client := gemini.NewClientWithConfig(&gemini.ClientConfig{
		BaseURL:        cfg.Model.Endpoint,
		Model:          cfg.Model.Name,
		APIKey:         cfg.Model.APIKey,
		Timeout:        cfg.Timeout(),
		MaxRetries:     cfg.Model.MaxRetries,
		InitialBackoff: cfg.Backoff(),
	})

	// The log is optional: when it cannot be opened the client still runs,
	// rendering replies locally.
	var (
		log     *store.Store
		feed    <-chan model.ChatMessage
		history []model.ChatMessage
	)
	if !cfg.Store.Disabled {
		var err error
		if cfg.Store.Path != "" {
			log, err = store.Open(cfg.Store.Path)
		} else {
			log, err = store.OpenDefault()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: message log unavailable: %v\n", err)
			log = nil
		}
	}
	if log != nil {
		defer log.Close()
		feed = log.Subscribe(64)
		var err error
		history, err = log.All(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
	}

	opts := chat.Options{
		Session: session.New(log != nil),
		Client:  client,
		Feed:    feed,
		History: history,
		UI:      &cfg.UI,
	}
	if log != nil {
		opts.Log = log
	}

	p := tea.NewProgram(chat.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}
