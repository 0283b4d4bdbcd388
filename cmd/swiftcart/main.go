// cmd/swiftcart/main.go
//
// This is the entry point for the swiftcart terminal storefront.
//
// Flow:
// 1. Materialize the ~/.swiftcart data directory (config, logs, state)
// 2. Load configuration and open the logbook
// 3. Wire catalog client, session, and cart
// 4. Launch the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/swiftcart/internal/cart"
	"github.com/example/swiftcart/internal/catalog"
	"github.com/example/swiftcart/internal/config"
	"github.com/example/swiftcart/internal/logbook"
	"github.com/example/swiftcart/internal/session"
	"github.com/example/swiftcart/internal/storage"
	"github.com/example/swiftcart/internal/tui"
)

func main() {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating home directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitDataDir(home); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .swiftcart directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(home)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// All diagnostics go to the logbook; the terminal belongs to the TUI.
	book, err := logbook.New(cfg.LogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	book.Info("swiftcart starting, catalog at %s", cfg.BaseURL())

	client := catalog.NewClient(cfg.BaseURL(), cfg.Timeout())
	crt := cart.New(storage.NewCartStore(cfg.CartPath()), book)
	sess := session.New(storage.NewTokenStore(cfg.TokenPath()), client.Login, book)

	// tea.NewProgram creates a new bubbletea application
	// tui.NewApp returns our main application model
	p := tea.NewProgram(
		tui.NewApp(cfg, client, sess, crt, book),
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
	)

	// Run blocks until the user quits
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
