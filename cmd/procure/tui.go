package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procurehq/console/internal/app"
	"github.com/procurehq/console/internal/credential"
	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/internal/store"
)

// runTUI starts the interactive terminal interface.
func runTUI() error {
	client := newAPIClient()
	sessions := newSessionManager(client)

	cache, err := openCache()
	if err != nil {
		// The cache is an offline convenience; run without it.
		logger.Warn("opening local cache failed; running without cache",
			zap.Error(err))
	}
	if cache != nil {
		defer cache.Close()
	}

	var mirror store.Store
	if cache != nil {
		mirror = cache
	}

	root := app.New(client, sessions, mirror, cfg, logger)
	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal ui: %w", err)
	}
	return nil
}

// openCache opens the local SQLite mirror, creating its directory on
// first run.
func openCache() (*store.SQLiteStore, error) {
	path := cfg.CachePath
	if path == "" {
		path = model.DefaultCachePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(path)
}

// mailboxCmd manages the optional IMAP ingest credentials.
var mailboxCmd = &cobra.Command{
	Use:   "mailbox",
	Short: "Manage the optional notification mailbox",
}

var mailboxPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the IMAP password in the system keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		input := huh.NewInput().
			Title("IMAP password").
			EchoMode(huh.EchoModePassword).
			Value(&password)
		if err := input.Run(); err != nil {
			return err
		}
		if err := credential.Set(credential.MailboxPasswordKey, password); err != nil {
			return err
		}
		fmt.Println("Mailbox password stored.")
		return nil
	},
}

func init() {
	mailboxCmd.AddCommand(mailboxPasswordCmd)
}
