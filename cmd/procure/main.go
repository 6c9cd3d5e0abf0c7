package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/procurehq/console/internal/api"
	"github.com/procurehq/console/internal/credential"
	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/internal/session"
)

// cmdTimeout bounds each one-shot CLI call against the backend.
const cmdTimeout = 30 * time.Second

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *model.AppConfig
	logger *zap.Logger
)

// rootCmd represents the base command. Run without arguments it starts
// the interactive terminal UI.
var rootCmd = &cobra.Command{
	Use:   "procure",
	Short: "Terminal client for the ProcureHQ procurement backend",
	Long: `procure is a terminal client for a procurement backend.

It keeps a local inbox of procurement notifications in sync with the
server, caches purchase requests and orders for offline viewing, and
exposes the approval workflow from the keyboard.

Run without arguments to start the interactive interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = model.LoadConfig(configPath)
		if err != nil {
			return err
		}

		logger, err = buildLogger()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// buildLogger writes structured logs to the configured log file so the
// terminal stays clean for the UI.
func buildLogger() (*zap.Logger, error) {
	logPath := cfg.LogPath
	if logPath == "" {
		logPath = model.DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{logPath}
	zc.ErrorOutputPaths = []string{logPath}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// newAPIClient returns a client with the stored session token, if any,
// already installed.
func newAPIClient() *api.Client {
	token, err := (credential.KeyringStore{}).LoadToken()
	if err != nil {
		logger.Warn("loading stored token", zap.Error(err))
	}
	return api.NewClient(cfg.Server.BaseURL, token)
}

// newSessionManager wires the API client and keyring into a session
// manager.
func newSessionManager(client *api.Client) *session.Manager {
	return session.NewManager(client, credential.KeyringStore{}, logger)
}

// requireSession bootstraps the stored session and fails the command
// when no valid session exists.
func requireSession(ctx context.Context, client *api.Client) (session.Session, error) {
	sess := newSessionManager(client).Bootstrap(ctx)
	if !sess.Authenticated() {
		return sess, fmt.Errorf("not logged in; run 'procure login' first")
	}
	return sess, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cmdTimeout)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config",
		model.DefaultConfigPath(), "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(suppliersCmd)
	rootCmd.AddCommand(budgetsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(directoryCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mailboxCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
