// Package main provides the CLI entrypoint for bizdesk.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/bizdesk/internal/adapter/output"
	"github.com/jmylchreest/bizdesk/internal/auth"
	"github.com/jmylchreest/bizdesk/internal/config"
	"github.com/jmylchreest/bizdesk/internal/credential"
	"github.com/jmylchreest/bizdesk/internal/directory"
	"github.com/jmylchreest/bizdesk/internal/store"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		dbPath     string
		format     string
	}
	logger *slog.Logger

	docStore      *store.Store
	authService   *auth.Service
	clients       *directory.Clients
	projects      *directory.Projects
	toastManager  *toast.Manager
	toastProvider *toast.Provider
	printer       *feedPrinter
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bizdesk",
	Short: "Client and project desk for freelancers",
	Long: `bizdesk keeps track of your clients and projects.

Every action reports its outcome as a short-lived toast: in the TUI they
stack at the bottom of the screen, on the command line they are printed
to stderr.

Running bizdesk without a subcommand launches the interactive TUI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		shutdown()
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when RunE fails.
	shutdown()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err unless it already reached the user as a toast.
func reportError(w io.Writer, err error) {
	if err == nil || toast.Shown(err) {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func init() {
	// Assigned here rather than in the literal: the hook refers to rootCmd.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := config.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		dbPath := globalOpts.dbPath
		if dbPath == "" {
			dbPath = cfg.DatabasePath()
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		docStore, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		toastManager = toast.NewManager(cfg.Toast.Duration.Duration(), logger)
		toastManager.SetRemoveCallback(func(id string, reason toast.RemoveReason) {
			logger.Debug("toast removed", "id", id, "reason", reason)
		})
		toastProvider = toast.NewProvider(logger)
		toastProvider.Mount(toastManager)
		cmd.SetContext(toast.WithProvider(cmd.Context(), toastProvider))

		// The TUI draws toasts itself; everything else prints them.
		if cmd != rootCmd {
			printer = startFeedPrinter(toastManager, os.Stderr)
		}

		authService = auth.NewService(docStore, openSession(), logger)
		if err := authService.Restore(cmd.Context()); err != nil {
			logger.Warn("failed to restore session", "error", err)
		}

		clients = directory.NewClients(docStore, authService, logger)
		projects = directory.NewProjects(docStore, authService, clients, logger)

		return nil
	}

	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/bizdesk/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.dbPath, "db", "",
		"Path to database (default: ~/.local/share/bizdesk/bizdesk.db)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.format, "format", "f", "",
		"Output format (plain, json, yaml, ids; default from config)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// openSession returns the keyring-backed session, or nil when sessions are
// disabled or no keyring backend is usable.
func openSession() auth.SessionStore {
	if !cfg.Session.Remember {
		return nil
	}
	session, err := credential.OpenSession(cfg.KeyringDir())
	if err != nil {
		logger.Warn("session will not be remembered", "error", err)
		return nil
	}
	return session
}

// shutdown flushes pending toasts and releases resources. Safe to call twice.
func shutdown() {
	if printer != nil {
		printer.Stop()
		printer = nil
	}
	if toastProvider != nil {
		toastProvider.Unmount()
		toastProvider = nil
	}
	if docStore != nil {
		if err := docStore.Close(); err != nil && !errors.Is(err, store.ErrStoreClosed) {
			logger.Warn("failed to close store", "error", err)
		}
		docStore = nil
	}
}

// newFormatter builds the output formatter from --format and the config.
func newFormatter() (output.Formatter, error) {
	format := globalOpts.format
	if format == "" {
		format = cfg.Output.Format
	}

	opts := output.DefaultFormatterOptions()
	opts.ClientTemplate = cfg.GetTemplate("client")
	opts.ProjectTemplate = cfg.GetTemplate("project")

	return output.NewFormatter(output.FormatType(format), opts)
}
