package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/bizdesk/internal/config"
	"github.com/jmylchreest/bizdesk/internal/theme"
	"github.com/jmylchreest/bizdesk/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive client browser",
	Long: `Launch the interactive terminal user interface for your clients.

The TUI provides:
  - Scrollable list of clients
  - Live search, including tag=, company= and email= filters
  - Add-client form
  - Toast stack for action results
  - Real-time updates when the store changes
  - Colour themes from ~/.config/bizdesk/themes/<name>.toml, reloaded on save

Key bindings:
  j/k, ↑/↓    Navigate list
  a           Add client
  D           Delete client
  c           Copy client email to clipboard
  C           Copy visible clients as YAML
  /           Search
  x           Dismiss the oldest toast
  X           Clear all toasts
  r           Refresh
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

var tuiOpts struct {
	theme      string
	listThemes bool
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiOpts.theme, "theme", "", "Colour theme (overrides config)")
	tuiCmd.Flags().BoolVar(&tuiOpts.listThemes, "list-themes", false, "List available themes and exit")
}

func themesDir() string {
	dir, err := theme.ThemesDir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
		return ""
	}
	return dir
}

// loadTheme resolves the configured theme, falling back to the bundled default.
func loadTheme(name string) *theme.Theme {
	t, err := theme.Load(name, themesDir(), logger)
	if err != nil {
		logger.Warn("falling back to default theme", "theme", name, "error", err)
		return theme.Default()
	}
	return t
}

func runTUI(cmd *cobra.Command, args []string) error {
	if tuiOpts.listThemes {
		for _, name := range theme.ListThemes(themesDir()) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	// A subcommand invocation starts a feed printer; the TUI renders toasts itself.
	if printer != nil {
		printer.Stop()
		printer = nil
	}

	themeName := tuiOpts.theme
	if themeName == "" {
		themeName = cfg.TUI.Theme
	}
	activeTheme := loadTheme(themeName)

	themes := make(chan *theme.Theme, 1)
	sendTheme := func(t *theme.Theme) {
		select {
		case themes <- t:
		default:
			logger.Debug("dropping theme reload, previous one not yet applied")
		}
	}

	themeWatcher, err := theme.NewWatcher(themesDir(), activeTheme.Name, logger)
	if err != nil {
		logger.Warn("theme hot reload disabled", "error", err)
	} else {
		themeWatcher.SetChangeCallback(sendTheme)
		if err := themeWatcher.Start(); err != nil {
			logger.Warn("failed to start theme watcher", "error", err)
		}
		defer themeWatcher.Stop()
	}

	configPath := globalOpts.configPath
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	watcher, err := config.NewWatcher(configPath, logger)
	if err != nil {
		logger.Warn("config hot reload disabled", "error", err)
	} else {
		watcher.SetChangeCallback(func(c *config.Config) {
			toastManager.SetDefaultDuration(c.Toast.Duration.Duration())

			// An explicit --theme wins over the config file.
			if tuiOpts.theme != "" || c.TUI.Theme == themeName {
				return
			}
			themeName = c.TUI.Theme
			if themeWatcher != nil {
				themeWatcher.SetTheme(themeName)
			}
			sendTheme(loadTheme(themeName))
		})
		if err := watcher.Start(); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}
		defer watcher.Stop()
	}

	changes := docStore.Subscribe()
	defer docStore.Unsubscribe(changes)

	title := "Clients"
	if user := authService.Current(); user != nil {
		title = fmt.Sprintf("Clients · %s", user.DisplayName)
	}

	return tui.Run(tui.Options{
		Context: cmd.Context(),
		Config:  cfg,
		Clients: clients,
		Feed:    toastManager,
		Changes: changes,
		Theme:   activeTheme,
		Themes:  themes,
		Title:   title,
	})
}
