package tui

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

const clipboardTimeout = 5 * time.Second

var errNoClipboard = errors.New("no clipboard command available")

// clipboardCandidates are tried in order when no command is configured.
var clipboardCandidates = [][]string{
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"pbcopy"},
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// clipboardArgv returns the command line to pipe clipboard text into.
// A configured command is split on whitespace and used as is.
func clipboardArgv(configured string) []string {
	if fields := strings.Fields(configured); len(fields) > 0 {
		return fields
	}
	for _, argv := range clipboardCandidates {
		if _, err := lookPath(argv[0]); err == nil {
			return argv
		}
	}
	return nil
}

// copyText pipes text into the clipboard command.
func copyText(ctx context.Context, text, configured string) error {
	argv := clipboardArgv(configured)
	if argv == nil {
		return errNoClipboard
	}

	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()

	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Stdin = strings.NewReader(text)
	return c.Run()
}
