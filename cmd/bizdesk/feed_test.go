package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

func TestFeedPrinter_PrintsEachToastOnce(t *testing.T) {
	manager := toast.NewManager(time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer manager.Close()

	var buf bytes.Buffer
	p := startFeedPrinter(manager, &buf)

	manager.Enqueue("Client created successfully!", model.SeveritySuccess)
	manager.Enqueue("A client with this name already exists.", model.SeverityError)
	p.Stop()
	p.Stop()

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "[success] Client created successfully!"))
	assert.Equal(t, 1, strings.Count(out, "[error] A client with this name already exists."))
}

func TestReadPassword(t *testing.T) {
	t.Cleanup(func() { authOpts.password, authOpts.passwordStdin = "", false })

	authOpts.password = ""
	authOpts.passwordStdin = false
	_, err := readPassword(strings.NewReader(""))
	assert.Error(t, err)

	authOpts.password = "from-flag"
	got, err := readPassword(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "from-flag", got)

	authOpts.passwordStdin = true
	got, err = readPassword(strings.NewReader("s3cret\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestParseDeadline(t *testing.T) {
	d, err := parseDeadline("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseDeadline("2027-01-31")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.January, d.Month())

	_, err = parseDeadline("31/01/2027")
	assert.Error(t, err)
}

func TestReportError_SkipsErrorsShownAsToasts(t *testing.T) {
	manager := toast.NewManager(time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	provider := toast.NewProvider(slog.New(slog.NewTextHandler(io.Discard, nil)))
	provider.Mount(manager)
	defer provider.Unmount()
	ctx := toast.WithProvider(context.Background(), provider)

	var buf bytes.Buffer
	reportError(&buf, toast.Fail(ctx, errors.New("email already in use"), "An account with this email already exists."))
	assert.Empty(t, buf.String())

	reportError(&buf, errors.New(`unknown flag: --nope`))
	assert.Equal(t, "Error: unknown flag: --nope\n", buf.String())

	buf.Reset()
	reportError(&buf, nil)
	assert.Empty(t, buf.String())
}
