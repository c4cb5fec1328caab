package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/bizdesk/internal/config"
	"github.com/jmylchreest/bizdesk/internal/model"
)

func testClients() []model.Client {
	now := time.Now()
	return []model.Client{
		{
			ID:        "c-1",
			OwnerID:   "o-1",
			Name:      "Acme Corp",
			Email:     "ops@acme.test",
			Company:   "Acme Holdings",
			Tags:      []string{"vip", "retail"},
			CreatedAt: now.Add(-5 * time.Minute),
		},
		{
			ID:        "c-2",
			OwnerID:   "o-1",
			Name:      "Globex",
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}
}

func testProjects() []model.Project {
	return []model.Project{
		{
			ID:        "p-1",
			Name:      "Website",
			Status:    model.ProjectStatusActive,
			Tags:      []string{"web"},
			CreatedAt: time.Now().Add(-3 * 24 * time.Hour),
		},
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format FormatType
		want   any
	}{
		{FormatPlain, &PlainFormatter{}},
		{"", &PlainFormatter{}},
		{FormatJSON, &JSONFormatter{}},
		{FormatYAML, &YAMLFormatter{}},
		{FormatIDs, &IDsFormatter{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format, DefaultFormatterOptions())
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}

	_, err := NewFormatter("xml", DefaultFormatterOptions())
	assert.Error(t, err)
}

func TestPlainFormatter_DefaultLayout(t *testing.T) {
	var buf bytes.Buffer

	f, err := NewPlainFormatter(DefaultFormatterOptions())
	require.NoError(t, err)
	require.NoError(t, f.FormatClients(&buf, testClients()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Acme Corp (Acme Holdings) <ops@acme.test> [vip, retail] | 5 minutes ago", lines[0])
	assert.Equal(t, "Globex | 2 hours ago", lines[1])
}

func TestPlainFormatter_ConfigTemplates(t *testing.T) {
	cfg := config.DefaultConfig()
	opts := DefaultFormatterOptions()
	opts.ClientTemplate = cfg.Templates.Client
	opts.ProjectTemplate = cfg.Templates.Project
	opts.ShowIndex = true

	f, err := NewPlainFormatter(opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.FormatClients(&buf, testClients()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[1] Acme Corp (Acme Holdings) <ops@acme.test> [vip, retail] | 5 minutes ago", lines[0])
	assert.Equal(t, "[2] Globex | 2 hours ago", lines[1])

	buf.Reset()
	require.NoError(t, f.FormatProjects(&buf, testProjects()))
	assert.Equal(t, "[1] Website [active] [web] | 3 days ago\n", buf.String())
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	opts := DefaultFormatterOptions()
	opts.ClientTemplate = "{{upper .Name}} {{truncate .Email 6}}"

	f, err := NewPlainFormatter(opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.FormatClients(&buf, testClients()[:1]))
	assert.Equal(t, "ACME CORP ops...\n", buf.String())
}

func TestPlainFormatter_BadTemplate(t *testing.T) {
	opts := DefaultFormatterOptions()
	opts.ClientTemplate = "{{.Name"

	_, err := NewPlainFormatter(opts)
	assert.Error(t, err)
}

func TestPlainFormatter_Notifications(t *testing.T) {
	opts := DefaultFormatterOptions()
	opts.MessageMaxLen = 20

	f, err := NewPlainFormatter(opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.FormatNotifications(&buf, []model.Notification{
		{ID: "n1", Message: "Client created successfully!", Severity: model.SeveritySuccess},
		{ID: "n2", Message: "Oops", Severity: model.SeverityError},
	}))
	assert.Equal(t, "[success] Client created su...\n[error] Oops\n", buf.String())
}

func TestPlainFormatter_NonASCIITruncation(t *testing.T) {
	opts := DefaultFormatterOptions()
	opts.MessageMaxLen = 12
	opts.ClientTemplate = "{{truncate .Name 7}}"

	f, err := NewPlainFormatter(opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.FormatNotifications(&buf, []model.Notification{
		{ID: "n1", Message: "Client “Café Ünïcødé” created", Severity: model.SeveritySuccess},
	}))
	assert.Equal(t, "[success] Client “C...\n", buf.String())
	assert.True(t, utf8.ValidString(buf.String()))

	buf.Reset()
	require.NoError(t, f.FormatClients(&buf, []model.Client{{ID: "c-9", Name: "Ünïcødé Labs"}}))
	assert.Equal(t, "Ünïc...\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().FormatClients(&buf, testClients()))

	var decoded []model.Client
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "c-1", decoded[0].ID)
	assert.Equal(t, []string{"vip", "retail"}, decoded[0].Tags)

	buf.Reset()
	require.NoError(t, NewJSONFormatter().FormatProjects(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().FormatProjects(&buf, testProjects()))

	out := buf.String()
	assert.Contains(t, out, "name: Website")
	assert.Contains(t, out, "status: active")

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "p-1", decoded[0]["id"])
}

func TestYAMLFormatter_HidesPasswordHash(t *testing.T) {
	var buf bytes.Buffer
	err := encodeYAML(&buf, model.User{ID: "u-1", Email: "a@b.test", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "secret")
}

func TestIDsFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().FormatClients(&buf, testClients()))
	assert.Equal(t, "c-1\nc-2\n", buf.String())
}

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "unknown", relativeTime(time.Time{}))
	assert.Equal(t, "now", relativeTime(time.Now()))
	assert.Equal(t, "1 hour ago", relativeTime(time.Now().Add(-time.Hour)))
}
