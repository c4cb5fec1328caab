package input

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport_JSON(t *testing.T) {
	data := `[
		{"id": "c1", "name": "Acme Corp", "email": "ops@acme.test", "tags": ["vip"], "created_at": "2026-01-02T03:04:05Z"},
		{"name": "  Globex\tInc  ", "company": "Globex"}
	]`

	adapter, err := NewAdapter("", strings.NewReader(data))
	require.NoError(t, err)

	clients, err := adapter.Import(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)

	assert.Equal(t, "Acme Corp", clients[0].Name)
	assert.Equal(t, "ops@acme.test", clients[0].Email)
	assert.Equal(t, []string{"vip"}, clients[0].Tags)
	assert.Equal(t, "Globex Inc", clients[1].Name)
	assert.Equal(t, "Globex", clients[1].Company)
}

func TestImport_YAML(t *testing.T) {
	data := `
- name: Initech
  phone: "555-0100"
  tags: [lead, b2b]
- name: ""
  email: skipped@example.test
`

	clients, err := NewReaderAdapter("yaml", strings.NewReader(data)).Import(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1, "records without a name are skipped")
	assert.Equal(t, "Initech", clients[0].Name)
	assert.Equal(t, "555-0100", clients[0].Phone)
	assert.Equal(t, []string{"lead", "b2b"}, clients[0].Tags)
}

func TestImport_Empty(t *testing.T) {
	clients, err := NewReaderAdapter("", strings.NewReader("  \n")).Import(context.Background())
	require.NoError(t, err)
	assert.Empty(t, clients)
}

func TestImport_Invalid(t *testing.T) {
	_, err := NewReaderAdapter("json", strings.NewReader("{invalid json")).Import(context.Background())
	require.Error(t, err)

	var adapterErr *AdapterError
	require.True(t, errors.As(err, &adapterErr))
	assert.Equal(t, "json", adapterErr.Source)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestNewAdapter_UnknownFormat(t *testing.T) {
	_, err := NewAdapter("csv", strings.NewReader(""))
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "json", DetectFormat([]byte("  [ ]")))
	assert.Equal(t, "json", DetectFormat([]byte("{}")))
	assert.Equal(t, "yaml", DetectFormat([]byte("- name: x")))
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"normal text", "normal text"},
		{"with\x00null", "with null"},
		{"  padded  ", "padded"},
		{"multi\nline\ttext", "multi line text"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeString(tt.input))
		})
	}
}
