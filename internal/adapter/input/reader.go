package input

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/bizdesk/internal/directory"
)

// ReaderAdapter reads client records from a stream.
type ReaderAdapter struct {
	format string
	reader io.Reader
}

// NewReaderAdapter creates a ReaderAdapter with a custom reader.
func NewReaderAdapter(format string, r io.Reader) *ReaderAdapter {
	return &ReaderAdapter{format: format, reader: r}
}

// Name returns the adapter identifier.
func (a *ReaderAdapter) Name() string {
	if a.format == "" {
		return "auto"
	}
	return a.format
}

// Import reads client records.
// Accepts a JSON array or YAML sequence of records, including the output of
// "client list --format json|yaml".
func (a *ReaderAdapter) Import(ctx context.Context) ([]directory.ClientInput, error) {
	scanner := bufio.NewScanner(a.reader)
	const maxSize = 10 * 1024 * 1024 // 10MB max
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var data []byte
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data = append(data, scanner.Bytes()...)
		data = append(data, '\n')
	}

	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{
			Source:  a.Name(),
			Message: "failed to read input",
			Err:     err,
		}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	format := a.format
	if format == "" {
		format = DetectFormat(data)
	}

	var entries []clientEntry
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, &entries)
	default:
		err = yaml.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, &AdapterError{
			Source:  format,
			Message: "failed to parse " + format + " input",
			Err:     err,
		}
	}

	inputs := make([]directory.ClientInput, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}
		inputs = append(inputs, entry.input())
	}
	return inputs, nil
}

// clientEntry is a client record in import files.
type clientEntry struct {
	Name    string   `json:"name" yaml:"name"`
	Email   string   `json:"email" yaml:"email"`
	Phone   string   `json:"phone" yaml:"phone"`
	Company string   `json:"company" yaml:"company"`
	Tags    []string `json:"tags" yaml:"tags"`
}

func (e clientEntry) input() directory.ClientInput {
	return directory.ClientInput{
		Name:    sanitizeString(e.Name),
		Email:   strings.TrimSpace(e.Email),
		Phone:   sanitizeString(e.Phone),
		Company: sanitizeString(e.Company),
		Tags:    e.Tags,
	}
}

// sanitizeString replaces control characters and collapses whitespace.
func sanitizeString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < 32 {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}
