package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Lookup errors.
var (
	ErrNoMatch        = errors.New("no match")
	ErrAmbiguousMatch = errors.New("ambiguous id prefix")
)

// ResolveID maps a user reference onto one of ids. The reference may be a
// full id, a unique id prefix, or a 1-based index into ids.
func ResolveID(ids []string, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNoMatch
	}

	for _, id := range ids {
		if id == ref {
			return id, nil
		}
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}

	// Numbers that prefix no id are 1-based indexes.
	if index, err := strconv.Atoi(ref); err == nil && len(matches) == 0 {
		if index < 1 || index > len(ids) {
			return "", fmt.Errorf("index %d out of range (1-%d): %w", index, len(ids), ErrNoMatch)
		}
		return ids[index-1], nil
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%q: %w", ref, ErrNoMatch)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d ids: %w", ref, len(matches), ErrAmbiguousMatch)
	}
}
