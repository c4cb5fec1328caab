package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// FilterOptions specifies criteria for filtering listings.
type FilterOptions struct {
	Since  time.Duration       // Only items created within this window (0=all)
	Tag    string              // Case-insensitive tag match ("" = any)
	Status model.ProjectStatus // Projects only ("" = any)
	Limit  int                 // Maximum results (0=unlimited)
}

// FilterClients returns the clients matching opts, preserving order.
func FilterClients(clients []model.Client, opts FilterOptions) []model.Client {
	cutoff := cutoffFor(opts.Since)
	result := make([]model.Client, 0, len(clients))

	for _, c := range clients {
		if !cutoff.IsZero() && c.CreatedAt.Before(cutoff) {
			continue
		}
		if opts.Tag != "" && !hasTag(c.Tags, opts.Tag) {
			continue
		}
		result = append(result, c)
	}

	return limit(result, opts.Limit)
}

// FilterProjects returns the projects matching opts, preserving order.
func FilterProjects(projects []model.Project, opts FilterOptions) []model.Project {
	cutoff := cutoffFor(opts.Since)
	result := make([]model.Project, 0, len(projects))

	for _, p := range projects {
		if !cutoff.IsZero() && p.CreatedAt.Before(cutoff) {
			continue
		}
		if opts.Tag != "" && !hasTag(p.Tags, opts.Tag) {
			continue
		}
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		result = append(result, p)
	}

	return limit(result, opts.Limit)
}

func cutoffFor(since time.Duration) time.Time {
	if since <= 0 {
		return time.Time{}
	}
	return time.Now().Add(-since)
}

func hasTag(tags []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	// Special case: 0 means no filter (all time)
	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseStatus parses a project status, accepting "on-hold" and "on hold".
func ParseStatus(s string) (model.ProjectStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)

	switch model.ProjectStatus(norm) {
	case "":
		return "", nil
	case model.ProjectStatusPlanned, model.ProjectStatusActive,
		model.ProjectStatusOnHold, model.ProjectStatusCompleted:
		return model.ProjectStatus(norm), nil
	default:
		return "", fmt.Errorf("invalid status: %s (use planned, active, on_hold or completed)", s)
	}
}
