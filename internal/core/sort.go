// Package core provides filtering, sorting, and lookup logic for directory listings.
package core

import (
	"sort"
	"strings"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByCreated  SortField = "created"
	SortByUpdated  SortField = "updated"
	SortByName     SortField = "name"
	SortByStatus   SortField = "status"
	SortByDeadline SortField = "deadline"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField // Field to sort by
	Order SortOrder // Sort order (asc/desc)
}

// DefaultSortOptions returns default sort options (oldest first, the store order).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByCreated,
		Order: SortAsc,
	}
}

// SortClients sorts clients in place. Status and deadline fall back to created.
func SortClients(clients []model.Client, opts SortOptions) {
	less := func(a, b model.Client) bool {
		switch opts.Field {
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortByUpdated:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(clients, func(i, j int) bool {
		if opts.Order == SortDesc {
			return less(clients[j], clients[i])
		}
		return less(clients[i], clients[j])
	})
}

// statusRank orders project statuses by lifecycle.
var statusRank = map[model.ProjectStatus]int{
	model.ProjectStatusPlanned:   0,
	model.ProjectStatusActive:    1,
	model.ProjectStatusOnHold:    2,
	model.ProjectStatusCompleted: 3,
}

// SortProjects sorts projects in place. Projects without a deadline sort
// after dated ones when ascending.
func SortProjects(projects []model.Project, opts SortOptions) {
	less := func(a, b model.Project) bool {
		switch opts.Field {
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortByUpdated:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case SortByStatus:
			return statusRank[a.Status] < statusRank[b.Status]
		case SortByDeadline:
			switch {
			case a.Deadline == nil:
				return false
			case b.Deadline == nil:
				return true
			default:
				return a.Deadline.Before(*b.Deadline)
			}
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(projects, func(i, j int) bool {
		if opts.Order == SortDesc {
			return less(projects[j], projects[i])
		}
		return less(projects[i], projects[j])
	})
}

// ParseSortField parses a sort field string. Unknown values mean created.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "n":
		return SortByName
	case "updated", "u":
		return SortByUpdated
	case "status", "s":
		return SortByStatus
	case "deadline", "due", "d":
		return SortByDeadline
	default:
		return SortByCreated
	}
}

// ParseSortOrder parses a sort order string. Unknown values mean ascending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return SortDesc
	default:
		return SortAsc
	}
}
