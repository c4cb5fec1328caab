package model

import (
	"strings"
	"time"
)

// Collection names used in the document store.
const (
	CollectionUsers    = "users"
	CollectionClients  = "clients"
	CollectionProjects = "projects"
)

// ProjectStatus tracks where a project is in its lifecycle.
type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "planned"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// User is a signed-up account. PasswordHash never leaves the auth package in output.
type User struct {
	ID           string    `json:"id" yaml:"id"`
	Email        string    `json:"email" yaml:"email" validate:"required,email"`
	DisplayName  string    `json:"display_name" yaml:"display_name"`
	PasswordHash string    `json:"password_hash,omitempty" yaml:"-"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Client is an entry in an owner's client directory.
type Client struct {
	ID        string    `json:"id" yaml:"id"`
	OwnerID   string    `json:"owner_id" yaml:"owner_id"`
	Name      string    `json:"name" yaml:"name" validate:"required,max=120"`
	Email     string    `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Phone     string    `json:"phone,omitempty" yaml:"phone,omitempty" validate:"omitempty,max=40"`
	Company   string    `json:"company,omitempty" yaml:"company,omitempty" validate:"max=120"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty" validate:"dive,max=40"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Project is a piece of tracked work, optionally linked to a client.
type Project struct {
	ID          string        `json:"id" yaml:"id"`
	OwnerID     string        `json:"owner_id" yaml:"owner_id"`
	ClientID    string        `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Name        string        `json:"name" yaml:"name" validate:"required,max=120"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty" validate:"max=2000"`
	Status      ProjectStatus `json:"status" yaml:"status" validate:"oneof=planned active on_hold completed"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty" validate:"dive,max=40"`
	Deadline    *time.Time    `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	CreatedAt   time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" yaml:"updated_at"`
}

// NormalizeName folds a display name for duplicate comparison.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// MergeTags returns existing followed by any added tags not already present.
// Comparison is case-insensitive on trimmed values; empty tags are dropped.
// The first spelling seen wins.
func MergeTags(existing, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))

	for _, list := range [][]string{existing, added} {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, tag)
		}
	}
	return out
}
