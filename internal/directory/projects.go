package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/store"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

const projectKind = "project"

// ProjectInput holds the fields for a new project.
type ProjectInput struct {
	Name        string
	Description string
	ClientID    string
	Status      model.ProjectStatus
	Tags        []string
	Deadline    *time.Time
}

// ProjectUpdate changes selected fields. Nil pointers leave a field as is.
type ProjectUpdate struct {
	Name        *string
	Description *string
	ClientID    *string
	Status      *model.ProjectStatus
	Deadline    *time.Time
	AddTags     []string
}

// Projects manages the signed-in user's projects.
type Projects struct {
	docs     store.Documents
	identity Identity
	clients  *Clients
	logger   *slog.Logger
}

// NewProjects creates a project service. clients is used to check that a
// linked client belongs to the same owner.
func NewProjects(docs store.Documents, identity Identity, clients *Clients, logger *slog.Logger) *Projects {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projects{docs: docs, identity: identity, clients: clients, logger: logger}
}

// List returns the owner's projects, oldest first.
func (p *Projects) List(ctx context.Context) ([]model.Project, error) {
	user, err := p.identity.RequireUser()
	if err != nil {
		return nil, err
	}
	return p.list(ctx, user.ID)
}

// ListForClient returns the owner's projects linked to clientID.
func (p *Projects) ListForClient(ctx context.Context, clientID string) ([]model.Project, error) {
	all, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Project
	for _, project := range all {
		if project.ClientID == clientID {
			out = append(out, project)
		}
	}
	return out, nil
}

func (p *Projects) list(ctx context.Context, ownerID string) ([]model.Project, error) {
	docs, err := p.docs.QueryByOwner(ctx, model.CollectionProjects, ownerID)
	if err != nil {
		return nil, err
	}

	projects := make([]model.Project, 0, len(docs))
	for _, doc := range docs {
		var project model.Project
		if err := doc.Decode(&project); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// Get returns one of the owner's projects.
func (p *Projects) Get(ctx context.Context, id string) (*model.Project, error) {
	user, err := p.identity.RequireUser()
	if err != nil {
		return nil, err
	}
	return p.get(ctx, user.ID, id)
}

func (p *Projects) get(ctx context.Context, ownerID, id string) (*model.Project, error) {
	doc, err := p.docs.Get(ctx, model.CollectionProjects, id)
	if err != nil {
		return nil, notFound(err)
	}
	if doc.OwnerID != ownerID {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}

	var project model.Project
	if err := doc.Decode(&project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Create validates and stores a new project.
func (p *Projects) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	user, err := p.identity.RequireUser()
	if err != nil {
		return nil, fail(ctx, err, projectKind)
	}

	status := in.Status
	if status == "" {
		status = model.ProjectStatusPlanned
	}

	now := time.Now().UTC()
	project := model.Project{
		OwnerID:     user.ID,
		ClientID:    strings.TrimSpace(in.ClientID),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Tags:        trimTags(in.Tags),
		Deadline:    in.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateStruct(project); err != nil {
		return nil, fail(ctx, err, projectKind)
	}
	if err := p.checkClient(ctx, user.ID, project.ClientID); err != nil {
		return nil, fail(ctx, err, projectKind)
	}
	if err := p.checkDuplicate(ctx, user.ID, project.Name, ""); err != nil {
		return nil, fail(ctx, err, projectKind)
	}

	id, err := p.docs.Create(ctx, model.CollectionProjects, user.ID, project)
	if err != nil {
		return nil, fail(ctx, fmt.Errorf("creating project: %w", err), projectKind)
	}
	project.ID = id

	p.logger.Debug("project created", "id", id, "owner", user.ID)
	toast.Success(ctx, "Project created successfully!")
	return &project, nil
}

// Update applies u to an existing project.
func (p *Projects) Update(ctx context.Context, id string, u ProjectUpdate) (*model.Project, error) {
	user, err := p.identity.RequireUser()
	if err != nil {
		return nil, fail(ctx, err, projectKind)
	}

	project, err := p.get(ctx, user.ID, id)
	if err != nil {
		return nil, fail(ctx, err, projectKind)
	}

	if u.Name != nil {
		project.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		project.Description = strings.TrimSpace(*u.Description)
	}
	if u.ClientID != nil {
		project.ClientID = strings.TrimSpace(*u.ClientID)
	}
	if u.Status != nil {
		project.Status = *u.Status
	}
	if u.Deadline != nil {
		project.Deadline = u.Deadline
	}
	if len(u.AddTags) > 0 {
		project.Tags = model.MergeTags(project.Tags, u.AddTags)
	}
	project.UpdatedAt = time.Now().UTC()

	if err := validateStruct(project); err != nil {
		return nil, fail(ctx, err, projectKind)
	}
	if u.ClientID != nil {
		if err := p.checkClient(ctx, user.ID, project.ClientID); err != nil {
			return nil, fail(ctx, err, projectKind)
		}
	}
	if u.Name != nil {
		if err := p.checkDuplicate(ctx, user.ID, project.Name, id); err != nil {
			return nil, fail(ctx, err, projectKind)
		}
	}

	if err := p.docs.Update(ctx, model.CollectionProjects, id, project); err != nil {
		return nil, fail(ctx, notFound(err), projectKind)
	}

	p.logger.Debug("project updated", "id", id)
	toast.Success(ctx, "Project updated successfully!")
	return project, nil
}

// Delete removes one of the owner's projects.
func (p *Projects) Delete(ctx context.Context, id string) error {
	user, err := p.identity.RequireUser()
	if err != nil {
		return fail(ctx, err, projectKind)
	}
	if _, err := p.get(ctx, user.ID, id); err != nil {
		return fail(ctx, err, projectKind)
	}
	if err := p.docs.Delete(ctx, model.CollectionProjects, id); err != nil {
		return fail(ctx, notFound(err), projectKind)
	}

	p.logger.Debug("project deleted", "id", id)
	toast.Success(ctx, "Project deleted.")
	return nil
}

// checkClient verifies that clientID, when set, is one of the owner's clients.
func (p *Projects) checkClient(ctx context.Context, ownerID, clientID string) error {
	if clientID == "" || p.clients == nil {
		return nil
	}
	if _, err := p.clients.get(ctx, ownerID, clientID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("client %s: %w", clientID, ErrUnknownClient)
		}
		return err
	}
	return nil
}

func (p *Projects) checkDuplicate(ctx context.Context, ownerID, name, selfID string) error {
	existing, err := p.list(ctx, ownerID)
	if err != nil {
		return err
	}
	want := model.NormalizeName(name)
	for _, other := range existing {
		if other.ID != selfID && model.NormalizeName(other.Name) == want {
			return fmt.Errorf("project %q: %w", name, ErrDuplicateName)
		}
	}
	return nil
}
