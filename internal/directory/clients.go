package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/store"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

const clientKind = "client"

// ClientInput holds the fields for a new client.
type ClientInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Tags    []string
}

// ClientUpdate changes selected fields. Nil pointers leave a field as is.
// AddTags are merged into the existing tags.
type ClientUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	AddTags []string
}

// Clients manages the signed-in user's clients.
type Clients struct {
	docs     store.Documents
	identity Identity
	logger   *slog.Logger
}

// NewClients creates a client service.
func NewClients(docs store.Documents, identity Identity, logger *slog.Logger) *Clients {
	if logger == nil {
		logger = slog.Default()
	}
	return &Clients{docs: docs, identity: identity, logger: logger}
}

// List returns the owner's clients, oldest first.
func (c *Clients) List(ctx context.Context) ([]model.Client, error) {
	user, err := c.identity.RequireUser()
	if err != nil {
		return nil, err
	}
	return c.list(ctx, user.ID)
}

func (c *Clients) list(ctx context.Context, ownerID string) ([]model.Client, error) {
	docs, err := c.docs.QueryByOwner(ctx, model.CollectionClients, ownerID)
	if err != nil {
		return nil, err
	}

	clients := make([]model.Client, 0, len(docs))
	for _, doc := range docs {
		var client model.Client
		if err := doc.Decode(&client); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// Get returns one of the owner's clients.
func (c *Clients) Get(ctx context.Context, id string) (*model.Client, error) {
	user, err := c.identity.RequireUser()
	if err != nil {
		return nil, err
	}
	return c.get(ctx, user.ID, id)
}

func (c *Clients) get(ctx context.Context, ownerID, id string) (*model.Client, error) {
	doc, err := c.docs.Get(ctx, model.CollectionClients, id)
	if err != nil {
		return nil, notFound(err)
	}
	if doc.OwnerID != ownerID {
		return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}

	var client model.Client
	if err := doc.Decode(&client); err != nil {
		return nil, err
	}
	return &client, nil
}

// Create validates and stores a new client.
func (c *Clients) Create(ctx context.Context, in ClientInput) (*model.Client, error) {
	user, err := c.identity.RequireUser()
	if err != nil {
		return nil, fail(ctx, err, clientKind)
	}

	now := time.Now().UTC()
	client := model.Client{
		OwnerID:   user.ID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Company:   strings.TrimSpace(in.Company),
		Tags:      trimTags(in.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateStruct(client); err != nil {
		return nil, fail(ctx, err, clientKind)
	}

	if err := c.checkDuplicate(ctx, user.ID, client.Name, ""); err != nil {
		return nil, fail(ctx, err, clientKind)
	}

	id, err := c.docs.Create(ctx, model.CollectionClients, user.ID, client)
	if err != nil {
		return nil, fail(ctx, fmt.Errorf("creating client: %w", err), clientKind)
	}
	client.ID = id

	c.logger.Debug("client created", "id", id, "owner", user.ID)
	toast.Success(ctx, "Client created successfully!")
	return &client, nil
}

// Update applies u to an existing client.
func (c *Clients) Update(ctx context.Context, id string, u ClientUpdate) (*model.Client, error) {
	user, err := c.identity.RequireUser()
	if err != nil {
		return nil, fail(ctx, err, clientKind)
	}

	client, err := c.get(ctx, user.ID, id)
	if err != nil {
		return nil, fail(ctx, err, clientKind)
	}

	if u.Name != nil {
		client.Name = strings.TrimSpace(*u.Name)
	}
	if u.Email != nil {
		client.Email = strings.TrimSpace(*u.Email)
	}
	if u.Phone != nil {
		client.Phone = strings.TrimSpace(*u.Phone)
	}
	if u.Company != nil {
		client.Company = strings.TrimSpace(*u.Company)
	}
	if len(u.AddTags) > 0 {
		client.Tags = model.MergeTags(client.Tags, u.AddTags)
	}
	client.UpdatedAt = time.Now().UTC()

	if err := validateStruct(client); err != nil {
		return nil, fail(ctx, err, clientKind)
	}
	if u.Name != nil {
		if err := c.checkDuplicate(ctx, user.ID, client.Name, id); err != nil {
			return nil, fail(ctx, err, clientKind)
		}
	}

	if err := c.docs.Update(ctx, model.CollectionClients, id, client); err != nil {
		return nil, fail(ctx, notFound(err), clientKind)
	}

	c.logger.Debug("client updated", "id", id)
	toast.Success(ctx, "Client updated successfully!")
	return client, nil
}

// Delete removes one of the owner's clients.
func (c *Clients) Delete(ctx context.Context, id string) error {
	user, err := c.identity.RequireUser()
	if err != nil {
		return fail(ctx, err, clientKind)
	}
	if _, err := c.get(ctx, user.ID, id); err != nil {
		return fail(ctx, err, clientKind)
	}
	if err := c.docs.Delete(ctx, model.CollectionClients, id); err != nil {
		return fail(ctx, notFound(err), clientKind)
	}

	c.logger.Debug("client deleted", "id", id)
	toast.Success(ctx, "Client deleted.")
	return nil
}

// checkDuplicate rejects name when another of the owner's clients uses it.
func (c *Clients) checkDuplicate(ctx context.Context, ownerID, name, selfID string) error {
	existing, err := c.list(ctx, ownerID)
	if err != nil {
		return err
	}
	want := model.NormalizeName(name)
	for _, other := range existing {
		if other.ID != selfID && model.NormalizeName(other.Name) == want {
			return fmt.Errorf("client %q: %w", name, ErrDuplicateName)
		}
	}
	return nil
}
