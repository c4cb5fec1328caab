package directory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/bizdesk/internal/auth"
	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/store"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

type fakeIdentity struct {
	user *model.User
}

func (f *fakeIdentity) RequireUser() (*model.User, error) {
	if f.user == nil {
		return nil, auth.ErrNotSignedIn
	}
	return f.user, nil
}

type fixture struct {
	ctx      context.Context
	manager  *toast.Manager
	identity *fakeIdentity
	store    *store.Store
	clients  *Clients
	projects *Projects
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.Open(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	manager := toast.NewManager(time.Hour, logger)
	provider := toast.NewProvider(logger)
	provider.Mount(manager)
	t.Cleanup(provider.Unmount)

	identity := &fakeIdentity{user: &model.User{ID: "owner-1", Email: "owner@example.com"}}
	clients := NewClients(s, identity, logger)

	return &fixture{
		ctx:      toast.WithProvider(context.Background(), provider),
		manager:  manager,
		identity: identity,
		store:    s,
		clients:  clients,
		projects: NewProjects(s, identity, clients, logger),
	}
}

// toasts returns the active toasts as "severity: message".
func (f *fixture) toasts() []string {
	var out []string
	for _, n := range f.manager.Active() {
		out = append(out, string(n.Severity)+": "+n.Message)
	}
	return out
}

func TestClients_Create(t *testing.T) {
	f := newFixture(t)

	client, err := f.clients.Create(f.ctx, ClientInput{
		Name:  "  Acme Corp ",
		Email: "ops@acme.test",
		Tags:  []string{"vip", " VIP ", ""},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	assert.Equal(t, "Acme Corp", client.Name)
	assert.Equal(t, "owner-1", client.OwnerID)
	assert.Equal(t, []string{"vip"}, client.Tags)

	assert.Equal(t, []string{"success: Client created successfully!"}, f.toasts())

	list, err := f.clients.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, client.ID, list[0].ID)
}

func TestClients_CreateDuplicateName(t *testing.T) {
	f := newFixture(t)

	_, err := f.clients.Create(f.ctx, ClientInput{Name: "Acme Corp"})
	require.NoError(t, err)

	_, err = f.clients.Create(f.ctx, ClientInput{Name: "  acme   CORP"})
	assert.True(t, errors.Is(err, ErrDuplicateName))

	assert.Equal(t, []string{
		"success: Client created successfully!",
		"error: A client with this name already exists.",
	}, f.toasts())

	// Another owner may reuse the name.
	f.identity.user = &model.User{ID: "owner-2"}
	_, err = f.clients.Create(f.ctx, ClientInput{Name: "Acme Corp"})
	assert.NoError(t, err)
}

func TestClients_CreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.clients.Create(f.ctx, ClientInput{Name: "", Email: "not-an-email"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["name"])
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "invalid input: email must be a valid email address, name is required", verr.Error())

	toasts := f.manager.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, model.SeverityError, toasts[0].Severity)
}

func TestClients_NotSignedIn(t *testing.T) {
	f := newFixture(t)
	f.identity.user = nil

	_, err := f.clients.Create(f.ctx, ClientInput{Name: "Acme"})
	assert.True(t, errors.Is(err, auth.ErrNotSignedIn))
	assert.Equal(t, []string{"error: You need to sign in first."}, f.toasts())

	_, err = f.clients.List(f.ctx)
	assert.True(t, errors.Is(err, auth.ErrNotSignedIn))
}

func TestClients_Update(t *testing.T) {
	f := newFixture(t)

	a, err := f.clients.Create(f.ctx, ClientInput{Name: "Acme", Tags: []string{"vip"}})
	require.NoError(t, err)
	_, err = f.clients.Create(f.ctx, ClientInput{Name: "Globex"})
	require.NoError(t, err)
	f.manager.Clear()

	name := "Acme"
	company := "Acme Holdings"
	updated, err := f.clients.Update(f.ctx, a.ID, ClientUpdate{
		Name:    &name,
		Company: &company,
		AddTags: []string{"VIP", "retail"},
	})
	require.NoError(t, err, "renaming to its own name is not a duplicate")
	assert.Equal(t, "Acme Holdings", updated.Company)
	assert.Equal(t, []string{"vip", "retail"}, updated.Tags)
	assert.Equal(t, []string{"success: Client updated successfully!"}, f.toasts())

	got, err := f.clients.Get(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "retail"}, got.Tags)

	clash := "GLOBEX"
	_, err = f.clients.Update(f.ctx, a.ID, ClientUpdate{Name: &clash})
	assert.True(t, errors.Is(err, ErrDuplicateName))
}

func TestClients_OwnerIsolation(t *testing.T) {
	f := newFixture(t)

	a, err := f.clients.Create(f.ctx, ClientInput{Name: "Acme"})
	require.NoError(t, err)

	f.identity.user = &model.User{ID: "intruder"}
	_, err = f.clients.Get(f.ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = f.clients.Delete(f.ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	list, err := f.clients.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClients_Delete(t *testing.T) {
	f := newFixture(t)

	a, err := f.clients.Create(f.ctx, ClientInput{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, f.clients.Delete(f.ctx, a.ID))
	_, err = f.clients.Get(f.ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = f.clients.Delete(f.ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, f.toasts(), "error: That client no longer exists.")
}

func TestClients_WithoutProvider(t *testing.T) {
	f := newFixture(t)

	// No provider in the context: the operation still succeeds, the toast is dropped.
	_, err := f.clients.Create(context.Background(), ClientInput{Name: "Quiet"})
	require.NoError(t, err)
	assert.Empty(t, f.toasts())
}

func TestProjects_Create(t *testing.T) {
	f := newFixture(t)

	client, err := f.clients.Create(f.ctx, ClientInput{Name: "Acme"})
	require.NoError(t, err)
	f.manager.Clear()

	deadline := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	project, err := f.projects.Create(f.ctx, ProjectInput{
		Name:     "Website",
		ClientID: client.ID,
		Deadline: &deadline,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusPlanned, project.Status)
	assert.Equal(t, []string{"success: Project created successfully!"}, f.toasts())

	got, err := f.projects.Get(f.ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Deadline)
	assert.True(t, deadline.Equal(*got.Deadline))

	linked, err := f.projects.ListForClient(f.ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
}

func TestProjects_CreateRejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.projects.Create(f.ctx, ProjectInput{Name: "Website"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    ProjectInput
		check func(error) bool
		toast string
	}{
		{
			name:  "duplicate",
			in:    ProjectInput{Name: "WEBSITE"},
			check: func(err error) bool { return errors.Is(err, ErrDuplicateName) },
			toast: "error: A project with this name already exists.",
		},
		{
			name:  "unknown client",
			in:    ProjectInput{Name: "Shop", ClientID: "missing"},
			check: func(err error) bool { return errors.Is(err, ErrUnknownClient) },
			toast: "error: The selected client does not exist.",
		},
		{
			name: "bad status",
			in:   ProjectInput{Name: "Shop", Status: "paused"},
			check: func(err error) bool {
				var verr *ValidationError
				return errors.As(err, &verr) && verr.Fields["status"] != ""
			},
			toast: "error: Please check the form: status must be one of: planned active on_hold completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.manager.Clear()
			_, err := f.projects.Create(f.ctx, tt.in)
			assert.True(t, tt.check(err), "got %v", err)
			assert.Equal(t, []string{tt.toast}, f.toasts())
		})
	}
}

func TestProjects_Update(t *testing.T) {
	f := newFixture(t)

	project, err := f.projects.Create(f.ctx, ProjectInput{Name: "Website", Tags: []string{"web"}})
	require.NoError(t, err)
	f.manager.Clear()

	status := model.ProjectStatusActive
	updated, err := f.projects.Update(f.ctx, project.ID, ProjectUpdate{
		Status:  &status,
		AddTags: []string{"Web", "urgent"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusActive, updated.Status)
	assert.Equal(t, []string{"web", "urgent"}, updated.Tags)
	assert.Equal(t, []string{"success: Project updated successfully!"}, f.toasts())

	_, err = f.projects.Update(f.ctx, "missing", ProjectUpdate{Status: &status})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestProjects_Delete(t *testing.T) {
	f := newFixture(t)

	project, err := f.projects.Create(f.ctx, ProjectInput{Name: "Website"})
	require.NoError(t, err)

	require.NoError(t, f.projects.Delete(f.ctx, project.ID))
	list, err := f.projects.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil, "client"))
	assert.Equal(t, "Could not save client. Please try again.", Message(errors.New("disk full"), "client"))
}
