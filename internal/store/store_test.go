package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	ID      string   `json:"id"`
	OwnerID string   `json:"owner_id"`
	Name    string   `json:"name"`
	Email   string   `json:"email,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Create(ctx, "clients", "owner-1", testDoc{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Migrations must not re-run on an existing database.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	doc, err := s.Get(ctx, "clients", id)
	require.NoError(t, err)
	var got testDoc
	require.NoError(t, doc.Decode(&got))
	assert.Equal(t, "Acme", got.Name)
}

func TestStore_CreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "clients", "owner-1", testDoc{Name: "Acme", Tags: []string{"vip"}})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	doc, err := s.Get(ctx, "clients", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "clients", doc.Collection)
	assert.Equal(t, "owner-1", doc.OwnerID)
	assert.False(t, doc.CreatedAt.IsZero())

	var got testDoc
	require.NoError(t, doc.Decode(&got))
	assert.Equal(t, id, got.ID, "id is stamped into the body")
	assert.Equal(t, "owner-1", got.OwnerID)
	assert.Equal(t, []string{"vip"}, got.Tags)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "clients", "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	// Same id in another collection is not visible.
	id, err := s.Create(context.Background(), "clients", "o", testDoc{Name: "x"})
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "projects", id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_QueryByOwner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := s.Create(ctx, "clients", "alice", testDoc{Name: name})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, "clients", "bob", testDoc{Name: "bob's"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "projects", "alice", testDoc{Name: "project"})
	require.NoError(t, err)

	docs, err := s.QueryByOwner(ctx, "clients", "alice")
	require.NoError(t, err)
	require.Len(t, docs, 3)

	var names []string
	for _, d := range docs {
		var got testDoc
		require.NoError(t, d.Decode(&got))
		names = append(names, got.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)

	none, err := s.QueryByOwner(ctx, "clients", "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_FindOne(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "users", "", testDoc{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	doc, err := s.FindOne(ctx, "users", "email", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)

	_, err = s.FindOne(ctx, "users", "email", "nobody@example.com")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.FindOne(ctx, "users", "email') OR 1=1 --", "x")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestStore_Update(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "clients", "alice", testDoc{Name: "Old"})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "clients", id, testDoc{Name: "New"}))

	doc, err := s.Get(ctx, "clients", id)
	require.NoError(t, err)
	var got testDoc
	require.NoError(t, doc.Decode(&got))
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "alice", got.OwnerID, "owner is preserved")

	err = s.Update(ctx, "clients", "missing", testDoc{Name: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "clients", "alice", testDoc{Name: "Gone"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "clients", id))
	_, err = s.Get(ctx, "clients", id)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.Delete(ctx, "clients", id)
	assert.True(t, errors.Is(err, ErrNotFound))

	n, err := s.Count(ctx, "clients")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_RejectsNonObject(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Create(context.Background(), "clients", "o", []string{"not", "an", "object"})
	assert.Error(t, err)
}

func TestStore_NoCollection(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Create(context.Background(), "", "o", testDoc{})
	assert.True(t, errors.Is(err, ErrNoCollection))
}

func TestStore_Subscribe(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ch := s.Subscribe()

	id, err := s.Create(ctx, "clients", "o", testDoc{Name: "a"})
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, "clients", id, testDoc{Name: "b"}))
	require.NoError(t, s.Delete(ctx, "clients", id))

	for _, want := range []ChangeType{ChangeTypeCreate, ChangeTypeUpdate, ChangeTypeDelete} {
		event := <-ch
		assert.Equal(t, want, event.Type)
		assert.Equal(t, "clients", event.Collection)
		assert.Equal(t, id, event.ID)
	}

	s.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestStore_Close(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)

	ch := s.Subscribe()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, ok := <-ch
	assert.False(t, ok)

	_, err = s.Create(context.Background(), "clients", "o", testDoc{})
	assert.True(t, errors.Is(err, ErrStoreClosed))
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "create", ChangeTypeCreate.String())
	assert.Equal(t, "update", ChangeTypeUpdate.String())
	assert.Equal(t, "delete", ChangeTypeDelete.String())
	assert.Equal(t, "unknown", ChangeType(42).String())
}
