// Package store provides the document store used for users, clients and projects.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeCreate indicates a document was created.
	ChangeTypeCreate ChangeType = iota
	// ChangeTypeUpdate indicates a document was replaced.
	ChangeTypeUpdate
	// ChangeTypeDelete indicates a document was deleted.
	ChangeTypeDelete
)

// String returns the string representation of ChangeType.
func (c ChangeType) String() string {
	switch c {
	case ChangeTypeCreate:
		return "create"
	case ChangeTypeUpdate:
		return "update"
	case ChangeTypeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type       ChangeType
	Collection string
	ID         string
}

// Document is a stored JSON document.
type Document struct {
	ID         string
	Collection string
	OwnerID    string
	Data       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decoding %s/%s: %w", d.Collection, d.ID, err)
	}
	return nil
}

// Documents is the persistence contract consumed by the rest of the application.
type Documents interface {
	Create(ctx context.Context, collection, ownerID string, doc any) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	QueryByOwner(ctx context.Context, collection, ownerID string) ([]Document, error)
	FindOne(ctx context.Context, collection, field string, value any) (Document, error)
	Update(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
}

var _ Documents = (*Store)(nil)

// Store implements Documents on SQLite.
type Store struct {
	db *sqlx.DB

	mu          sync.Mutex
	subscribers []chan ChangeEvent
	closed      bool
}

// documentRow is the database shape of a Document.
type documentRow struct {
	Collection string `db:"collection"`
	ID         string `db:"id"`
	OwnerID    string `db:"owner_id"`
	Data       string `db:"data"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
}

func (r documentRow) document() Document {
	return Document{
		ID:         r.ID,
		Collection: r.Collection,
		OwnerID:    r.OwnerID,
		Data:       json.RawMessage(r.Data),
		CreatedAt:  time.UnixMilli(r.CreatedAt),
		UpdatedAt:  time.UnixMilli(r.UpdatedAt),
	}
}

// fieldPattern restricts FindOne to plain top-level JSON keys.
var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open opens (or creates) the SQLite database at path, enables WAL mode
// and applies pending migrations. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Create stores doc under a new id and returns it.
// The stored body carries "id" and, when ownerID is set, "owner_id".
func (s *Store) Create(ctx context.Context, collection, ownerID string, doc any) (string, error) {
	if err := s.check(collection); err != nil {
		return "", err
	}

	id := uuid.New().String()
	data, err := encode(doc, id, ownerID)
	if err != nil {
		return "", err
	}

	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, owner_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		collection, id, ownerID, data, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating %s document: %w", collection, err)
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeCreate, Collection: collection, ID: id})
	return id, nil
}

// Get returns a single document by id.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := s.check(collection); err != nil {
		return Document{}, err
	}

	var row documentRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return Document{}, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	return row.document(), nil
}

// QueryByOwner returns every document in collection owned by ownerID, oldest first.
func (s *Store) QueryByOwner(ctx context.Context, collection, ownerID string) ([]Document, error) {
	if err := s.check(collection); err != nil {
		return nil, err
	}

	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM documents
		WHERE collection = ? AND owner_id = ?
		ORDER BY created_at, rowid`,
		collection, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s by owner: %w", collection, err)
	}

	docs := make([]Document, len(rows))
	for i, r := range rows {
		docs[i] = r.document()
	}
	return docs, nil
}

// FindOne returns the first document whose top-level JSON field equals value.
func (s *Store) FindOne(ctx context.Context, collection, field string, value any) (Document, error) {
	if err := s.check(collection); err != nil {
		return Document{}, err
	}
	if !fieldPattern.MatchString(field) {
		return Document{}, fmt.Errorf("invalid field name %q", field)
	}

	var row documentRow
	err := s.db.GetContext(ctx, &row, `
		SELECT * FROM documents
		WHERE collection = ? AND json_extract(data, ?) = ?
		ORDER BY created_at, rowid
		LIMIT 1`,
		collection, "$."+field, value,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, fmt.Errorf("%s where %s: %w", collection, field, ErrNotFound)
		}
		return Document{}, fmt.Errorf("finding %s by %s: %w", collection, field, err)
	}
	return row.document(), nil
}

// Update replaces the body of an existing document. The owner is unchanged.
func (s *Store) Update(ctx context.Context, collection, id string, doc any) error {
	if err := s.check(collection); err != nil {
		return err
	}

	existing, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}

	data, err := encode(doc, id, existing.OwnerID)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE documents SET data = ?, updated_at = ?
		WHERE collection = ? AND id = ?`,
		data, time.Now().UnixMilli(), collection, id,
	)
	if err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeUpdate, Collection: collection, ID: id})
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.check(collection); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeDelete, Collection: collection, ID: id})
	return nil
}

// Count returns the number of documents in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if err := s.check(collection); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM documents WHERE collection = ?", collection); err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	return n, nil
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close releases the database and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	return s.db.Close()
}

// check rejects calls on a closed store or without a collection.
func (s *Store) check(collection string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return ErrStoreClosed
	}
	if collection == "" {
		return ErrNoCollection
	}
	return nil
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

// encode marshals doc and stamps the id and owner fields into the JSON object.
func encode(doc any, id, ownerID string) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	fields["id"] = id
	if ownerID != "" {
		fields["owner_id"] = ownerID
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	return string(out), nil
}

// Store errors.
const (
	ErrStoreClosed  = storeError("store is closed")
	ErrNotFound     = storeError("document not found")
	ErrNoCollection = storeError("collection name is required")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
