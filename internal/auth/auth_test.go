package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmylchreest/bizdesk/internal/credential"
	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/store"
)

func newTestService(t *testing.T, session SessionStore) (*Service, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := NewService(s, session, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.SetBcryptCost(bcrypt.MinCost)
	return svc, s
}

func TestSignUp(t *testing.T) {
	svc, s := newTestService(t, nil)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "  Alice@Example.com ", "secret1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.DisplayName)
	assert.Empty(t, user.PasswordHash, "hash never leaves the service")

	current := svc.Current()
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)

	doc, err := s.Get(ctx, model.CollectionUsers, user.ID)
	require.NoError(t, err)
	var stored model.User
	require.NoError(t, doc.Decode(&stored))
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
}

func TestSignUp_Rejections(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "bob@example.com", "secret1", "Bob")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"invalid email", "not-an-email", "secret1", ErrInvalidEmail},
		{"empty email", "", "secret1", ErrInvalidEmail},
		{"weak password", "carol@example.com", "123", ErrWeakPassword},
		{"taken", "BOB@example.com", "secret1", ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.email, tt.password, "")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSignIn(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.SignUp(ctx, "dana@example.com", "hunter22", "Dana")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx))
	assert.Nil(t, svc.Current())

	_, err = svc.SignIn(ctx, "dana@example.com", "wrong-pass")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.SignIn(ctx, "nobody@example.com", "hunter22")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	user, err := svc.SignIn(ctx, "DANA@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "Dana", svc.Current().DisplayName)
}

func TestSignOut_NotSignedIn(t *testing.T) {
	svc, _ := newTestService(t, nil)

	err := svc.SignOut(context.Background())
	assert.True(t, errors.Is(err, ErrNotSignedIn))

	_, err = svc.RequireUser()
	assert.True(t, errors.Is(err, ErrNotSignedIn))
}

func TestOnIdentityChange(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	var (
		mu   sync.Mutex
		seen []string
	)
	unsubscribe := svc.OnIdentityChange(func(u *model.User) {
		mu.Lock()
		defer mu.Unlock()
		if u == nil {
			seen = append(seen, "<nil>")
			return
		}
		seen = append(seen, u.Email)
	})

	_, err := svc.SignUp(ctx, "erin@example.com", "secret1", "")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx))

	unsubscribe()
	_, err = svc.SignIn(ctx, "erin@example.com", "secret1")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"<nil>", "erin@example.com", "<nil>"}, seen)
}

func TestRestore_FromKeyring(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	session := credential.NewSession(ring)

	svc, s := newTestService(t, session)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "fay@example.com", "secret1", "")
	require.NoError(t, err)

	remembered, err := session.Load()
	require.NoError(t, err)
	assert.Equal(t, user.ID, remembered)

	// A second service over the same store and keyring picks the user up.
	restored := NewService(s, session, nil)
	require.NoError(t, restored.Restore(ctx))
	require.NotNil(t, restored.Current())
	assert.Equal(t, user.ID, restored.Current().ID)

	require.NoError(t, restored.SignOut(ctx))
	remembered, err = session.Load()
	require.NoError(t, err)
	assert.Empty(t, remembered)
}

func TestRestore_StaleSession(t *testing.T) {
	session := credential.NewSession(keyring.NewArrayKeyring(nil))
	require.NoError(t, session.Save("deleted-user"))

	svc, _ := newTestService(t, session)
	require.NoError(t, svc.Restore(context.Background()))
	assert.Nil(t, svc.Current())

	remembered, err := session.Load()
	require.NoError(t, err)
	assert.Empty(t, remembered)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Invalid email or password.", Message(ErrInvalidCredentials))
	assert.Equal(t, "Password should be at least 6 characters.", Message(ErrWeakPassword))
	assert.Equal(t, "An account with this email already exists.", Message(ErrEmailTaken))
	assert.Equal(t, "Something went wrong. Please try again.", Message(errors.New("boom")))
}
