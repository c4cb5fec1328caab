// Package auth provides email/password accounts over the document store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/store"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

// Authentication errors.
var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotSignedIn        = errors.New("not signed in")
)

// SessionStore remembers the signed-in user between runs.
type SessionStore interface {
	Load() (string, error)
	Save(userID string) error
	Clear() error
}

// IdentityListener receives the current user, or nil when signed out.
type IdentityListener func(user *model.User)

// Service manages sign-up, sign-in and the current identity.
type Service struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	docs     store.Documents
	session  SessionStore
	validate *validator.Validate
	cost     int

	current      *model.User
	listeners    map[int]IdentityListener
	nextListener int
}

// NewService creates a Service. session may be nil, in which case the
// identity only lasts for the life of the process.
func NewService(docs store.Documents, session SessionStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:    logger,
		docs:      docs,
		session:   session,
		validate:  validator.New(),
		cost:      bcrypt.DefaultCost,
		listeners: make(map[int]IdentityListener),
	}
}

// SetBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *Service) SetBcryptCost(cost int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cost = cost
}

// Restore signs in the user remembered by the session store, if any.
// A stale session (user deleted) is cleared silently.
func (s *Service) Restore(ctx context.Context) error {
	if s.session == nil {
		return nil
	}

	userID, err := s.session.Load()
	if err != nil {
		return err
	}
	if userID == "" {
		return nil
	}

	doc, err := s.docs.Get(ctx, model.CollectionUsers, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("clearing stale session", "user_id", userID)
			return s.session.Clear()
		}
		return err
	}

	var user model.User
	if err := doc.Decode(&user); err != nil {
		return err
	}
	s.setCurrent(&user)
	return nil
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.docs.FindOne(ctx, model.CollectionUsers, "email", email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	s.mu.RLock()
	cost := s.cost
	s.mu.RUnlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	user := model.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	id, err := s.docs.Create(ctx, model.CollectionUsers, "", user)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	user.ID = id

	s.logger.Info("user signed up", "user_id", id)
	if err := s.signIn(&user); err != nil {
		return nil, err
	}
	return publicUser(&user), nil
}

// SignIn verifies credentials and makes the user current.
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)

	doc, err := s.docs.FindOne(ctx, model.CollectionUsers, "email", email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	var user model.User
	if err := doc.Decode(&user); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("sign-in rejected", "email", email)
		return nil, ErrInvalidCredentials
	}

	if err := s.signIn(&user); err != nil {
		return nil, err
	}
	s.logger.Info("user signed in", "user_id", user.ID)
	return publicUser(&user), nil
}

// SignOut clears the current identity.
func (s *Service) SignOut(ctx context.Context) error {
	if s.Current() == nil {
		return ErrNotSignedIn
	}
	if s.session != nil {
		if err := s.session.Clear(); err != nil {
			return err
		}
	}
	s.setCurrent(nil)
	s.logger.Info("user signed out")
	return nil
}

// Current returns the signed-in user, or nil.
func (s *Service) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return publicUser(s.current)
}

// RequireUser returns the signed-in user or ErrNotSignedIn.
func (s *Service) RequireUser() (*model.User, error) {
	if u := s.Current(); u != nil {
		return u, nil
	}
	return nil, ErrNotSignedIn
}

// OnIdentityChange registers fn and calls it immediately with the current
// identity, then again on every sign-in and sign-out.
// The returned function removes the registration.
func (s *Service) OnIdentityChange(fn IdentityListener) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	current := publicUser(s.current)
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Service) signIn(user *model.User) error {
	if s.session != nil {
		if err := s.session.Save(user.ID); err != nil {
			return err
		}
	}
	s.setCurrent(user)
	return nil
}

// setCurrent swaps the identity and notifies listeners outside the lock.
func (s *Service) setCurrent(user *model.User) {
	s.mu.Lock()
	s.current = publicUser(user)
	listeners := make([]IdentityListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	current := publicUser(s.current)
	s.mu.Unlock()

	for _, l := range listeners {
		l(current)
	}
}

// publicUser returns a copy without the password hash.
func publicUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Message turns an auth error into text suitable for a toast.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmailTaken):
		return "An account with this email already exists."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, ErrWeakPassword):
		return fmt.Sprintf("Password should be at least %d characters.", MinPasswordLength)
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrNotSignedIn):
		return "You need to sign in first."
	default:
		return "Something went wrong. Please try again."
	}
}
