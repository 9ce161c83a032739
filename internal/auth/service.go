package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sessionworks/authcore/internal/logging"
	"github.com/sessionworks/authcore/internal/user"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
)

// Notifier delivers best-effort notifications about auth events.
type Notifier interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

// Service orchestrates registration, login, session issuance and password
// reset. It holds no durable state of its own; everything lives in the
// user store, and User values returned from lookups are never cached
// across calls.
type Service struct {
	store    user.Store
	hasher   Hasher
	tokens   TokenSource
	notifier Notifier // optional, may be nil
	logger   *logging.Logger
}

func NewService(store user.Store, hasher Hasher, tokens TokenSource, notifier Notifier, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
}

// Register creates a new user account. Fails with user.ErrDuplicateEmail
// when the email is taken; uniqueness is pre-checked here rather than
// delegated to the store.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	_, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return nil, user.ErrDuplicateEmail
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.store.Insert(ctx, email, hashedPassword)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// ValidLogin reports whether the credentials match a registered user.
// An unknown email and a wrong password are indistinguishable to the
// caller; only transient store failures surface as errors.
func (s *Service) ValidLogin(ctx context.Context, email, password string) (bool, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	return s.hasher.Verify(password, u.HashedPassword), nil
}

// CreateSession issues a fresh session token for the user with the given
// email and persists it. Returns "" (not an error) for an unknown email so
// the caller maps both outcomes through one deny path.
//
// A previously issued token is overwritten, not revoked: the record holds
// a single session slot and the last writer wins. The earlier token simply
// stops resolving.
func (s *Service) CreateSession(ctx context.Context, email string) (string, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateFields(ctx, u.ID, user.SetSessionToken(token)); err != nil {
		return "", fmt.Errorf("failed to persist session token: %w", err)
	}

	return token, nil
}

// GetUserFromSession resolves a session token to its user. Returns
// (nil, nil) for an empty or unknown token; session lookup failure is
// always a soft "not authenticated", never a hard error.
func (s *Service) GetUserFromSession(ctx context.Context, sessionID string) (*user.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	u, err := s.store.GetBySessionToken(ctx, sessionID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by session token: %w", err)
	}

	return u, nil
}

// DestroySession clears the session slot of the given user. An unknown id
// is a silent no-op; the session is already gone.
func (s *Service) DestroySession(ctx context.Context, userID int64) error {
	err := s.store.UpdateFields(ctx, userID, user.ClearSessionToken())
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}

// GetResetToken issues a password-reset token for the given email. Unlike
// the session paths, an unknown email propagates user.ErrNotFound: the
// caller must be able to distinguish "token issued" from "cannot service
// this request".
func (s *Service) GetResetToken(ctx context.Context, email string) (string, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.ErrNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateFields(ctx, u.ID, user.SetResetToken(token)); err != nil {
		return "", fmt.Errorf("failed to persist reset token: %w", err)
	}

	if s.notifier != nil {
		// Best effort, off the request path. The token is still returned to
		// the caller either way.
		go func() {
			emailCtx := context.Background()
			if err := s.notifier.SendPasswordResetEmail(emailCtx, email, token); err != nil {
				s.logger.Warn("failed to send password reset email", "email", email, "error", err)
			}
		}()
	}

	return token, nil
}

// UpdatePassword consumes a reset token: the new password hash is written
// and the token cleared in one combined update, which is what makes the
// token single-use. An unknown token propagates user.ErrNotFound.
func (s *Service) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}

	u, err := s.store.GetByResetToken(ctx, resetToken)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user by reset token: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.store.UpdateFields(ctx, u.ID,
		user.SetHashedPassword(hashedPassword),
		user.ClearResetToken(),
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
