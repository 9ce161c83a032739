package user

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation guarded by a single
// mutex. It backs the memory store backend and the test suites.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[int64]*User
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]*User)}
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.findBy(func(u *User) bool { return u.Email == email })
}

func (s *MemoryStore) GetBySessionToken(ctx context.Context, token string) (*User, error) {
	return s.findBy(func(u *User) bool {
		return u.SessionToken != nil && *u.SessionToken == token
	})
}

func (s *MemoryStore) GetByResetToken(ctx context.Context, token string) (*User, error) {
	return s.findBy(func(u *User) bool {
		return u.ResetToken != nil && *u.ResetToken == token
	})
}

func (s *MemoryStore) Insert(ctx context.Context, email, hashedPassword string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	s.nextID++
	u := &User{
		ID:             s.nextID,
		Email:          email,
		HashedPassword: hashedPassword,
	}
	s.users[u.ID] = u

	return cloneUser(u), nil
}

func (s *MemoryStore) UpdateFields(ctx context.Context, id int64, updates ...FieldUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}

	// Validate the whole batch before applying so a partial update never
	// sticks.
	for _, fu := range updates {
		switch fu.field {
		case fieldEmail, fieldHashedPassword:
			if fu.value == nil {
				return ErrInvalidField
			}
		case fieldSessionToken, fieldResetToken:
		default:
			return ErrInvalidField
		}
	}

	for _, fu := range updates {
		switch fu.field {
		case fieldEmail:
			u.Email = *fu.value
		case fieldHashedPassword:
			u.HashedPassword = *fu.value
		case fieldSessionToken:
			u.SessionToken = copyValue(fu.value)
		case fieldResetToken:
			u.ResetToken = copyValue(fu.value)
		}
	}

	return nil
}

// findBy scans all records under the lock; fine for the record counts this
// backend is meant for.
func (s *MemoryStore) findBy(match func(*User) bool) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// cloneUser copies a record so callers never hold references into the map.
func cloneUser(u *User) *User {
	out := *u
	out.SessionToken = copyValue(u.SessionToken)
	out.ResetToken = copyValue(u.ResetToken)
	return &out
}

func copyValue(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
