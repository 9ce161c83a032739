package user

import "context"

// Store is the persistence contract the auth service depends on. Lookups
// return ErrNotFound when no record matches; transient backend failures are
// returned wrapped and are distinguishable from ErrNotFound via errors.Is.
//
// Implementations must provide read-your-writes consistency for a single
// record: a Get immediately after UpdateFields on the same id observes the
// update. Cross-record transactions are not required.
type Store interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetBySessionToken(ctx context.Context, token string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)

	// Insert creates a record with nil session and reset tokens and returns
	// it with the store-assigned id. Duplicate emails are rejected with
	// ErrDuplicateEmail, but callers are expected to pre-check uniqueness
	// rather than rely on it.
	Insert(ctx context.Context, email, hashedPassword string) (*User, error)

	// UpdateFields partially updates exactly the named fields of the record
	// with the given id. Returns ErrNotFound for an unknown id and
	// ErrInvalidField for an update outside the permitted set.
	UpdateFields(ctx context.Context, id int64, updates ...FieldUpdate) error
}
