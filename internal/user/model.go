package user

import "errors"

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidField signals a store called with a field outside the
	// permitted set. It indicates a programming error, not bad user input.
	ErrInvalidField = errors.New("invalid user field")
)

// User represents one registered account. SessionToken and ResetToken are
// nil while no session is active / no reset is pending.
type User struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	HashedPassword string  `json:"-"` // Never expose the credential in JSON
	SessionToken   *string `json:"-"`
	ResetToken     *string `json:"-"`
}

// field names the mutable columns of a user record. The type is unexported
// so callers can only produce FieldUpdate values through the constructors
// below, which keeps the permitted set closed at compile time.
type field string

const (
	fieldEmail          field = "email"
	fieldHashedPassword field = "hashed_password"
	fieldSessionToken   field = "session_token"
	fieldResetToken     field = "reset_token"
)

// FieldUpdate is one named-field assignment for Store.UpdateFields.
// A nil value clears the column to NULL.
type FieldUpdate struct {
	field field
	value *string
}

func SetEmail(email string) FieldUpdate {
	return FieldUpdate{field: fieldEmail, value: &email}
}

func SetHashedPassword(hash string) FieldUpdate {
	return FieldUpdate{field: fieldHashedPassword, value: &hash}
}

func SetSessionToken(token string) FieldUpdate {
	return FieldUpdate{field: fieldSessionToken, value: &token}
}

func ClearSessionToken() FieldUpdate {
	return FieldUpdate{field: fieldSessionToken}
}

func SetResetToken(token string) FieldUpdate {
	return FieldUpdate{field: fieldResetToken, value: &token}
}

func ClearResetToken() FieldUpdate {
	return FieldUpdate{field: fieldResetToken}
}
