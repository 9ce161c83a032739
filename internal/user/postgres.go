package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/sessionworks/authcore/internal/database"
)

// PostgresStore implements Store on top of Postgres via bun.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.getBy(ctx, "id", id)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *PostgresStore) GetBySessionToken(ctx context.Context, token string) (*User, error) {
	return s.getBy(ctx, "session_token", token)
}

func (s *PostgresStore) GetByResetToken(ctx context.Context, token string) (*User, error) {
	return s.getBy(ctx, "reset_token", token)
}

func (s *PostgresStore) getBy(ctx context.Context, column string, value any) (*User, error) {
	rec := new(database.User)
	err := s.db.NewSelect().
		Model(rec).
		Where("? = ?", bun.Ident(column), value).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return mapDBUserToModel(rec), nil
}

func (s *PostgresStore) Insert(ctx context.Context, email, hashedPassword string) (*User, error) {
	rec := &database.User{
		Email:          email,
		HashedPassword: hashedPassword,
	}

	_, err := s.db.NewInsert().
		Model(rec).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return mapDBUserToModel(rec), nil
}

func (s *PostgresStore) UpdateFields(ctx context.Context, id int64, updates ...FieldUpdate) error {
	q := s.db.NewUpdate().
		Model((*database.User)(nil)).
		Where("id = ?", id)

	for _, fu := range updates {
		switch fu.field {
		case fieldEmail:
			if fu.value == nil {
				return ErrInvalidField
			}
			q = q.Set("email = ?", *fu.value)
		case fieldHashedPassword:
			if fu.value == nil {
				return ErrInvalidField
			}
			q = q.Set("hashed_password = ?", *fu.value)
		case fieldSessionToken:
			q = q.Set("session_token = ?", fu.value)
		case fieldResetToken:
			q = q.Set("reset_token = ?", fu.value)
		default:
			return ErrInvalidField
		}
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user fields: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts the persisted shape to the domain model.
func mapDBUserToModel(rec *database.User) *User {
	return &User{
		ID:             rec.ID,
		Email:          rec.Email,
		HashedPassword: rec.HashedPassword,
		SessionToken:   rec.SessionToken,
		ResetToken:     rec.ResetToken,
	}
}
