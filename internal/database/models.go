package database

import "github.com/uptrace/bun"

// User is the persisted shape of a user record.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             int64   `bun:"id,pk,autoincrement"`
	Email          string  `bun:"email,notnull,unique"`
	HashedPassword string  `bun:"hashed_password,notnull"`
	SessionToken   *string `bun:"session_token"`
	ResetToken     *string `bun:"reset_token"`
}
