package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PassHash     []byte    `db:"pass_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}
