package models

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Intro     string    `db:"intro" json:"intro"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Validate checks the required-field and length rules before the article
// touches the repository.
func (a *Article) Validate() error {
	if a.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(a.Title) > 100 {
		return &ValidationError{Field: "title", Message: "title must be 100 characters or less"}
	}
	if a.Intro == "" {
		return &ValidationError{Field: "intro", Message: "intro is required"}
	}
	if len(a.Intro) > 300 {
		return &ValidationError{Field: "intro", Message: "intro must be 300 characters or less"}
	}
	if a.Body == "" {
		return &ValidationError{Field: "body", Message: "body is required"}
	}

	return nil
}
