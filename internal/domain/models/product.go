package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item. A product exclusively owns its images:
// the image rows and their backing files are created and removed together.
type Product struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Price       int            `db:"price" json:"price"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	Body        string         `db:"body" json:"body"`
	Artist      string         `db:"artist" json:"artist"`
	Genre       string         `db:"genre" json:"genre"`
	ReleaseYear int            `db:"release_year" json:"release_year"`
	Views       int            `db:"views" json:"views"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	Images      []ProductImage `json:"images,omitempty"`
}

type ProductImage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	Filename  string    `db:"filename" json:"filename"`
}

func (p *Product) Validate() error {
	if p.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(p.Title) > 100 {
		return &ValidationError{Field: "title", Message: "title must be 100 characters or less"}
	}
	if p.Price < 0 {
		return &ValidationError{Field: "price", Message: "price must not be negative"}
	}
	if p.Body == "" {
		return &ValidationError{Field: "body", Message: "body is required"}
	}
	if p.Artist == "" {
		return &ValidationError{Field: "artist", Message: "artist is required"}
	}
	if p.Genre == "" {
		return &ValidationError{Field: "genre", Message: "genre is required"}
	}
	if p.ReleaseYear == 0 {
		return &ValidationError{Field: "release_year", Message: "release year is required"}
	}

	return nil
}
