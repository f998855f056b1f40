package dto

import "mime/multipart"

// ProductCreateInput is the typed draft built once at the boundary from
// the multipart form; numeric fields are already parsed.
type ProductCreateInput struct {
	Title       string
	Price       int
	Body        string
	Artist      string
	Genre       string
	ReleaseYear int
	Files       []*multipart.FileHeader
}

// ProductUpdateInput uses pointer fields: nil means leave unchanged.
// Files empty means keep the existing image set.
type ProductUpdateInput struct {
	Title       *string
	Price       *int
	IsActive    *bool
	Body        *string
	Artist      *string
	Genre       *string
	ReleaseYear *int
	Files       []*multipart.FileHeader
}
