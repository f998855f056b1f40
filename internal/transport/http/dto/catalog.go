package dto

import "github.com/eternal-silence00/Black-Needle/internal/domain/models"

// CatalogQuery carries the raw query-string parameters. Everything stays
// a string until the catalog service normalizes it, so a malformed value
// can be rejected with the parameter's name attached.
type CatalogQuery struct {
	Sort     string   `query:"sort"`
	Active   string   `query:"active"`
	MinPrice string   `query:"min_price"`
	MaxPrice string   `query:"max_price"`
	Artists  []string `query:"artist[]"`
	Genres   []string `query:"genre[]"`
	Years    []string `query:"year[]"`
	Page     string   `query:"page"`
}

type CatalogPage struct {
	Items      []models.Product  `json:"items"`
	Pagination models.Pagination `json:"pagination"`
	Facets     models.Facets     `json:"facets"`
}
