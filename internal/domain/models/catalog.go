package models

type Sort string

const (
	SortNew       Sort = "new"
	SortOld       Sort = "old"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortPopular   Sort = "popular"
)

// CatalogFilter is a validated, normalized query plan for the catalog.
// Filters combine conjunctively across dimensions; within a dimension the
// selected values are a membership test. Price bounds are inclusive.
type CatalogFilter struct {
	Sort       Sort
	ActiveOnly bool
	MinPrice   *int
	MaxPrice   *int
	Artists    []string
	Genres     []string
	Years      []int
	Page       int
	PerPage    int
}

// Facets are the distinct value lists over the whole catalog, regardless
// of the currently applied filters.
type Facets struct {
	Artists []string `json:"artists"`
	Genres  []string `json:"genres"`
	Years   []int    `json:"years"`
}

type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`
}
