package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"
	"github.com/eternal-silence00/Black-Needle/internal/lib/logger/sl"
	"github.com/eternal-silence00/Black-Needle/internal/repository"
	"github.com/eternal-silence00/Black-Needle/internal/transport/http/dto"

	"github.com/patrickmn/go-cache"
)

// PageSize is fixed: the catalog always paginates by 40.
const PageSize = 40

const (
	facetCacheKey = "catalog_facets"
	facetCacheTTL = time.Minute
)

// CatalogService turns raw query parameters into a validated plan,
// executes it and decorates the result with pagination metadata and the
// whole-catalog facet lists.
type CatalogService struct {
	log    *slog.Logger
	repo   repository.ProductRepository
	facets *cache.Cache
}

func NewCatalogService(log *slog.Logger, repo repository.ProductRepository) *CatalogService {
	return &CatalogService{
		log:    log,
		repo:   repo,
		facets: cache.New(facetCacheTTL, 5*time.Minute),
	}
}

func (s *CatalogService) Browse(ctx context.Context, q dto.CatalogQuery) (*dto.CatalogPage, error) {
	const op = "catalog_service.Browse"

	log := s.log.With(slog.String("op", op))

	filter, err := Normalize(q)
	if err != nil {
		log.Warn("rejected catalog query", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, total, err := s.repo.Query(ctx, filter)
	if err != nil {
		log.Error("catalog query failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	facets, err := s.catalogFacets(ctx)
	if err != nil {
		log.Error("failed to load facets", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	totalPages := (total + PageSize - 1) / PageSize

	if items == nil {
		items = []models.Product{}
	}

	return &dto.CatalogPage{
		Items: items,
		Pagination: models.Pagination{
			Page:       filter.Page,
			TotalPages: totalPages,
			TotalCount: total,
		},
		Facets: facets,
	}, nil
}

// InvalidateFacets drops the cached facet lists; product writes call it
// so the selectable values never lag the catalog.
func (s *CatalogService) InvalidateFacets() {
	s.facets.Delete(facetCacheKey)
}

func (s *CatalogService) catalogFacets(ctx context.Context) (models.Facets, error) {
	if cached, ok := s.facets.Get(facetCacheKey); ok {
		return cached.(models.Facets), nil
	}

	facets, err := s.repo.Facets(ctx)
	if err != nil {
		return models.Facets{}, err
	}

	s.facets.Set(facetCacheKey, facets, facetCacheTTL)

	return facets, nil
}

// Normalize validates the raw query parameters and builds the plan.
// The policy for malformed numeric input is uniform: reject with a
// ValidationError naming the parameter, never silently ignore.
func Normalize(q dto.CatalogQuery) (models.CatalogFilter, error) {
	filter := models.CatalogFilter{
		Sort:    models.SortNew,
		Page:    1,
		PerPage: PageSize,
		Artists: q.Artists,
		Genres:  q.Genres,
	}

	switch q.Sort {
	case "":
	case string(models.SortNew), string(models.SortOld),
		string(models.SortPriceAsc), string(models.SortPriceDesc),
		string(models.SortPopular):
		filter.Sort = models.Sort(q.Sort)
	default:
		return models.CatalogFilter{}, &models.ValidationError{Field: "sort", Message: "unknown sort order"}
	}

	if q.Active != "" {
		active, err := strconv.ParseBool(q.Active)
		if err != nil {
			return models.CatalogFilter{}, &models.ValidationError{Field: "active", Message: "must be a boolean"}
		}
		filter.ActiveOnly = active
	}

	if q.MinPrice != "" {
		min, err := parsePrice(q.MinPrice)
		if err != nil {
			return models.CatalogFilter{}, &models.ValidationError{Field: "min_price", Message: "must be a non-negative integer"}
		}
		filter.MinPrice = &min
	}

	if q.MaxPrice != "" {
		max, err := parsePrice(q.MaxPrice)
		if err != nil {
			return models.CatalogFilter{}, &models.ValidationError{Field: "max_price", Message: "must be a non-negative integer"}
		}
		filter.MaxPrice = &max
	}

	for _, raw := range q.Years {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return models.CatalogFilter{}, &models.ValidationError{Field: "year", Message: "must be an integer"}
		}
		filter.Years = append(filter.Years, year)
	}

	if q.Page != "" {
		page, err := strconv.Atoi(q.Page)
		if err != nil || page < 1 {
			return models.CatalogFilter{}, &models.ValidationError{Field: "page", Message: "must be a positive integer"}
		}
		filter.Page = page
	}

	return filter, nil
}

func parsePrice(raw string) (int, error) {
	price, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price")
	}
	return price, nil
}
