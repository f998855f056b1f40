package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"
	"github.com/eternal-silence00/Black-Needle/internal/lib/logger/sl"
	"github.com/eternal-silence00/Black-Needle/internal/metrics"
	"github.com/eternal-silence00/Black-Needle/internal/repository"
	storage "github.com/eternal-silence00/Black-Needle/internal/storage/filestorage"
	"github.com/eternal-silence00/Black-Needle/internal/transport/http/dto"

	"github.com/google/uuid"
)

// FacetInvalidator is satisfied by the catalog service; product writes
// drop its cached facet lists.
type FacetInvalidator interface {
	InvalidateFacets()
}

type ProductService struct {
	log         *slog.Logger
	repo        repository.ProductRepository
	fileStorage storage.FileStorage
	facets      FacetInvalidator
}

func NewProductService(log *slog.Logger, repo repository.ProductRepository, fileStorage storage.FileStorage, facets FacetInvalidator) *ProductService {
	return &ProductService{
		log:         log,
		repo:        repo,
		fileStorage: fileStorage,
		facets:      facets,
	}
}

// CreateProduct validates the draft, stores the uploaded files and then
// commits the product with its image rows in one transaction. If the
// commit fails the saved files are removed again, so the store never
// keeps files no row references.
func (s *ProductService) CreateProduct(ctx context.Context, input dto.ProductCreateInput) (models.Product, error) {
	const op = "product_service.CreateProduct"

	log := s.log.With(
		slog.String("op", op),
		slog.String("title", input.Title),
	)

	product := models.Product{
		ID:          uuid.New(),
		Title:       input.Title,
		Price:       input.Price,
		IsActive:    true,
		Body:        input.Body,
		Artist:      input.Artist,
		Genre:       input.Genre,
		ReleaseYear: input.ReleaseYear,
		CreatedAt:   time.Now().UTC(),
	}

	if err := product.Validate(); err != nil {
		log.Warn("product validation failed", sl.Err(err))
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := s.saveFiles(ctx, product.ID, input.Files)
	if err != nil {
		log.Error("failed to save image files", sl.Err(err))
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateWithImages(ctx, product, saved)
	if err != nil {
		s.removeFiles(ctx, saved)
		log.Error("failed to create product", sl.Err(err))
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	s.facets.InvalidateFacets()

	log.Info("product created", slog.String("product_id", id.String()))

	return s.repo.Product(ctx, id)
}

// ViewProduct bumps the product's view counter and returns the product
// with the counter already reflecting this visit, so the rendered count
// matches the stored row.
func (s *ProductService) ViewProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	const op = "product_service.ViewProduct"

	product, err := s.repo.Product(ctx, id)
	if err != nil {
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	product.Views++
	metrics.ProductViewsTotal.Inc()

	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	const op = "product_service.GetProduct"

	product, err := s.repo.Product(ctx, id)
	if err != nil {
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	return product, nil
}

// UpdateProduct applies the changed fields. Images are replaced only
// when new files were actually supplied; an empty upload leaves the
// existing set untouched.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input dto.ProductUpdateInput) (models.Product, error) {
	const op = "product_service.UpdateProduct"

	log := s.log.With(
		slog.String("op", op),
		slog.String("product_id", id.String()),
	)

	updates, err := buildUpdates(input)
	if err != nil {
		log.Warn("patch validation failed", sl.Err(err))
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			log.Error("failed to update product", sl.Err(err))
			return models.Product{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if len(input.Files) > 0 {
		saved, err := s.saveFiles(ctx, id, input.Files)
		if err != nil {
			log.Error("failed to save image files", sl.Err(err))
			return models.Product{}, fmt.Errorf("%s: %w", op, err)
		}

		removed, err := s.repo.ReplaceImages(ctx, id, saved)
		if err != nil {
			s.removeFiles(ctx, saved)
			log.Error("failed to replace images", sl.Err(err))
			return models.Product{}, fmt.Errorf("%s: %w", op, err)
		}

		s.removeFiles(ctx, removed)
	}

	s.facets.InvalidateFacets()

	log.Info("product updated")

	return s.repo.Product(ctx, id)
}

// DeleteProduct removes the product and image rows first, then the
// backing files best-effort. A crash in between leaves orphaned files,
// which a sweep can reclaim; it never leaves rows without files.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	const op = "product_service.DeleteProduct"

	log := s.log.With(
		slog.String("op", op),
		slog.String("product_id", id.String()),
	)

	filenames, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.removeFiles(ctx, filenames)
	s.facets.InvalidateFacets()

	log.Info("product deleted", slog.Int("images_removed", len(filenames)))

	return nil
}

func (s *ProductService) saveFiles(ctx context.Context, productID uuid.UUID, files []*multipart.FileHeader) ([]string, error) {
	subPath := filepath.Join("products", productID.String())

	var saved []string
	for _, file := range files {
		if file.Filename == "" {
			continue
		}

		relPath, err := s.fileStorage.Save(ctx, file, subPath)
		if err != nil {
			s.removeFiles(ctx, saved)
			return nil, err
		}
		saved = append(saved, relPath)
	}

	return saved, nil
}

func (s *ProductService) removeFiles(ctx context.Context, filenames []string) {
	for _, filename := range filenames {
		if err := s.fileStorage.Delete(ctx, filename); err != nil {
			s.log.Warn("failed to delete image file",
				slog.String("filename", filename),
				sl.Err(err),
			)
		}
	}
}

// buildUpdates turns the pointer-field patch into a column update map,
// re-checking the same field rules the create path enforces.
func buildUpdates(input dto.ProductUpdateInput) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if input.Title != nil {
		if *input.Title == "" {
			return nil, &models.ValidationError{Field: "title", Message: "title is required"}
		}
		if len(*input.Title) > 100 {
			return nil, &models.ValidationError{Field: "title", Message: "title must be 100 characters or less"}
		}
		updates["title"] = *input.Title
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, &models.ValidationError{Field: "price", Message: "price must not be negative"}
		}
		updates["price"] = *input.Price
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Body != nil {
		if *input.Body == "" {
			return nil, &models.ValidationError{Field: "body", Message: "body is required"}
		}
		updates["body"] = *input.Body
	}
	if input.Artist != nil {
		if *input.Artist == "" {
			return nil, &models.ValidationError{Field: "artist", Message: "artist is required"}
		}
		updates["artist"] = *input.Artist
	}
	if input.Genre != nil {
		if *input.Genre == "" {
			return nil, &models.ValidationError{Field: "genre", Message: "genre is required"}
		}
		updates["genre"] = *input.Genre
	}
	if input.ReleaseYear != nil {
		if *input.ReleaseYear == 0 {
			return nil, &models.ValidationError{Field: "release_year", Message: "release year is required"}
		}
		updates["release_year"] = *input.ReleaseYear
	}

	return updates, nil
}
