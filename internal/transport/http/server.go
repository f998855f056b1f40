package http

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"
	"github.com/eternal-silence00/Black-Needle/internal/lib/logger/sl"
	"github.com/eternal-silence00/Black-Needle/internal/services/auth"
	"github.com/eternal-silence00/Black-Needle/internal/storage"
	"github.com/eternal-silence00/Black-Needle/internal/transport/http/dto"
	"github.com/eternal-silence00/Black-Needle/internal/transport/http/dto/request"
	"github.com/eternal-silence00/Black-Needle/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (models.User, error)
	RegisterNewUser(ctx context.Context, username, password string) (uuid.UUID, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type TokenService interface {
	GenerateTokens(ctx context.Context, user models.User) (*models.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

type CatalogService interface {
	Browse(ctx context.Context, q dto.CatalogQuery) (*dto.CatalogPage, error)
}

type ProductService interface {
	CreateProduct(ctx context.Context, input dto.ProductCreateInput) (models.Product, error)
	ViewProduct(ctx context.Context, id uuid.UUID) (models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input dto.ProductUpdateInput) (models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ArticleService interface {
	CreateArticle(ctx context.Context, req dto.ArticleCreateRequest) (models.Article, error)
	Article(ctx context.Context, id uuid.UUID) (models.Article, error)
	Articles(ctx context.Context) ([]models.Article, error)
	UpdateArticle(ctx context.Context, id uuid.UUID, req dto.ArticleUpdateRequest) (models.Article, error)
	DeleteArticle(ctx context.Context, id uuid.UUID) error
}

type Routers struct {
	log            *slog.Logger
	AuthService    AuthService
	TokenService   TokenService
	CatalogService CatalogService
	ProductService ProductService
	ArticleService ArticleService
}

func NewRouter(
	log *slog.Logger,
	authService AuthService,
	tokenService TokenService,
	catalogService CatalogService,
	productService ProductService,
	articleService ArticleService,
) *Routers {
	return &Routers{
		log:            log,
		AuthService:    authService,
		TokenService:   tokenService,
		CatalogService: catalogService,
		ProductService: productService,
		ArticleService: articleService,
	}
}

func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(slog.String("op", op))

	var req request.RegisterRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid register request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	userID, err := r.AuthService.RegisterNewUser(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExist) {
			log.Warn("user already exists", slog.String("username", req.Username))
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}

		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status:  "error",
			Error:   "internal_error",
			Details: "registration failed",
		})
	}

	log.Info("user registered", slog.String("user_id", userID.String()))

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]uuid.UUID{
		"user_id": userID,
	}))
}

func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	user, err := r.AuthService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}

		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	sess, _ := session.Get("session", c)
	sess.Values["user_id"] = user.ID.String()
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		log.Error("failed to save session", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	tokens, err := r.TokenService.GenerateTokens(c.Request().Context(), user)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{
		"user_id":       user.ID.String(),
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	}))
}

func (r *Routers) Logout(c echo.Context) error {
	sess, _ := session.Get("session", c)
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(slog.String("op", op))

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("invalid refresh request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	tokens, err := r.TokenService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Warn("refresh rejected", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, tokens)
}

// Catalog handles GET /cat: filter/sort/paginate plus facets.
func (r *Routers) Catalog(c echo.Context) error {
	const op = "http.routers.Catalog"

	log := r.log.With(slog.String("op", op))

	var q dto.CatalogQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	page, err := r.CatalogService.Browse(c.Request().Context(), q)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, response.ValidationFailed(ve.Field, ve.Message))
		}

		log.Error("catalog query failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "catalog_query_failed",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(page))
}

// ItemDetail handles GET /cat/:id and bumps the view counter.
func (r *Routers) ItemDetail(c echo.Context) error {
	const op = "http.routers.ItemDetail"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationFailed("id", "invalid product id"))
	}

	product, err := r.ProductService.ViewProduct(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}

		log.Error("failed to load product", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "product_load_failed",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(product))
}

// CreateItem handles POST /create-item: multipart form plus images.
func (r *Routers) CreateItem(c echo.Context) error {
	const op = "http.routers.CreateItem"

	log := r.log.With(slog.String("op", op))

	input, err := parseProductCreateForm(c)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, response.ValidationFailed(ve.Field, ve.Message))
		}
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	product, err := r.ProductService.CreateProduct(c.Request().Context(), *input)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, response.ValidationFailed(ve.Field, ve.Message))
		}

		log.Error("failed to create product", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "product_create_failed",
		})
	}

	log.Info("product created", slog.String("product_id", product.ID.String()))

	return c.JSON(http.StatusCreated, response.SuccessResponse(product))
}

// UpdateItem handles POST /cat/:id/update. Images are replaced only
// when the form carried new files.
func (r *Routers) UpdateItem(c echo.Context) error {
	const op = "http.routers.UpdateItem"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationFailed("id", "invalid product id"))
	}

	input, err := parseProductUpdateForm(c)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, response.ValidationFailed(ve.Field, ve.Message))
		}
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	product, err := r.ProductService.UpdateProduct(c.Request().Context(), id, *input)
	if err != nil {
		var ve *models.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, response.ValidationFailed(ve.Field, ve.Message))
		case errors.Is(err, storage.ErrNotFound):
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}

		log.Error("failed to update product", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "product_update_failed",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(product))
}

// DeleteItem handles GET /cat/:id/delete.
func (r *Routers) DeleteItem(c echo.Context) error {
	const op = "http.routers.DeleteItem"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationFailed("id", "invalid product id"))
	}

	if err := r.ProductService.DeleteProduct(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}

		log.Error("failed to delete product", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "product_delete_failed",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

func (r *Routers) Articles(c echo.Context) error {
	const op = "http.routers.Articles"

	log := r.log.With(slog.String("op", op))

	articles, err := r.ArticleService.Articles(c.Request().Context())
	if err != nil {
		log.Error("failed to list articles", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "article_list_failed",
		})
	}

	if articles == nil {
		articles = []models.Article{}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(articles))
}

func (r *Routers) ArticleDetail(c echo.Context) error {
	const op = "http.routers.ArticleDetail"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationFailed("id", "invalid article id"))
	}

	article, err := r.ArticleService.Article(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}

		log.Error("failed to load article", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "article_load_failed",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(article))
}

func (r *Routers) CreateArticle(c echo.Context) error {
	const op = "http.routers.CreateArticle"

	log := r.log.With(slog.String("op", op))

	var req dto.ArticleCreateRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid article request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	article, err := r.ArticleService.CreateArticle(c.Request().Context(), req)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, response.ValidationFailed(ve.Field, ve.Message))
		}

		log.Error("failed to create article", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "article_create_failed",
		})
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(article))
}

func (r *Routers) UpdateArticle(c echo.Context) error {
	const op = "http.routers.UpdateArticle"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationFailed("id", "invalid article id"))
	}

	var req dto.ArticleUpdateRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid article request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	article, err := r.ArticleService.UpdateArticle(c.Request().Context(), id, req)
	if err != nil {
		var ve *models.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, response.ValidationFailed(ve.Field, ve.Message))
		case errors.Is(err, storage.ErrNotFound):
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}

		log.Error("failed to update article", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "article_update_failed",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(article))
}

func (r *Routers) DeleteArticle(c echo.Context) error {
	const op = "http.routers.DeleteArticle"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationFailed("id", "invalid article id"))
	}

	if err := r.ArticleService.DeleteArticle(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}

		log.Error("failed to delete article", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "article_delete_failed",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

// parseProductCreateForm builds the typed draft once at the boundary;
// malformed numeric fields surface as a ValidationError naming the
// field instead of crashing or being ignored.
func parseProductCreateForm(c echo.Context) (*dto.ProductCreateInput, error) {
	price, err := strconv.Atoi(c.FormValue("price"))
	if err != nil {
		return nil, &models.ValidationError{Field: "price", Message: "must be an integer"}
	}

	releaseYear, err := strconv.Atoi(c.FormValue("release_year"))
	if err != nil {
		return nil, &models.ValidationError{Field: "release_year", Message: "must be an integer"}
	}

	return &dto.ProductCreateInput{
		Title:       c.FormValue("title"),
		Price:       price,
		Body:        c.FormValue("text"),
		Artist:      c.FormValue("artist"),
		Genre:       c.FormValue("genre"),
		ReleaseYear: releaseYear,
		Files:       formFiles(c),
	}, nil
}

func parseProductUpdateForm(c echo.Context) (*dto.ProductUpdateInput, error) {
	input := &dto.ProductUpdateInput{
		Title:  formString(c, "title"),
		Body:   formString(c, "text"),
		Artist: formString(c, "artist"),
		Genre:  formString(c, "genre"),
		Files:  formFiles(c),
	}

	if raw := formString(c, "price"); raw != nil {
		price, err := strconv.Atoi(*raw)
		if err != nil {
			return nil, &models.ValidationError{Field: "price", Message: "must be an integer"}
		}
		input.Price = &price
	}

	if raw := formString(c, "release_year"); raw != nil {
		year, err := strconv.Atoi(*raw)
		if err != nil {
			return nil, &models.ValidationError{Field: "release_year", Message: "must be an integer"}
		}
		input.ReleaseYear = &year
	}

	if raw := formString(c, "is_active"); raw != nil {
		active, err := strconv.ParseBool(*raw)
		if err != nil {
			return nil, &models.ValidationError{Field: "is_active", Message: "must be a boolean"}
		}
		input.IsActive = &active
	}

	return input, nil
}

// formString reports a field only when it was present in the form.
func formString(c echo.Context, name string) *string {
	params, err := c.FormParams()
	if err != nil {
		return nil
	}

	values, ok := params[name]
	if !ok || len(values) == 0 {
		return nil
	}

	return &values[0]
}

func formFiles(c echo.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}

	return form.File["images"]
}
