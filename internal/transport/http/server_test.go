package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"
	"github.com/eternal-silence00/Black-Needle/internal/services/auth"
	"github.com/eternal-silence00/Black-Needle/internal/storage"
	httptransport "github.com/eternal-silence00/Black-Needle/internal/transport/http"
	"github.com/eternal-silence00/Black-Needle/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (models.User, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockAuthService) RegisterNewUser(ctx context.Context, username, password string) (uuid.UUID, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAuthService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateTokens(ctx context.Context, user models.User) (*models.TokenPair, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockTokenService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Browse(ctx context.Context, q dto.CatalogQuery) (*dto.CatalogPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CatalogPage), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, input dto.ProductCreateInput) (models.Product, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(models.Product), args.Error(1)
}

func (m *MockProductService) ViewProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input dto.ProductUpdateInput) (models.Product, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(models.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockArticleService struct {
	mock.Mock
}

func (m *MockArticleService) CreateArticle(ctx context.Context, req dto.ArticleCreateRequest) (models.Article, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Article), args.Error(1)
}

func (m *MockArticleService) Article(ctx context.Context, id uuid.UUID) (models.Article, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Article), args.Error(1)
}

func (m *MockArticleService) Articles(ctx context.Context) ([]models.Article, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Article), args.Error(1)
}

func (m *MockArticleService) UpdateArticle(ctx context.Context, id uuid.UUID, req dto.ArticleUpdateRequest) (models.Article, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(models.Article), args.Error(1)
}

func (m *MockArticleService) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

type mocks struct {
	auth    *MockAuthService
	token   *MockTokenService
	catalog *MockCatalogService
	product *MockProductService
	article *MockArticleService
}

func newTestEcho(t *testing.T) (*echo.Echo, *httptransport.Routers, *mocks) {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test"))))

	m := &mocks{
		auth:    new(MockAuthService),
		token:   new(MockTokenService),
		catalog: new(MockCatalogService),
		product: new(MockProductService),
		article: new(MockArticleService),
	}

	routers := httptransport.NewRouter(slog.Default(), m.auth, m.token, m.catalog, m.product, m.article)

	return e, routers, m
}

func TestRouters_Catalog(t *testing.T) {
	e, routers, m := newTestEcho(t)

	page := &dto.CatalogPage{
		Items: []models.Product{{ID: uuid.New(), Title: "Closer"}},
		Pagination: models.Pagination{
			Page: 1, TotalPages: 1, TotalCount: 1,
		},
	}

	m.catalog.On("Browse", mock.Anything, mock.MatchedBy(func(q dto.CatalogQuery) bool {
		return q.Sort == "price_asc" && len(q.Genres) == 1 && q.Genres[0] == "Post-Punk"
	})).Return(page, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/cat?sort=price_asc&genre[]=Post-Punk", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, routers.Catalog(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])

	m.catalog.AssertExpectations(t)
}

func TestRouters_Catalog_BadQuery(t *testing.T) {
	e, routers, m := newTestEcho(t)

	m.catalog.On("Browse", mock.Anything, mock.Anything).
		Return(nil, &models.ValidationError{Field: "sort", Message: "unknown sort order"}).Once()

	req := httptest.NewRequest(http.MethodGet, "/cat?sort=bogus", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, routers.Catalog(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "sort")
}

func TestRouters_ItemDetail(t *testing.T) {
	e, routers, m := newTestEcho(t)

	id := uuid.New()

	m.product.On("ViewProduct", mock.Anything, id).
		Return(models.Product{ID: id, Title: "Faith"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/cat/:id")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, routers.ItemDetail(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Faith")
}

func TestRouters_ItemDetail_Errors(t *testing.T) {
	t.Run("malformed id", func(t *testing.T) {
		e, routers, _ := newTestEcho(t)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/cat/:id")
		c.SetParamNames("id")
		c.SetParamValues("not-a-uuid")

		require.NoError(t, routers.ItemDetail(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		e, routers, m := newTestEcho(t)

		id := uuid.New()
		m.product.On("ViewProduct", mock.Anything, id).
			Return(models.Product{}, storage.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/cat/:id")
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, routers.ItemDetail(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestRouters_CreateItem(t *testing.T) {
	e, routers, m := newTestEcho(t)

	created := models.Product{ID: uuid.New(), Title: "Dare"}

	m.product.On("CreateProduct", mock.Anything, mock.MatchedBy(func(in dto.ProductCreateInput) bool {
		return in.Title == "Dare" && in.Price == 1500 && in.ReleaseYear == 1981
	})).Return(created, nil).Once()

	body, contentType := multipartBody(t, map[string]string{
		"title":        "Dare",
		"price":        "1500",
		"text":         "Debut of the second lineup",
		"artist":       "The Human League",
		"genre":        "Synth-Pop",
		"release_year": "1981",
	})

	req := httptest.NewRequest(http.MethodPost, "/create-item", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, routers.CreateItem(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	m.product.AssertExpectations(t)
}

func TestRouters_CreateItem_BadPrice(t *testing.T) {
	e, routers, m := newTestEcho(t)

	body, contentType := multipartBody(t, map[string]string{
		"title":        "Dare",
		"price":        "free",
		"text":         "b",
		"artist":       "a",
		"genre":        "g",
		"release_year": "1981",
	})

	req := httptest.NewRequest(http.MethodPost, "/create-item", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, routers.CreateItem(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price")

	m.product.AssertNotCalled(t, "CreateProduct")
}

func TestRouters_UpdateItem_OmitsAbsentFields(t *testing.T) {
	e, routers, m := newTestEcho(t)

	id := uuid.New()

	m.product.On("UpdateProduct", mock.Anything, id, mock.MatchedBy(func(in dto.ProductUpdateInput) bool {
		// Only the submitted field arrives as a patch
		return in.Title != nil && *in.Title == "Renamed" &&
			in.Price == nil && in.Body == nil && len(in.Files) == 0
	})).Return(models.Product{ID: id, Title: "Renamed"}, nil).Once()

	body, contentType := multipartBody(t, map[string]string{"title": "Renamed"})

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/cat/:id/update")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, routers.UpdateItem(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	m.product.AssertExpectations(t)
}

func TestRouters_DeleteItem(t *testing.T) {
	e, routers, m := newTestEcho(t)

	id := uuid.New()
	m.product.On("DeleteProduct", mock.Anything, id).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/cat/:id/delete")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, routers.DeleteItem(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouters_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		e, routers, m := newTestEcho(t)

		id := uuid.New()
		m.auth.On("RegisterNewUser", mock.Anything, "ian", "unknown-pleasures").
			Return(id, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"username":"ian","password":"unknown-pleasures"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, routers.Register(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), id.String())
	})

	t.Run("duplicate", func(t *testing.T) {
		e, routers, m := newTestEcho(t)

		m.auth.On("RegisterNewUser", mock.Anything, "ian", "pw123456").
			Return(uuid.Nil, auth.ErrUserExist).Once()

		req := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"username":"ian","password":"pw123456"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, routers.Register(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRouters_Login(t *testing.T) {
	t.Run("success sets session and returns tokens", func(t *testing.T) {
		e, routers, m := newTestEcho(t)

		user := models.User{ID: uuid.New(), Username: "robert"}

		m.auth.On("Login", mock.Anything, "robert", "correct-horse").
			Return(user, nil).Once()
		m.token.On("GenerateTokens", mock.Anything, user).
			Return(&models.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"username":"robert","password":"correct-horse"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		// session.Get needs the middleware's store in context
		handler := session.Middleware(sessions.NewCookieStore([]byte("test")))(routers.Login)
		require.NoError(t, handler(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "acc")
		assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
	})

	t.Run("bad credentials", func(t *testing.T) {
		e, routers, m := newTestEcho(t)

		m.auth.On("Login", mock.Anything, "robert", "wrong-pass").
			Return(models.User{}, auth.ErrInvalidCredentials).Once()

		req := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"username":"robert","password":"wrong-pass"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, routers.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRouters_Refresh_Invalid(t *testing.T) {
	e, routers, m := newTestEcho(t)

	m.token.On("RefreshTokens", mock.Anything, "stale").
		Return(nil, errors.New("invalid token")).Once()

	req := httptest.NewRequest(http.MethodPost, "/refresh",
		strings.NewReader(`{"refresh_token":"stale"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, routers.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouters_Articles(t *testing.T) {
	e, routers, m := newTestEcho(t)

	m.article.On("Articles", mock.Anything).
		Return([]models.Article{{ID: uuid.New(), Title: "Liner Notes"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, routers.Articles(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Liner Notes")
}

func TestRouters_CreateArticle_InvalidPayload(t *testing.T) {
	e, routers, m := newTestEcho(t)

	// Title is required, so validation fails before the service runs
	req := httptest.NewRequest(http.MethodPost, "/create-post",
		strings.NewReader(`{"intro":"i","body":"b"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, routers.CreateArticle(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	m.article.AssertNotCalled(t, "CreateArticle")
}
