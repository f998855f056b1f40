package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	appmiddleware "github.com/eternal-silence00/Black-Needle/internal/middleware"
	httprouters "github.com/eternal-silence00/Black-Needle/internal/transport/http"
	"github.com/eternal-silence00/Black-Needle/internal/transport/http/dto/response"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	log       *slog.Logger
	e         *echo.Echo
	routers   *httprouters.Routers
	host      string
	port      string
	uploadDir string
}

func New(log *slog.Logger, sessionSecret, host, port, uploadDir string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(sessionSecret))))

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	return &Server{
		log:       log,
		e:         e,
		routers:   routers,
		host:      host,
		port:      port,
		uploadDir: uploadDir,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// adminOnlyMiddleware re-checks the admin flag on every request, so a
// demoted account loses access without waiting for its session to die.
// Every rejection looks the same from outside: an anonymous visitor, a
// broken session and a logged-in non-admin all get the identical
// Forbidden response.
func (s *Server) adminOnlyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get("session", c)
		if err != nil {
			return c.JSON(http.StatusForbidden, response.ErrAdminRequired)
		}

		userID, ok := sess.Values["user_id"].(string)
		if !ok || userID == "" {
			return c.JSON(http.StatusForbidden, response.ErrAdminRequired)
		}

		parsedUUID, err := uuid.Parse(userID)
		if err != nil {
			return c.JSON(http.StatusForbidden, response.ErrAdminRequired)
		}

		isAdmin, err := s.routers.AuthService.IsAdmin(c.Request().Context(), parsedUUID)
		if err != nil || !isAdmin {
			return c.JSON(http.StatusForbidden, response.ErrAdminRequired)
		}

		return next(c)
	}
}

func (s *Server) BuildRouters() {
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.e.Static("/images", s.uploadDir)

	s.e.POST("/register", s.routers.Register)
	s.e.POST("/login", s.routers.Login)
	s.e.POST("/logout", s.routers.Logout)
	s.e.POST("/refresh", s.routers.Refresh)

	s.e.GET("/cat", s.routers.Catalog)
	s.e.GET("/cat/:id", s.routers.ItemDetail)
	s.e.POST("/create-item", s.routers.CreateItem, s.adminOnlyMiddleware)
	s.e.POST("/cat/:id/update", s.routers.UpdateItem, s.adminOnlyMiddleware)
	s.e.GET("/cat/:id/delete", s.routers.DeleteItem, s.adminOnlyMiddleware)

	s.e.GET("/posts", s.routers.Articles)
	s.e.GET("/posts/:id", s.routers.ArticleDetail)
	s.e.POST("/create-article", s.routers.CreateArticle, s.adminOnlyMiddleware)
	s.e.POST("/posts/:id/update", s.routers.UpdateArticle, s.adminOnlyMiddleware)
	s.e.GET("/posts/:id/delete", s.routers.DeleteArticle, s.adminOnlyMiddleware)
}
