package router

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"signage/internal/auth"
	"signage/internal/config"
	"signage/internal/errors"
	"signage/internal/handler"
	"signage/internal/metrics"
	"signage/internal/service"
)

const wsPrefix = "/ws/"

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Slide        *handler.SlideHandler
	FixedContent *handler.FixedContentHandler
	Attachment   *handler.AttachmentHandler
	Display      *handler.DisplayHandler
	Health       *handler.HealthHandler
	Seed         *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authService service.AuthService,
	h Handlers,
) {
	e.JSONSerializer = JSONSerializer{}
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(middleware.BodyLimit(bodyLimit(cfg.MaxUploadBytes)))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Skipper: func(c echo.Context) bool { return strings.HasPrefix(c.Request().URL.Path, wsPrefix) },
		Timeout: cfg.RequestTimeout,
	}))
	e.Use(metrics.Middleware())

	authn := []echo.MiddlewareFunc{optionalJWT(jwtService), resolveIdentity(authService)}

	e.GET("/healthz", h.Health.Healthz)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	e.GET(wsPrefix+"display", h.Display.Watch, authn...)

	api := e.Group("/api", authn...)

	// Auth
	api.POST("/auth/login", h.Auth.Login, loginLimiter(cfg))
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/auth/me", h.Auth.Me, RequireAuth)

	// Display
	api.GET("/display", h.Display.Snapshot)
	api.GET("/display/version", h.Display.Version)

	// Slides
	api.GET("/slides", h.Slide.ListSlides)
	api.GET("/slides/admin", h.Slide.ListAdminSlides, RequireAdmin)
	api.GET("/slides/archived", h.Slide.ListArchivedSlides, RequireAdmin)
	api.GET("/slides/:id", h.Slide.GetSlide, RequireAuth)
	api.POST("/slides", h.Slide.CreateSlide, RequireAdmin)
	api.POST("/slides/reorder", h.Slide.ReorderSlides, RequireAdmin)
	api.PUT("/slides/:id", h.Slide.UpdateSlide, RequireAdmin)
	api.DELETE("/slides/:id", h.Slide.DeleteSlide, RequireAdmin)

	// Attachments
	api.GET("/slides/:id/attachments", h.Attachment.ListAttachments)
	api.POST("/slides/:id/attachments", h.Attachment.UploadAttachment, RequireAdmin)
	api.DELETE("/slides/attachments/:id", h.Attachment.DeleteAttachment, RequireAdmin)

	// Fixed content
	api.GET("/fixed-content", h.FixedContent.ListFixedContent)
	api.GET("/fixed-content/admin", h.FixedContent.ListAdminFixedContent, RequireAdmin)
	api.GET("/fixed-content/:id", h.FixedContent.GetFixedContent, RequireAuth)
	api.POST("/fixed-content", h.FixedContent.CreateFixedContent, RequireAdmin)
	api.POST("/fixed-content/reorder", h.FixedContent.ReorderFixedContent, RequireAdmin)
	api.PUT("/fixed-content/:id", h.FixedContent.UpdateFixedContent, RequireAdmin)
	api.DELETE("/fixed-content/:id", h.FixedContent.DeleteFixedContent, RequireAdmin)

	// Seed
	api.POST("/seed", h.Seed.SeedDefaults, RequireAdmin)

	// Users
	users := api.Group("/users", RequireAdmin)
	users.GET("", h.User.ListUsers)
	users.POST("", h.User.CreateUser)
	users.GET("/:id", h.User.GetUser)
	users.PUT("/:id", h.User.UpdateUser)
	users.DELETE("/:id", h.User.DeleteUser)
}

// bodyLimit leaves room for multipart framing around the largest upload.
func bodyLimit(maxUpload int64) string {
	const overhead = 1 << 20
	return fmt.Sprintf("%dK", (maxUpload+overhead)/1024)
}

// optionalJWT validates a bearer token when one is sent. Requests without
// credentials pass through anonymously; a bad token is rejected.
func optionalJWT(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,query:access_token",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateAccessToken(token)
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			if !hasCredentials(c) {
				return nil
			}
			return errorResponse(errors.ErrUnauthorized)
		},
	})
}

func hasCredentials(c echo.Context) bool {
	return c.Request().Header.Get(echo.HeaderAuthorization) != "" || c.QueryParam("access_token") != ""
}

// resolveIdentity turns validated claims into the caller's current identity.
// Revoked tokens and deleted users are rejected here.
func resolveIdentity(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*auth.Claims)
			if !ok || claims == nil {
				return next(c)
			}
			id, err := authService.Authenticate(c.Request().Context(), claims)
			if err != nil {
				return errorResponse(err)
			}
			auth.SetClaims(c, claims)
			auth.SetIdentity(c, id)
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous callers.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := auth.IdentityFrom(c); !ok {
			return errorResponse(errors.ErrUnauthorized)
		}
		return next(c)
	}
}

// RequireAdmin rejects anonymous callers and non-admins.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := auth.IdentityFrom(c)
		if !ok {
			return errorResponse(errors.ErrUnauthorized)
		}
		if !id.IsAdmin() {
			return errorResponse(errors.ErrForbidden)
		}
		return next(c)
	}
}

func loginLimiter(cfg *config.Config) echo.MiddlewareFunc {
	limit := cfg.LoginRateLimit
	if limit <= 0 {
		limit = 10
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Every(cfg.LoginRateInterval / time.Duration(limit)),
		Burst:     limit,
		ExpiresIn: cfg.LoginRateInterval,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many login attempts, try again later",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

func errorResponse(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
