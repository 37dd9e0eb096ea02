package router

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"openmart/internal/auth"
	"openmart/internal/config"
	"openmart/internal/handler"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Listing   *handler.ListingHandler
	Chat      *handler.ChatHandler
	Review    *handler.ReviewHandler
	Report    *handler.ReportHandler
	Dashboard *handler.DashboardHandler
	Seed      *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	users auth.UserLoader,
	tokens auth.TokenStoreInterface,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogRequestID: true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("request_id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if cfg.MediaDir != "" {
		e.Static("/media", cfg.MediaDir)
	}

	jwtConfig := echojwt.Config{
		SigningKey:    []byte(cfg.JWTSecret),
		NewClaimsFunc: auth.NewClaims,
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + auth.AccessTokenCookie,
		ContextKey:    auth.TokenContextKey,
	}

	// Anonymous requests pass through; a valid token attaches the user.
	optionalConfig := jwtConfig
	optionalConfig.ContinueOnIgnoredError = true
	optionalConfig.ErrorHandler = func(c echo.Context, err error) error {
		return nil
	}
	public := e.Group("", echojwt.WithConfig(optionalConfig), auth.LoadUser(users, tokens, false))

	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)
	public.POST("/refresh", h.Auth.Refresh)
	public.POST("/logout", h.Auth.Logout)
	public.GET("/verify-email/:token", h.Auth.VerifyEmail)

	public.GET("/", h.Listing.Home)
	public.GET("/categories", h.Listing.Categories)
	public.GET("/listings", h.Listing.Browse)
	public.GET("/listings/:id", h.Listing.Detail)
	public.GET("/users/:id", h.User.GetUser)
	public.GET("/seller/:id/reviews", h.Review.List)

	// Secured routes (require JWT authentication)
	secured := e.Group("", echojwt.WithConfig(jwtConfig), auth.LoadUser(users, tokens, true))

	secured.GET("/profile", h.User.GetProfile)
	secured.POST("/profile", h.User.UpdateProfile)

	secured.POST("/listings/create", h.Listing.Create)
	secured.POST("/listings/:id/edit", h.Listing.Update)
	secured.POST("/listings/:id/delete", h.Listing.Delete)
	secured.POST("/listings/:id/sold", h.Listing.MarkSold)
	secured.POST("/listings/:id/save", h.Listing.ToggleSave)
	secured.POST("/listings/:id/images", h.Listing.AddImage)
	secured.POST("/listings/:id/images/:image_id/primary", h.Listing.SetPrimaryImage)
	secured.GET("/saved", h.Listing.Saved)

	secured.POST("/seller/:id/review", h.Review.Create)

	secured.GET("/chat", h.Chat.List)
	secured.GET("/chat/:thread_id", h.Chat.Open)
	secured.POST("/chat/start/:listing_id", h.Chat.Start)
	secured.POST("/chat/:thread_id/send", h.Chat.Send)
	secured.GET("/chat/:thread_id/get", h.Chat.Poll)
	secured.POST("/chat/block/:user_id", h.Chat.Block)
	secured.POST("/chat/unblock/:user_id", h.Chat.Unblock)

	secured.POST("/reports/create", h.Report.Create)
	secured.POST("/reports/create/user/:id", h.Report.CreateForUser)
	secured.POST("/reports/create/listing/:id", h.Report.CreateForListing)

	secured.GET("/dashboard", h.Dashboard.User)

	// Staff routes
	staff := secured.Group("/dashboard", auth.RequireStaff())
	staff.GET("/admin", h.Dashboard.Admin)
	staff.GET("/manage-users", h.Dashboard.ManageUsers)
	staff.GET("/moderate-listings", h.Dashboard.ModerateListings)
	staff.POST("/approve-boost/:listing_id", h.Dashboard.ApproveBoost)
	staff.POST("/categories/seed", h.Seed.SeedCategories)
	staff.GET("/reports", h.Report.List)
	staff.POST("/reports/:id/investigate", h.Report.Investigate)
	staff.POST("/reports/:id/resolve", h.Report.Resolve)
	staff.POST("/reports/:id/dismiss", h.Report.Dismiss)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports field errors under their json names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
