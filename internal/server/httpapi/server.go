// Package httpapi exposes the account service over HTTP/JSON using gin.
package httpapi

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
	"github.com/vincentino1/account-service/internal/server/models"
	"github.com/vincentino1/account-service/internal/server/services"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type AccountService interface {
	Register(ctx context.Context, in services.NewAccount) (*models.Account, error)
	Get(ctx context.Context, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.Account, error)
}

type SessionService interface {
	Login(ctx context.Context, email, password string) (*services.AccessToken, error)
	Logout(ctx context.Context, token string) error
	Authorize(ctx context.Context, header string) (*auth.Session, error)
}

type PasswordRotator interface {
	RotatePassword(ctx context.Context, accountID, oldPassword, newPassword string) error
}

// Options tune the router.
//   - AllowedOrigins: CORS allow-list; empty allows any origin.
//   - Development: gin debug mode.
type Options struct {
	AllowedOrigins []string
	Development    bool
}

// Server holds the HTTP handlers.
type Server struct {
	accounts  AccountService
	sessions  SessionService
	passwords PasswordRotator
	logger    logging.Logger
}

func NewServer(accounts AccountService, sessions SessionService, passwords PasswordRotator, logger logging.Logger) *Server {
	registerBindingValidators()
	return &Server{accounts: accounts, sessions: sessions, passwords: passwords, logger: logger}
}

// Router builds the gin engine with middleware and all routes.
func (s *Server) Router(opts Options) *gin.Engine {
	if opts.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(s.recover))
	r.Use(AccessLog(s.logger))
	r.Use(SecurityHeaders())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	r.Use(LimitBody(maxBodyBytes))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "Not Found"})
	})

	r.GET("/health", s.health)

	accounts := r.Group("/accounts")
	accounts.POST("", s.createAccount)
	accounts.GET("/:id", s.getAccount)

	authGroup := r.Group("/auth")
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.logout)

	profile := r.Group("/profile", RequireAuth(s.sessions, s.logger))
	profile.GET("/me", s.getMe)
	profile.PATCH("/me", s.updateMe)
	profile.POST("/change-password", s.changePassword)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	cfg.AllowAllOrigins = len(origins) == 0 || slices.Contains(origins, "*")
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (s *Server) recover(c *gin.Context, p any) {
	s.logger.Error(c.Request.Context(), "panic in handler", "panic", p, "path", c.Request.URL.Path)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}
