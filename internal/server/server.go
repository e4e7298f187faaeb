// Package server contains the HTTP handlers and route table of the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "spotboard/docs" // swagger docs
	"spotboard/internal/auth"
	"spotboard/internal/authz"
	"spotboard/internal/cache"
	"spotboard/internal/config"
	"spotboard/internal/database"
	"spotboard/internal/media"
	"spotboard/internal/middleware"
	"spotboard/internal/models"
	"spotboard/internal/repository"
	"spotboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	logger         *slog.Logger
	promMiddleware *fiberprometheus.FiberPrometheus

	memberRepo repository.MemberRepository
	media      *media.LocalStore
	tokens     *auth.Tokens
	denyList   *auth.DenyList
	enforcer   *authz.Enforcer

	memberService   *service.MemberService
	locationService *service.LocationService
	posterService   *service.PosterService
	commentService  *service.CommentService
}

// NewServer connects to the database, Redis and the media directory named
// in cfg and builds the server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient, err := cache.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		middleware.Logger.Warn("redis unavailable, logout deny-list and rate limits are disabled",
			slog.String("error", err.Error()))
		redisClient = nil
	}

	store, err := NewMediaStore(afero.NewOsFs(), cfg)
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient, store)
}

// NewMediaStore opens the media directory configured in cfg on fsys.
func NewMediaStore(fsys afero.Fs, cfg *config.Config) (*media.LocalStore, error) {
	store, err := media.NewLocalStore(fsys, media.Config{
		Dir:               cfg.MediaDir,
		PublicURL:         cfg.MediaPublicURL,
		MaxFileSize:       cfg.MediaMaxFileSize(),
		AllowedExtensions: cfg.AllowedExtensions(),
	})
	if err != nil {
		return nil, fmt.Errorf("media store init failed: %w", err)
	}
	return store, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
// A nil redisClient disables the logout deny-list.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store *media.LocalStore) (*Server, error) {
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, err
	}

	logger := middleware.Logger
	memberRepo := repository.NewMemberRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	posterRepo := repository.NewPosterRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	cascade := service.NewCascade(db, store, logger)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		logger:         logger,
		promMiddleware: middleware.InitMetrics("spotboard-api"),
		memberRepo:     memberRepo,
		media:          store,
		tokens:         auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL()),
		denyList:       auth.NewDenyList(redisClient, logger),
		enforcer:       enforcer,
	}

	server.memberService = service.NewMemberService(memberRepo, posterRepo, cascade, store, logger)
	server.locationService = service.NewLocationService(locationRepo, posterRepo, likeRepo, cascade, store, logger)
	server.posterService = service.NewPosterService(posterRepo, commentRepo, likeRepo, cascade, store, logger)
	server.commentService = service.NewCommentService(commentRepo, likeRepo, cascade)

	return server, nil
}

// App builds the Fiber application with the full middleware chain and
// route table.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Spotboard API",
		ErrorHandler: s.errorHandler,
		BodyLimit:    s.bodyLimit(),
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// bodyLimit leaves room for a full set of images plus form fields.
func (s *Server) bodyLimit() int {
	limit := s.config.MediaMaxFileSize()*maxImagesPerUpload + 1<<20
	if limit <= 0 {
		return fiber.DefaultBodyLimit
	}
	return int(limit)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span before the context middleware so the trace id reaches logs
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.NewRateLimitedError()
		},
	}))
}

// SetupRoutes configures all routes for the application. Every /api route
// is authenticated when a token is present and checked against the policy
// table by guard; the table decides which routes anonymous callers reach.
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Stored files, when the media store resolves to a local path
	if strings.HasPrefix(s.config.MediaPublicURL, "/") {
		app.Get(strings.TrimRight(s.config.MediaPublicURL, "/")+"/:name", s.ServeMedia)
	}

	api := app.Group("/api")

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Use(middleware.Authenticate(s.tokens, s.denyList, s.memberRepo))
	guard := middleware.Authorize(s.enforcer)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), guard, s.Signup)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), guard, s.Login)
	authGroup.Post("/logout", guard, s.Logout)

	// Image redirect
	api.Get("/images/:name", guard, s.GetImage)

	// Member routes. /me is registered ahead of /:id.
	members := api.Group("/members")
	members.Get("/me", guard, s.GetMe)
	members.Put("/me", guard, s.UpdateMe)
	members.Delete("/me", guard, s.DeleteMe)
	members.Put("/me/image", guard, s.ReplaceMyImage)
	members.Delete("/me/image", guard, s.DeleteMyImage)
	members.Get("/:id", guard, s.GetMember)
	members.Get("/:id/posters", guard, s.GetMemberPosters)

	// Location routes
	locations := api.Group("/locations")
	locations.Get("/", guard, s.ListLocations)
	locations.Post("/", guard, s.CreateLocation)
	locations.Get("/best", guard, s.BestLocations)
	locations.Get("/:id", guard, s.GetLocation)
	locations.Put("/:id", guard, s.UpdateLocation)
	locations.Delete("/:id", guard, s.DeleteLocation)
	locations.Patch("/:id/approve", guard, s.ApproveLocation)
	locations.Delete("/:id/images/:imageId", guard, s.DeleteLocationImage)
	locations.Post("/:id/likes", guard, s.LikeLocation)
	locations.Delete("/:id/likes", guard, s.UnlikeLocation)
	locations.Get("/:id/posters", guard, s.GetLocationPosters)
	locations.Post("/:id/posters", middleware.RateLimit(s.redis, 10, time.Minute, "posters"), guard, s.CreatePoster)

	// Poster routes
	posters := api.Group("/posters")
	posters.Get("/best", guard, s.BestPosters)
	posters.Get("/:id", guard, s.GetPoster)
	posters.Put("/:id", guard, s.UpdatePoster)
	posters.Delete("/:id", guard, s.DeletePoster)
	posters.Delete("/:id/images/:imageId", guard, s.DeletePosterImage)
	posters.Post("/:id/likes", guard, s.LikePoster)
	posters.Delete("/:id/likes", guard, s.UnlikePoster)
	posters.Get("/:id/comments", guard, s.GetPosterComments)
	posters.Post("/:id/comments", middleware.RateLimit(s.redis, 20, time.Minute, "comments"), guard, s.CreateComment)

	// Comment routes
	comments := api.Group("/comments")
	comments.Put("/:id", guard, s.UpdateComment)
	comments.Delete("/:id", guard, s.DeleteComment)
	comments.Post("/:id/likes", guard, s.LikeComment)
	comments.Delete("/:id/likes", guard, s.UnlikeComment)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional outside
// production and reported as disabled when absent.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and blocks serving on the configured port.
func (s *Server) Start() error {
	s.app = s.App()
	s.logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			s.logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			s.logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			s.logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
