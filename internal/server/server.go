// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
	"chirp/internal/service"
	"chirp/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	jwtIssuer   = "chirp-api"
	jwtAudience = "chirp-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
	topicRepo   repository.TopicRepository
	hashtagRepo repository.HashtagRepository
	notifRepo   repository.NotificationRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub
	images   storage.ImageStorage

	postService         *service.PostService
	userService         *service.UserService
	followService       *service.FollowService
	topicService        *service.TopicService
	notificationService *service.NotificationService
	autocompleteService *service.AutocompleteService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	var images storage.ImageStorage
	if cfg.CloudinaryURL != "" {
		images, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("cloudinary setup failed: %w", err)
		}
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), images)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images storage.ImageStorage) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: fiberprometheus.New("chirp-api"),
		images:         images,
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		topicRepo:      repository.NewTopicRepository(db),
		hashtagRepo:    repository.NewHashtagRepository(db),
		notifRepo:      repository.NewNotificationRepository(db),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
	}

	server.notificationService = service.NewNotificationService(server.notifRepo, server.userRepo, server.notifier)
	server.postService = service.NewPostService(
		server.postRepo, server.topicRepo, server.hashtagRepo,
		server.commentRepo, server.followRepo, server.notificationService,
	)
	server.userService = service.NewUserService(server.userRepo, server.followRepo, images)
	server.followService = service.NewFollowService(server.followRepo, server.userRepo, server.notificationService)
	server.topicService = service.NewTopicService(server.topicRepo, server.postRepo)
	server.autocompleteService = service.NewAutocompleteService(
		server.topicRepo, server.postRepo, server.hashtagRepo, server.userRepo,
	)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting per IP.
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)

	// Public browse routes (viewer enriched when a token is present)
	api.Get("/explore", s.Explore)
	api.Get("/search", s.SimpleSearch)
	api.Get("/search/advanced", s.AdvancedSearch)

	autocomplete := api.Group("/autocomplete")
	autocomplete.Get("/topics", s.AutocompleteTopics)
	autocomplete.Get("/hashtags", s.AutocompleteHashtags)
	autocomplete.Get("/mentions", s.AutocompleteMentions)

	api.Get("/topics", s.GetTopics)
	api.Get("/topics/:slug", s.GetTopicFeed)
	api.Get("/tags/:tag", s.GetTagFeed)

	// Public post reads
	api.Get("/posts/:id/comments", s.GetComments)
	api.Get("/posts/:id", s.GetPost)

	// Public profile reads. The explicit /users/me route comes before the
	// generic one so "me" never resolves as a username.
	api.Get("/users/:username/posts", s.GetUserPosts)
	api.Get("/users/:username/followers", s.GetFollowers)
	api.Get("/users/:username/following", s.GetFollowing)
	api.Get("/users/me", s.AuthRequired(), s.GetMyProfile)
	api.Get("/users/:username", s.GetUserProfile)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	protected.Get("/feed", s.HomeTimeline)
	protected.Get("/explore/users", s.SuggestedUsers)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 15, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/retweet", s.Retweet)
	posts.Post("/:id/quote", s.Quote)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Delete("/:id", s.DeletePost)

	protected.Post("/topics", s.CreateTopic)

	users := protected.Group("/users")
	users.Put("/me", s.UpdateMyProfile)
	users.Post("/me/avatar", s.UploadAvatar)
	users.Post("/:username/follow", s.ToggleFollow)

	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)

	protected.Post("/theme", s.ToggleTheme)

	// WebSocket ticket issuance + stream
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/", s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
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

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws") && c.Method() == fiber.MethodGet

		// Short-lived single-use tickets authenticate websocket upgrades,
		// since browsers cannot set headers on them.
		ticket := c.Query("ticket")
		if ticket != "" && s.redis != nil {
			key := cache.TicketKey(ticket)
			userIDStr, err := s.redis.Get(c.Context(), key).Result()
			if err == nil {
				userID, parseErr := strconv.ParseUint(userIDStr, 10, 32)
				if parseErr == nil {
					s.redis.Del(c.Context(), key)
					setAuthenticatedUser(c, uint(userID))
					return c.Next()
				}
			}
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, ok := s.parseAccessToken(c.Context(), tokenString)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		setAuthenticatedUser(c, userID)
		return c.Next()
	}
}

// parseAccessToken validates a JWT and returns the subject user id. It also
// rejects tokens whose jti has been blacklisted by logout.
func (s *Server) parseAccessToken(ctx context.Context, tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != jwtIssuer {
		return 0, false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != jwtAudience {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}

	if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
		blacklisted, err := s.redis.Exists(ctx, cache.BlacklistKey(jti)).Result()
		if err == nil && blacklisted > 0 {
			return 0, false
		}
	}

	return uint(userID), true
}

// setAuthenticatedUser stores the user id both in Locals for handlers and in
// the request context for logging and downstream services.
func setAuthenticatedUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
	c.SetUserContext(ctx)
}

// optionalUserID attempts to extract userID from the Authorization header but
// does not enforce it. Public feeds use it to compute the liked flag.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}
	userID, ok := s.parseAccessToken(c.Context(), parts[1])
	if !ok {
		return 0, false
	}
	return userID, true
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Chirp API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fiberErr, ok := err.(*fiber.Error); ok {
				return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
			}
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.notifier != nil && s.hub != nil {
		if err := s.notifier.StartSubscriber(s.shutdownCtx, s.hub); err != nil {
			log.Printf("failed to start notification subscriber: %v", err)
		}
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
