package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/emilythestrangee/discuss/backend/internal/config"
	"github.com/emilythestrangee/discuss/backend/internal/database"
	"github.com/emilythestrangee/discuss/backend/internal/discussion"
	"github.com/emilythestrangee/discuss/backend/internal/handlers"
	"github.com/emilythestrangee/discuss/backend/internal/middleware"
	"github.com/emilythestrangee/discuss/backend/internal/storage"
)

type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	db      database.Service
	handler *handlers.Handler
	issuer  *middleware.TokenIssuer
	limiter *middleware.RateLimiter // nil when REDIS_URL is unset
	redis   *redis.Client
}

// New connects to the database and the optional object store and redis, and
// wires the services behind the HTTP handlers.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	db, err := database.New(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		log:    log,
		db:     db,
		issuer: middleware.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
	}

	var uploader handlers.FileUploader
	if cfg.Storage.Enabled() {
		store, err := storage.NewMinIOStore(ctx, cfg.Storage, log)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		uploader = storage.NewUploader(store, log)
	} else {
		log.Warn("object store not configured, uploads disabled")
	}

	if cfg.RateLimit.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		s.redis = redis.NewClient(opts)
		if err := s.redis.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, rate limits fail open", "error", err)
		}
		s.limiter = middleware.NewRateLimiter(s.redis, log)
	}

	gdb := db.GetDB()
	teams := discussion.NewTeams(gdb)
	ledger := discussion.NewLedger(gdb, teams, log)
	s.handler = handlers.NewHandler(handlers.Deps{
		DB:       gdb,
		Issuer:   s.issuer,
		Content:  discussion.NewContent(gdb, teams, ledger, log),
		Ledger:   ledger,
		Teams:    teams,
		Uploader: uploader,
		Log:      log,
	})
	return s, nil
}

// HTTPServer returns the configured http.Server for the route table.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Server.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

func (s *Server) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

// limit applies the redis rate limiter when one is configured.
func (s *Server) limit(scope string, n int) gin.HandlerFunc {
	if s.limiter == nil || n <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return s.limiter.Limit(scope, n, s.cfg.RateLimit.Window)
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(s.log))

	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAnyOrigin(origins),
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", func(c *gin.Context) {
		stats := s.db.Health(c.Request.Context())
		if stats["status"] != "up" {
			c.JSON(http.StatusServiceUnavailable, stats)
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	h := s.handler
	votes := s.limit("votes", s.cfg.RateLimit.Votes)

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.issuer))
		{
			protected.GET("/me", h.Auth.GetMe)
			protected.GET("/users/:id", h.User.GetUserProfile)
			protected.PUT("/users/:id", h.User.UpdateUserProfile)

			// Team routes
			protected.GET("/teams", h.Team.GetMyTeams)
			protected.POST("/teams", h.Team.CreateTeam)
			protected.GET("/teams/:id/members", h.Team.GetMembers)
			protected.POST("/teams/:id/members", h.Team.AddMember)
			protected.GET("/teams/:id/posts", h.Post.GetTeamPosts)
			protected.POST("/teams/:id/posts", h.Post.CreatePost)

			// Post routes
			protected.GET("/posts", h.Post.GetPosts)
			protected.GET("/posts/:id", h.Post.GetPost)
			protected.GET("/posts/:id/edit", h.Post.GetPostForEdit)
			protected.PUT("/posts/:id", h.Post.UpdatePost)
			protected.GET("/posts/:id/votes", h.Vote.PostTally)
			protected.POST("/posts/:id/vote", votes, h.Vote.VotePost)
			protected.POST("/posts/:id/upvote", votes, h.Vote.UpvotePost)
			protected.POST("/posts/:id/downvote", votes, h.Vote.DownvotePost)

			// Comment routes
			protected.POST("/posts/:id/comments", h.Comment.CreateComment)
			protected.POST("/comments/:commentId/replies", h.Comment.ReplyToComment)
			protected.GET("/comments/:commentId/edit", h.Comment.GetCommentForEdit)
			protected.PUT("/comments/:commentId", h.Comment.UpdateComment)
			protected.GET("/comments/:commentId/votes", h.Vote.CommentTally)
			protected.POST("/comments/:commentId/upvote", votes, h.Vote.UpvoteComment)
			protected.POST("/comments/:commentId/downvote", votes, h.Vote.DownvoteComment)

			protected.POST("/uploads", s.limit("uploads", s.cfg.RateLimit.Uploads), h.Upload.Upload)
		}
	}

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
