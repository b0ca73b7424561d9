package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"astroseva/internal/config"
	"astroseva/internal/middleware"
	"astroseva/internal/modules/admin"
	"astroseva/internal/modules/auth"
	"astroseva/internal/modules/booking"
	"astroseva/internal/modules/family"
	"astroseva/internal/modules/feed"
	"astroseva/internal/modules/identity"
	"astroseva/internal/modules/profile"
	"astroseva/internal/modules/summary"
	"astroseva/internal/pkg/jwt"
	"astroseva/internal/pkg/metrics"
	"astroseva/internal/pkg/mq"
	"astroseva/internal/repository"
)

// Options overrides the collaborators New would otherwise build from Config.
// Tests use them to avoid network dependencies.
type Options struct {
	RoleCache  identity.RoleCache
	Summarizer booking.Summarizer
	Registry   *prometheus.Registry
}

// Server is the assembled HTTP application.
type Server struct {
	Engine   *gin.Engine
	Hub      *feed.Hub
	Resolver *identity.Resolver
	JWT      *jwt.Service

	closers []func()
}

func New(cfg *config.Config, db *gorm.DB, opts Options) *Server {
	s := &Server{}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	familyRepo := repository.NewFamilyProfileRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Identity
	cache := opts.RoleCache
	if cache == nil {
		cache = s.roleCache(cfg)
	}
	s.JWT = jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	s.Resolver = identity.NewResolver(roleRepo, profileRepo, cache, cfg.RoleCacheTTL).WithMetrics(m)

	// Change fan-out
	s.Hub = feed.NewHub().WithMetrics(m)
	bookingRepo.AddSink(s.Hub)
	s.closers = append(s.closers, s.Hub.Close)
	if cfg.RabbitMQURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Printf("rabbitmq unavailable, booking events not published: %v", err)
		} else {
			bookingRepo.AddSink(pub)
			s.closers = append(s.closers, func() { _ = pub.Close() })
		}
	}

	summarizer := opts.Summarizer
	if summarizer == nil {
		summarizer = summary.NewClient(summary.Config{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Models:  cfg.GeminiModels,
			Timeout: cfg.GeminiTimeout,
		})
	}

	// Services
	authService := auth.NewService(userRepo, profileRepo, roleRepo, refreshRepo, s.JWT, s.Resolver,
		cfg.JWTAccessTTL, cfg.RefreshTTL, cfg.RefreshTokenPepper)
	bookingService := booking.NewService(bookingRepo, familyRepo, s.Resolver, summarizer).WithMetrics(m)
	profileService := profile.NewService(profileRepo, s.Resolver)
	familyService := family.NewService(familyRepo)
	adminService := admin.NewService(userRepo, roleRepo, profileRepo, s.Resolver)

	// Handlers
	authHandler := auth.NewHandler(authService)
	bookingHandler := booking.NewHandler(bookingService)
	profileHandler := profile.NewHandler(profileService)
	familyHandler := family.NewHandler(familyService)
	adminHandler := admin.NewHandler(adminService)
	wsHandler := feed.NewWSHandler(s.Hub, s.JWT, s.Resolver, cfg.CORSOrigins)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))
	wsHandler.RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(middleware.OptionalAuth(s.JWT, s.Resolver))
		{
			authHandler.RegisterPublicRoutes(public)
			bookingHandler.RegisterPublicRoutes(public)
		}

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(s.JWT, s.Resolver))
		{
			bookingHandler.RegisterRoutes(protected)
			profileHandler.RegisterRoutes(protected)
			familyHandler.RegisterRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				adminHandler.RegisterRoutes(adminGroup)
				bookingHandler.RegisterAdminRoutes(adminGroup)
			}
		}
	}

	s.Engine = r
	return s
}

func (s *Server) roleCache(cfg *config.Config) identity.RoleCache {
	if cfg.RedisAddr == "" {
		return identity.NewMemoryRoleCache()
	}
	client := identity.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if client == nil {
		log.Printf("redis unavailable at %s, using in-process role cache", cfg.RedisAddr)
		return identity.NewMemoryRoleCache()
	}
	s.closers = append(s.closers, func() { _ = client.Close() })
	return identity.NewRedisRoleCache(client)
}

// Close releases the feed, broker and cache connections.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
