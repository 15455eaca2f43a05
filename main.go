package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rdhub/rdhub/backend/go-services/handlers"
	"github.com/rdhub/rdhub/backend/go-services/internal/config"
	"github.com/rdhub/rdhub/backend/go-services/internal/database"
	"github.com/rdhub/rdhub/backend/go-services/internal/oidc"
	"github.com/rdhub/rdhub/backend/go-services/internal/registrar"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource/repository"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource/service"
	"github.com/rdhub/rdhub/backend/go-services/internal/sessions"
	"github.com/rdhub/rdhub/backend/go-services/internal/storage"
	"github.com/rdhub/rdhub/backend/go-services/internal/users"
	"github.com/rdhub/rdhub/backend/go-services/pkg/logger"
	"github.com/rdhub/rdhub/backend/go-services/pkg/metrics"
	"github.com/rdhub/rdhub/backend/go-services/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	// logging level controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v registrar=%v",
		cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Registrar.URL != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	r.Use(gin.Logger(), gin.Recovery())

	// shared runtime vars used by handlers/readiness
	var verifier middleware.Verifier
	var userSvc *users.Service
	var sessionsSvc *sessions.Service
	var resourceSvc *service.Service

	// Connect to Redis early so the rate limiter and token blacklist can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := redisClient.Ping(context.Background()).Err(); err == nil {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		}
	}

	// Optional global rate limiter (per-curator when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["resources"] = resourceSvc != nil
		if resourceSvc == nil {
			ready = false
		}
		deps["sessions"] = sessionsSvc != nil
		deps["users"] = userSvc != nil

		// OIDC readiness: a configured Keycloak is expected to yield a verifier
		if cfg.Keycloak.URL != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := http.StatusOK
		name := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			name = "not_ready"
		}
		c.JSON(status, gin.H{"status": name, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Keycloak OIDC verifier
	ctx := context.Background()
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" && cfg.Keycloak.Realm != "" {
		issuer := strings.TrimRight(cfg.Keycloak.URL, "/") + "/realms/" + cfg.Keycloak.Realm
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	// Insecure verifier for integration tests: parse claims without signature verification
	if verifier == nil && strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}

	// Prefer Redis-based sessions when available (fast, self-expiring)
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "rdhub:session:"))
		logger.Infof("Using Redis for session storage")
	}

	// MongoDB-backed services: curator accounts, resources and (fallback) sessions
	if cfg.MongoDB.URI != "" {
		client, errConn := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, func(attempt int, err error) {
			logger.Warnf("attempt %d: failed to connect to MongoDB: %v", attempt, err)
		})
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB: %v", errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")))
			if sessionsSvc == nil {
				sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
			}
			resourceSvc = newResourceService(cfg, repository.NewMongoRepo(db.Collection("resources")))
		}
	}
	if resourceSvc == nil {
		// no database: run on the in-memory store (dev/demo)
		logger.Warn("MongoDB unavailable; using in-memory resource store")
		resourceSvc = newResourceService(cfg, repository.NewMemoryRepo())
	}

	// auth endpoints need both user and session services
	if userSvc != nil && sessionsSvc != nil {
		handlers.NewAuthHandler(cfg, userSvc, sessionsSvc).Register(r.Group("/"))
	} else {
		logger.Warnf("auth handlers not registered because user/sessions services are unavailable")
	}

	var auth gin.HandlerFunc
	if verifier != nil {
		auth = middleware.AuthMiddleware(verifier)
	}
	handlers.NewResourceHandler(resourceSvc).Register(r, auth)
	handlers.RegisterSwagger(r)

	api := r.Group("/api/v1")
	if verifier != nil {
		api.GET("/me", middleware.AuthMiddleware(verifier), func(c *gin.Context) {
			claims, _ := c.Get("claims")
			if userSvc != nil {
				if cm, ok := claims.(map[string]interface{}); ok {
					u, err := userSvc.UpsertFromClaims(c.Request.Context(), cm)
					if err == nil && u != nil {
						c.JSON(http.StatusOK, gin.H{"user": u})
						return
					}
				}
			}
			c.JSON(http.StatusOK, gin.H{"claims": claims})
		})
	} else {
		api.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "OIDC not configured"})
		})
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting rdhub service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

// newResourceService assembles the curation service with the optional
// registrar and file storage integrations.
func newResourceService(cfg *config.Config, repo service.Repository) *service.Service {
	var reg service.Registrar
	if cfg.Registrar.URL != "" {
		reg = registrar.New(cfg.Registrar.URL, cfg.Registrar.RepositoryID, cfg.Registrar.Password)
		logger.Infof("DOI registrar configured: %s", cfg.Registrar.URL)
	}
	var files service.FileStore
	if os.Getenv("MINIO_ENDPOINT") != "" {
		st, err := storage.NewMinIOStorage(storage.LoadMinIOConfig())
		if err != nil {
			logger.Warnf("minio storage unavailable: %v", err)
		} else {
			files = st
		}
	}
	return service.New(repo, cfg.DOI.MaxSuggestionProbes, cfg.DOI.Prefix, reg, files, strings.TrimRight(cfg.Registrar.LandingBaseURL, "/"))
}
