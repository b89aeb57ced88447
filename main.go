package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/skillbridge/skillbridge/backend/api/handlers"
	"github.com/skillbridge/skillbridge/backend/api/internal/certificates"
	"github.com/skillbridge/skillbridge/backend/api/internal/collaboration"
	"github.com/skillbridge/skillbridge/backend/api/internal/config"
	"github.com/skillbridge/skillbridge/backend/api/internal/database"
	"github.com/skillbridge/skillbridge/backend/api/internal/mentorship"
	"github.com/skillbridge/skillbridge/backend/api/internal/profiles"
	"github.com/skillbridge/skillbridge/backend/api/internal/sessions"
	"github.com/skillbridge/skillbridge/backend/api/internal/skills"
	"github.com/skillbridge/skillbridge/backend/api/internal/storage"
	"github.com/skillbridge/skillbridge/backend/api/internal/tokens"
	"github.com/skillbridge/skillbridge/backend/api/internal/users"
	"github.com/skillbridge/skillbridge/backend/api/pkg/logger"
	"github.com/skillbridge/skillbridge/backend/api/pkg/metrics"
	"github.com/skillbridge/skillbridge/backend/api/pkg/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

// devSecret signs tokens when JWT_SECRET is unset outside production.
const devSecret = "skillbridge-development-secret-change-me"

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s redis=%v minio=%v", cfg.Server.Environment, cfg.Redis.Host != "", cfg.Storage.Enabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional: it backs sessions, token revocation and the shared rate limiter.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s), continuing without it: %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = rdb.Close()
			rdb = nil
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
			defer rdb.Close()
		}
	}

	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("failed to create indexes: %v", err)
	}

	var store storage.ObjectStore
	var minioStore *storage.MinIOStorage
	var memStore *storage.MemoryStore
	if cfg.Storage.Enabled() {
		minioStore, err = storage.NewMinIOStorage(ctx, cfg.Storage)
		if err != nil {
			logger.Fatalf("failed to initialise object storage: %v", err)
		}
		store = minioStore
	} else {
		if cfg.IsProduction() {
			logger.Fatalf("MINIO_ENDPOINT is required in production")
		}
		logger.Warn("MINIO_ENDPOINT is not set; uploads are kept in memory")
		memStore = storage.NewMemoryStore(fmt.Sprintf("http://localhost:%s/uploads", cfg.Server.Port))
		store = memStore
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = devSecret
	}
	issuer := tokens.NewIssuer(secret, cfg.JWT.AccessTokenTTL)

	var sessionRepo sessions.Repository
	if rdb != nil {
		sessionRepo = sessions.NewRedisRepository(rdb, "session:")
		logger.Info("using Redis for session storage")
	} else {
		sessionRepo = sessions.NewMongoRepository(db.Collection(database.SessionsCollection))
		logger.Info("using MongoDB for session storage")
	}
	sessionSvc := sessions.NewService(sessionRepo, cfg.JWT.RefreshTokenTTL)
	revocations := sessions.NewRevocationList(rdb)

	userSvc := users.NewService(users.NewMongoUserRepository(db.Collection(database.UsersCollection)))
	profileSvc := profiles.NewService(profiles.NewMongoRepository(
		db.Collection(database.StudentsCollection),
		db.Collection(database.MentorsCollection),
	), userSvc)
	mentorshipSvc := mentorship.NewService(mentorship.NewMongoRepository(db.Collection(database.MentorshipCollection)), userSvc)
	projectSvc := collaboration.NewService(collaboration.NewMongoRepository(db.Collection(database.ProjectsCollection)), userSvc)
	skillSvc := skills.NewService(skills.NewMongoRepository(db.Collection(database.SkillsCollection)), userSvc)
	certSvc := certificates.NewService(
		certificates.NewMongoRepository(db.Collection(database.CertificatesCollection)),
		store, cfg.Uploads.MaxBytes, cfg.Uploads.PresignTTL,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(cfg.CORS.AllowOrigin), middleware.RequestLogger())

	r.Use(rateLimiters(cfg.RateLimit, rdb, issuer)...)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readiness(client, rdb, minioStore))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	if memStore != nil {
		r.GET("/uploads/*key", serveMemoryObject(memStore))
	}

	handlers.RegisterSwagger(r)

	auth := middleware.AuthMiddleware(issuer, revocations)
	api := r.Group("/api")
	handlers.NewAuthHandler(userSvc, profileSvc, sessionSvc, issuer, revocations).Register(api, auth)
	handlers.NewUserHandler(userSvc, profileSvc, store, cfg.Uploads.MaxBytes).Register(api, auth)
	handlers.NewMentorHandler(profileSvc, mentorshipSvc, userSvc).Register(api, auth)
	handlers.NewCollaborationHandler(projectSvc).Register(api, auth)
	handlers.NewSkillHandler(skillSvc).Register(api, auth)
	handlers.NewCertificateHandler(certSvc, cfg.Uploads.MaxBytes).Register(api, auth)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting SkillBridge API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// rateLimiters builds the global limiter chain. The limiter runs before
// AuthMiddleware, so LimiterSubject resolves the bearer token first and
// authenticated callers are counted per user instead of per IP.
func rateLimiters(cfg config.RateLimitConfig, rdb *redis.Client, ver middleware.Verifier) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	limiter := middleware.RateLimitMiddleware(cfg.RPS, cfg.Burst)
	if cfg.UseRedis && rdb != nil {
		win := time.Duration(cfg.WindowSeconds) * time.Second
		limiter = middleware.RedisRateLimitMiddleware(rdb, cfg.RPS, cfg.Burst, win)
	}
	return []gin.HandlerFunc{middleware.LimiterSubject(ver), limiter}
}

// readiness returns 200 only when every configured dependency answers.
func readiness(client *mongo.Client, rdb *redis.Client, minioStore *storage.MinIOStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		deps := map[string]bool{"mongodb": client.Ping(ctx, nil) == nil}
		if rdb != nil {
			deps["redis"] = rdb.Ping(ctx).Err() == nil
		}
		if minioStore != nil {
			deps["storage"] = minioStore.Ping(ctx) == nil
		}
		status, code := "ready", http.StatusOK
		for _, ok := range deps {
			if !ok {
				status, code = "not_ready", http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	}
}

// serveMemoryObject exposes in-memory uploads for development runs, mirroring
// the MinIO bucket policy: avatars are public, everything else needs a token
// from PresignedURL.
func serveMemoryObject(store *storage.MemoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if !storage.IsPublic(key) && !store.Granted(key, c.Query("token")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
			return
		}
		data, contentType, ok := store.Object(key)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}
