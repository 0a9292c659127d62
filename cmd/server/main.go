package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-management/internal/audit"
	"github.com/iliyamo/user-management/internal/auth"
	"github.com/iliyamo/user-management/internal/config"
	"github.com/iliyamo/user-management/internal/database"
	"github.com/iliyamo/user-management/internal/handler"
	"github.com/iliyamo/user-management/internal/middleware"
	"github.com/iliyamo/user-management/internal/repository"
	"github.com/iliyamo/user-management/internal/router"
	"github.com/iliyamo/user-management/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	hasher := auth.NewHasher(cfg.BcryptCost)
	issuer := auth.NewTokenIssuer(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)

	// Audit entries flow through RabbitMQ; without a broker they are
	// dropped (and logged) rather than blocking any mutation.
	var sink audit.Sink = audit.NopSink{}
	if cfg.AMQPURL != "" {
		sink = audit.NewPublisher(cfg.AMQPURL)
		go audit.StartConsumer(cfg.AMQPURL, auditRepo)
	}

	authSvc := auth.NewService(users, hasher, issuer, sink)
	userSvc := service.NewUsers(users, hasher, sink)

	e := echo.New()

	// Redis is optional: both the rate limiter and the response cache
	// become pass-throughs when the client is nil.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, issuer))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, handler.NewHealthHandler(db))
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, issuer), issuer)
	router.RegisterUsers(e, handler.NewUsersHandler(userSvc), issuer)
	router.RegisterAdmin(e, handler.NewAdminHandler(userSvc, auditRepo), issuer, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
