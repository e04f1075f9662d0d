package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/deal-pipeline/internal/auth"
	"github.com/iliyamo/deal-pipeline/internal/config"
	"github.com/iliyamo/deal-pipeline/internal/database"
	"github.com/iliyamo/deal-pipeline/internal/handler"
	"github.com/iliyamo/deal-pipeline/internal/middleware"
	"github.com/iliyamo/deal-pipeline/internal/queue"
	"github.com/iliyamo/deal-pipeline/internal/repository"
	"github.com/iliyamo/deal-pipeline/internal/router"
	"github.com/iliyamo/deal-pipeline/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	issuer, err := auth.NewIssuer(
		cfg.JWTSecret,
		cfg.JWTAlgorithm,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
	)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	deals := repository.NewDealRepo(db)
	memos := repository.NewMemoRepo(db)

	authSvc := service.NewAuthService(users, issuer, cfg.BcryptCost, cfg.PasswordMinLen)
	userSvc := service.NewUserService(users)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	authn := middleware.Authenticate(authSvc)

	// The audit consumer tails the broker queues in the background and
	// keeps reconnecting on its own; it never stops the server.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), authn, limiter)
	router.RegisterUsers(e, handler.NewUserHandler(userSvc, roles), authn)
	router.RegisterDeals(e, handler.NewDealHandler(deals), handler.NewMemoHandler(deals, memos), authn, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
