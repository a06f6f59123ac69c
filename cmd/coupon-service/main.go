package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cheertaboi/coupon-management-service/internal/api"
	"github.com/Cheertaboi/coupon-management-service/internal/auth"
	"github.com/Cheertaboi/coupon-management-service/internal/cache"
	"github.com/Cheertaboi/coupon-management-service/internal/config"
	"github.com/Cheertaboi/coupon-management-service/internal/repository"
	"github.com/Cheertaboi/coupon-management-service/internal/service"
	"github.com/Cheertaboi/coupon-management-service/internal/storage"
	"github.com/Cheertaboi/coupon-management-service/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	conn, err := db.NewPostgresConnection(cfg.Postgres)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer conn.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.RunMigrations(migrateCtx, conn)
	cancel()
	if err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var couponCache service.CouponCache
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		rc := cache.NewRedisCouponCache(client, cfg.CacheTTL)
		defer rc.Close()
		couponCache = rc
		log.Printf("coupon cache: redis at %s", cfg.RedisAddr)
	} else {
		couponCache = cache.NewCouponCache(cfg.CacheTTL)
		log.Println("coupon cache: in-process; set REDIS_ADDR when running more than one instance")
	}

	var archiver storage.Archiver = storage.NopArchiver{}
	if cfg.Archive.Bucket != "" {
		s3a, err := storage.NewS3Archiver(context.Background(), cfg.Archive)
		if err != nil {
			log.Fatalf("import archive: %v", err)
		}
		archiver = s3a
		log.Printf("import archive: bucket %s", cfg.Archive.Bucket)
	}

	couponService := service.NewCouponService(
		repository.NewCouponRepo(conn),
		repository.NewUserRepo(conn),
		repository.NewUsageRepo(conn),
		service.Options{
			RedeemAttempts:        cfg.RedeemAttempts,
			ImportDefaultValidity: cfg.ImportDefaultValidity,
			Cache:                 couponCache,
		},
	)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(repository.NewAdminRepo(conn), tokens)

	handler := api.NewRouter(api.Deps{
		Coupons:        couponService,
		Auth:           authService,
		Tokens:         tokens,
		Archiver:       archiver,
		ImportMaxBytes: cfg.ImportMaxBytes,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("starting coupon-service on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %s\n", err)
	}

	<-idleConnsClosed
	log.Println("server stopped")
}
