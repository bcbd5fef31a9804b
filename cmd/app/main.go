package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/gautambamne/ECom-sub000/external/resend"
	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/cache"
	"github.com/gautambamne/ECom-sub000/internal/config"
	"github.com/gautambamne/ECom-sub000/internal/db"
	"github.com/gautambamne/ECom-sub000/internal/logger"
	"github.com/gautambamne/ECom-sub000/internal/middleware"
	"github.com/gautambamne/ECom-sub000/internal/repository"
	"github.com/gautambamne/ECom-sub000/internal/services"
	"github.com/gautambamne/ECom-sub000/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Init(cfg.App.Environment); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zl := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ======================
	// INFRA
	// ======================
	pool, err := db.Connect(ctx, &cfg.Database)
	if err != nil {
		zl.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, &cfg.Database); err != nil {
		zl.Fatal("migrations failed", zap.Error(err))
	}

	rdb, err := db.ConnectRedis(ctx, &cfg.Redis)
	if err != nil {
		zl.Fatal("redis connect failed", zap.Error(err))
	}
	defer rdb.Close()

	store := cache.New(rdb, cfg.Cache.TTL, cfg.Cache.OpTimeout, zl)

	// ======================
	// EXTERNALS
	// ======================
	var mail services.Mailer
	if cfg.Mail.ResendAPIKey != "" {
		mailer, err := resend.NewMailer(cfg.Mail.ResendAPIKey, cfg.Mail.From)
		if err != nil {
			zl.Fatal("mailer init failed", zap.Error(err))
		}
		mail = mailer
	} else {
		zl.Warn("no mail API key configured, verification codes will not be delivered")
	}

	// ======================
	// REPOSITORIES
	// ======================
	userRepo := repository.NewCachedUserRepository(repository.NewPostgresUserRepository(pool), store)
	sessionRepo := repository.NewPostgresSessionRepository(pool)
	productRepo := repository.NewPostgresProductRepository(pool, store)

	tokens, err := token.NewService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		zl.Fatal("token service init failed", zap.Error(err))
	}

	// ======================
	// SERVICES
	// ======================
	authSvc := services.NewAuthService(userRepo, sessionRepo, tokens, mail, zl)
	sessionSvc := services.NewSessionService(sessionRepo)
	userSvc := services.NewUserService(userRepo)
	productSvc := services.NewProductService(productRepo)

	// periodic sweep of expired session rows; refresh also removes them lazily
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := sessionSvc.PurgeExpired(ctx)
				if err != nil {
					zl.Warn("session sweep failed", zap.Error(err))
				} else if n > 0 {
					zl.Info("swept expired sessions", zap.Int64("count", n))
				}
			}
		}
	}()

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.ErrorHandler(zl)
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	authn := middleware.Authenticate(tokens)
	cw := cookieWriter{
		secure:     cfg.IsProduction(),
		accessTTL:  tokens.AccessTTL(),
		refreshTTL: tokens.RefreshTTL(),
	}

	api := e.Group("/api")
	registerAuthRoutes(api, authSvc, authn, cw)
	registerSessionRoutes(api, sessionSvc, authn)
	registerUserRoutes(api, userSvc, authn)
	registerProductRoutes(api, productSvc, authn)

	// ======================
	// SERVER
	// ======================
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server start failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
	}
}
