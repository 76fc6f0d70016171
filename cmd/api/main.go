package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/joefazee/countrylookup/app"
	"github.com/joefazee/countrylookup/app/api"
	"github.com/joefazee/countrylookup/app/countries"
	apiDoc "github.com/joefazee/countrylookup/app/doc"
	"github.com/joefazee/countrylookup/app/reachability"
	"github.com/joefazee/countrylookup/app/search"
	_ "github.com/joefazee/countrylookup/docs"
	"github.com/joefazee/countrylookup/internal/cache"
	"github.com/joefazee/countrylookup/internal/deps"
	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/internal/nexus"
	"github.com/joefazee/countrylookup/internal/router"
	"github.com/joefazee/countrylookup/internal/sanitizer"
	"github.com/joefazee/countrylookup/internal/security"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

// @title Country Lookup API
// @version 1.0
// @description Country search by name or code, plus search sessions that keep a short list of favorite countries.
// @termsOfService https://countrylookup.dev/terms

// @contact.name API Support Team
// @contact.url https://countrylookup.dev/support
// @contact.email support@countrylookup.dev

// @license.name MIT License
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg, err := app.LoadConfig(nexus.WithDefaultFileName(".env"))
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	appLogger := logger.NewZeroLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel), logger.Fields{
		"service": "countrylookup",
		"env":     cfg.Env,
		"version": version,
	})

	symmetricKey, err := sessionKey(cfg)
	if err != nil {
		appLogger.Fatal(err, nil)
	}
	tokenMaker, err := security.NewPasetoMaker(symmetricKey)
	if err != nil {
		appLogger.Fatal(fmt.Errorf("cannot create token maker: %w", err), nil)
	}

	store, err := cache.NewCache[string](cfg.Cache.Backend, cfg.Cache.RedisOptions())
	if err != nil {
		appLogger.Fatal(fmt.Errorf("cannot create cache: %w", err), nil)
	}
	revocations := cache.NewRevocations(store)

	observer, err := cfg.Reachability.Observer()
	if err != nil {
		appLogger.Fatal(err, nil)
	}
	monitor := reachability.NewMonitor(observer, cfg.Reachability.Interval, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	monitor.Start(ctx)

	container := deps.NewContainer(tokenMaker, sanitizer.NewHTMLStripper(), appLogger, revocations)
	countries.InitServices(container, &cfg.Countries)
	registry := search.InitServices(container, &cfg.Search, &cfg.Location, monitor)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestID(), api.RequestLogger(appLogger), api.CorsMiddleware())

	mounter := router.NewMounter(container)
	mounter.Public(r).
		Handle(http.MethodGet, "/healthz", api.HealthCheck(cfg.Env, version, monitor)).
		Mount(countries.MountPublic, search.MountPublic)
	mounter.Authenticated(r).Mount(search.MountAuthenticated)
	apiDoc.Init(r, cfg.Env)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.Info("starting country lookup API", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(fmt.Errorf("server stopped: %w", err), nil)
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Errorf("graceful shutdown failed: %w", err), nil)
	}

	registry.Close()
	monitor.Stop()
	if err := revocations.Close(); err != nil {
		appLogger.Error(fmt.Errorf("closing cache: %w", err), nil)
	}
}

// sessionKey returns the configured token key. Outside production a missing key is
// replaced by a random one, so tokens do not survive a restart.
func sessionKey(cfg *app.Config) (string, error) {
	if cfg.Search.SessionSymmetricKey != "" {
		return cfg.Search.SessionSymmetricKey, nil
	}
	if cfg.Env == "production" {
		return "", errors.New("SESSION_SYMMETRIC_KEY is required in production")
	}

	buf := make([]byte, chacha20poly1305.KeySize/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
