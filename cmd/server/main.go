package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/metro-ticketing/internal/auth"
	"github.com/iliyamo/metro-ticketing/internal/config"
	"github.com/iliyamo/metro-ticketing/internal/database"
	"github.com/iliyamo/metro-ticketing/internal/handler"
	"github.com/iliyamo/metro-ticketing/internal/metrics"
	"github.com/iliyamo/metro-ticketing/internal/queue"
	"github.com/iliyamo/metro-ticketing/internal/repository"
	"github.com/iliyamo/metro-ticketing/internal/repository/memory"
	"github.com/iliyamo/metro-ticketing/internal/router"
	"github.com/iliyamo/metro-ticketing/internal/service"
	"github.com/iliyamo/metro-ticketing/internal/view"
)

func main() {
	cfg := config.Load() // Load environment config
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := map[string]handler.Pinger{}

	// ---- Store ----
	var store service.Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store = memory.NewStore()
		log.Printf("store: in-memory (data is lost on exit)")
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()
		if cfg.DBAutoMigrate {
			if err := database.Migrate(db); err != nil {
				log.Fatalf("db: migrate: %v", err)
			}
		}
		store = repository.NewStore(db)
		ready["mysql"] = db
	}

	// ---- Redis (optional) ----
	redisCfg := config.LoadRedisConfig()
	rdb := config.NewRedisClient(redisCfg)
	if rdb == nil {
		log.Printf("redis: unavailable at %s; rate limiting, caching and idempotency are off", redisCfg.Addr)
	} else {
		defer rdb.Close()
		ready["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	// ---- Events ----
	queueCfg := config.LoadQueueConfig()
	var events *metrics.CountingPublisher
	if queueCfg.Enabled {
		events = metrics.NewCountingPublisher(queue.NewPublisher(queueCfg.URL, queueCfg.Queue))
		if queueCfg.Consume {
			lc := &queue.LedgerConsumer{URL: queueCfg.URL, Queue: queueCfg.Queue, LogPath: queueCfg.LedgerPath}
			go func() {
				if err := lc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("ledger consumer stopped: %v", err)
				}
			}()
		}
	} else {
		events = metrics.NewCountingPublisher(nil)
	}

	// ---- Services ----
	fares := service.NewFareService(store, cfg.FareStrategy)
	topology := service.NewTopologyService(store, cfg.RouteDeleteMode)
	tickets := service.NewTicketService(store, fares, service.TicketOptions{PriceCheck: cfg.TicketPriceCheck, Events: events})
	accounts := service.NewAccountService(store, service.AccountOptions{
		BcryptCost: cfg.BcryptCost,
		SessionTTL: cfg.SessionTTL,
		Events:     events,
	})

	// ---- HTTP ----
	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	renderer, err := view.New()
	if err != nil {
		log.Fatalf("view: %v", err)
	}
	e.Renderer = renderer

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			c.Logger().Infof("%s %s %d %s rid=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(accounts, cfg.JWTSecret, cfg.Env == "prod", cfg.RequestTimeout),
		Topology: handler.NewTopologyHandler(topology, cfg.RequestTimeout),
		Fare:     handler.NewFareHandler(fares, cfg.RequestTimeout),
		Ticket:   handler.NewTicketHandler(tickets, cfg.RequestTimeout),
		Request:  handler.NewRequestHandler(tickets, accounts, cfg.RequestTimeout),
		View:     handler.NewViewHandler(topology, tickets, accounts, cfg.RequestTimeout),
	}, router.Options{
		JWTSecret:      cfg.JWTSecret,
		Resolver:       auth.NewResolver(store.Repos().Sessions),
		Redis:          rdb,
		RateLimit:      config.LoadRateLimitConfig(),
		LoginRateLimit: config.LoadLoginRateLimitConfig(),
		Cache:          config.LoadCacheConfig(),
		IdemEnabled:    redisCfg.IdemEnabled,
		IdemTTL:        redisCfg.IdemTTL,
		Ready:          ready,
	})

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func logLevel(s string) glog.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	}
	return glog.INFO
}
