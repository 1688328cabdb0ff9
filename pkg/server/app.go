package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"

	"TradeGate/internal/handler/api"
	mid "TradeGate/internal/middleware"
	"TradeGate/internal/services/auth"
	"TradeGate/internal/usecase"
	pkgcache "TradeGate/pkg/cache"
	pkgch "TradeGate/pkg/clickhouse"
	"TradeGate/pkg/config"
	xhttp "TradeGate/pkg/http"
	pkgkafka "TradeGate/pkg/kafka"
	applogger "TradeGate/pkg/logger"
	"TradeGate/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg             *config.Config
	l               *applogger.Logger
	collector       *usecase.CandleCollector
	consumer        *pkgkafka.Consumer
	kh              pkgkafka.MessageHandler
	chClient        *pkgch.Client
	redisCache      *pkgcache.RedisCache
	archiveConsumer *queue.RedisQueue
	httpServer      *xhttp.Server

	tokens        *auth.Manager
	gateHandler   *api.GateHandler
	tradesHandler *api.TradesHandler
	authHandler   *api.AuthHandler

	CandleProc *usecase.CandleProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	redisCache *pkgcache.RedisCache,
	archiveConsumer *queue.RedisQueue,
) *App {
	return &App{
		cfg:             cfg,
		l:               l,
		collector:       collector,
		consumer:        consumer,
		kh:              kh,
		chClient:        chClient,
		redisCache:      redisCache,
		archiveConsumer: archiveConsumer,
	}
}

// SetHandlers injects the HTTP handlers and the token manager used by the
// auth middleware.
func (a *App) SetHandlers(tokens *auth.Manager, gate *api.GateHandler, trades *api.TradesHandler, authh *api.AuthHandler) {
	a.tokens = tokens
	a.gateHandler = gate
	a.tradesHandler = trades
	a.authHandler = authh
}

// RegisterRoutes implements xhttp.Handler.
func (a *App) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", a.healthz)

	authmw := mid.AuthRequired(a.tokens)
	if a.gateHandler != nil {
		a.gateHandler.RegisterRoutes(e, authmw)
	}
	if a.tradesHandler != nil {
		a.tradesHandler.RegisterRoutes(e, authmw)
	}
	if a.authHandler != nil {
		a.authHandler.RegisterRoutes(e)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.l.Error("collector error", applogger.Error(err))
			}
		}()
		a.l.Info("collector started", applogger.Strings("symbols", a.cfg.Binance.Symbols))
	}

	// Start kafka consumer if the ingest backend uses it
	if a.consumer != nil && a.kh != nil && a.cfg.Backend.Type == "kafka" {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start decision archive queue consumer
	if a.archiveConsumer != nil {
		if err := a.archiveConsumer.Start(); err != nil {
			a.l.Error("archive consumer start error", applogger.Error(err))
		} else {
			a.archiveConsumer.StartRetryProcessor()
			a.l.Info("decision archive consumer started")
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// healthz checks infrastructure dependencies.
func (a *App) healthz(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK

	if a.chClient != nil {
		if err := a.chClient.DB().PingContext(c.Request().Context()); err != nil {
			status["clickhouse"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if a.collector != nil && !a.collector.IsConnected() {
		status["stream"] = "disconnected"
	}
	if code != http.StatusOK {
		status["status"] = "degraded"
	}
	return c.JSON(code, status)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.l.Warn("collector stop error", applogger.Error(err))
		}
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop queue consumer
	if a.archiveConsumer != nil {
		if err := a.archiveConsumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("archive consumer stop error", applogger.Error(err))
		}
	}

	// Stop kafka consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close processor resources (publisher/storage)
	if a.CandleProc != nil {
		a.CandleProc.Close()
	}

	// Flush pending error digests while the queue publisher is still up
	a.l.CloseErrorDigest()

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.l.Warn("redis close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
