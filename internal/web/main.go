// Package web serves the settings API over fiber.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/settingskit/settingskit/internal/config"
	fiberlogger "github.com/settingskit/settingskit/internal/logger/adapter/fiber"
	"github.com/settingskit/settingskit/internal/web/handler"
	"github.com/settingskit/settingskit/internal/web/handler/settings/api"
	"github.com/settingskit/settingskit/settings"
	"github.com/settingskit/settingskit/store"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until the
// server stopped.
func (s *Service) Start(addr string) error {
	doneFiber := make(chan error, 1)

	go func() {
		err := s.App.Listen(addr)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}

		doneFiber <- err
	}()

	if err := <-doneFiber; err != nil { // wait for fiber to stop
		return fmt.Errorf("fiber listen error: %w", err)
	}

	return nil
}

// Addr returns the listen address configured for the webserver.
func (s *Service) Addr() string {
	return fmt.Sprintf(":%d", s.cfg.Webserver.Port)
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	s.Shutdown()
}

// Shutdown stops the http server.
func (s *Service) Shutdown() {
	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200 while the service accepts traffic and 503 during
// a graceful shutdown.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// New creates a new web service serving the settings of registry stored in st.
func New(cfg *config.Config, st *store.Store, registry *settings.Registry) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if st == nil || registry == nil {
		panic("store and registry cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize:        8192,
			AppName:               "settingskit",
			CaseSensitive:         true,
			Prefork:               false,
			Immutable:             true,
			UnescapePath:          true,
			DisableStartupMessage: !cfg.DevMode,
			ErrorHandler:          handler.ErrorHandler,
		},
	)

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: handler.CheckAlivePath,
	}))

	// init web service
	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Get(handler.CheckAlivePath, service.CheckAlive)
	app.Get(handler.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// init handlers (they register their own routes)
	if err := (&api.Service{}).Init(app, cfg, st, registry); err != nil {
		log.Fatal().Err(err).Msg(handler.ErrNilDepsFatalLogMsg)
	}

	return service
}
