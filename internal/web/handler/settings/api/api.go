// Package api serves the declared settings as JSON.
package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/internal/schema"
	"github.com/settingskit/settingskit/internal/web/handler"
	"github.com/settingskit/settingskit/settings"
	"github.com/settingskit/settingskit/store"
)

const keyParam = "key"

var writes = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "settingskit_api_writes_total",
		Help: "Number of settings changed through the API, by operation.",
	},
	[]string{"op"},
)

// Entry describes one declared setting and its effective value.
type Entry struct {
	Key      string   `json:"key"`
	Kind     string   `json:"kind"`
	Value    string   `json:"value"`
	Default  string   `json:"default"`
	Fallback string   `json:"fallback"`
	Stored   bool     `json:"stored"`
	Cases    []string `json:"cases,omitempty"`
}

// UpdateRequest is the body of a PUT request. Value is the text form of
// the new value.
type UpdateRequest struct {
	Value *string `json:"value" validate:"required"`
}

// Service is the settings API handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	store     *store.Store
	registry  *settings.Registry
	validator *validator.Validate
}

// Init initializes the settings API handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st *store.Store, registry *settings.Registry) error {
	if app == nil || cfg == nil || st == nil || registry == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.store = st
	s.registry = registry
	s.validator = validator.New()

	// register routes
	app.Route(handler.APIPath, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Get("/:"+keyParam, s.Get)
		router.Put("/:"+keyParam, s.Put)
		router.Delete("/:"+keyParam, s.Delete)
	})

	return nil
}

// List returns every declared setting sorted by key.
func (s *Service) List(c *fiber.Ctx) error {
	defs := s.registry.Definitions()

	entries := make([]Entry, 0, len(defs))
	for _, def := range defs {
		entries = append(entries, s.entry(def))
	}

	return c.JSON(entries)
}

// Get returns one declared setting.
func (s *Service) Get(c *fiber.Ctx) error {
	def, err := s.lookup(c)
	if err != nil {
		return err
	}

	return c.JSON(s.entry(def))
}

// Put stores a new value for a declared setting.
func (s *Service) Put(c *fiber.Ctx) error {
	def, err := s.lookup(c)
	if err != nil {
		return err
	}

	req := &UpdateRequest{}
	if err := c.BodyParser(req); err != nil {
		log.Debug().Err(err).Str("key", def.Key()).Msg("failed to parse settings update")

		return handler.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, "field 'value' is required")
	}

	raw, err := schema.Parse(def.Kind(), *req.Value)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := def.SetRaw(s.store, raw); err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	writes.WithLabelValues("set").Inc()

	log.Info().
		Str("key", def.Key()).
		Str("kind", def.Kind().String()).
		Msg("setting updated")

	return c.JSON(s.entry(def))
}

// Delete removes the stored value; the setting reads its fallback again.
func (s *Service) Delete(c *fiber.Ctx) error {
	def, err := s.lookup(c)
	if err != nil {
		return err
	}

	def.Reset(s.store)
	writes.WithLabelValues("reset").Inc()

	log.Info().Str("key", def.Key()).Msg("setting reset")

	return c.JSON(s.entry(def))
}

// lookup resolves the key route parameter to a declared setting.
func (s *Service) lookup(c *fiber.Ctx) (settings.Definition, error) {
	key := c.Params(keyParam)

	def, ok := s.registry.Lookup(key)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "unknown setting "+key)
	}

	return def, nil
}

func (s *Service) entry(def settings.Definition) Entry {
	e := Entry{
		Key:      def.Key(),
		Kind:     def.Kind().String(),
		Value:    schema.FormatFor(def.Kind(), def.EffectiveValue(s.store)),
		Default:  schema.FormatFor(def.Kind(), def.RawDefault()),
		Fallback: def.Fallback().String(),
		Stored:   s.store.Contains(def.Key()),
	}

	for _, c := range def.Cases() {
		e.Cases = append(e.Cases, schema.Format(c))
	}

	return e
}
