package fiber_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settingskit/settingskit/internal/logger"
	adapter "github.com/settingskit/settingskit/internal/logger/adapter/fiber"
)

type accessLine struct {
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Route  string `json:"route"`
	Method string `json:"method"`
	Host   string `json:"host"`
	Error  string `json:"error"`
}

func newApp(cfg adapter.Config) *fiber.App {
	app := fiber.New()
	app.Use(adapter.New(cfg))

	app.Get("/checkalive", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/api/settings/:key", func(c *fiber.Ctx) error {
		return c.SendString(c.Params("key"))
	})
	app.Get("/fail", func(*fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "teapot")
	})

	return app
}

func doRequest(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = resp.Body.Close()
	})

	return resp
}

func TestAccessLog(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		status  int
		route   string
		wantErr bool
	}{
		{name: "setting route", target: "/api/settings/userName?x=1", status: fiber.StatusOK, route: "/api/settings/:key"},
		{name: "not found", target: "/nope", status: fiber.StatusNotFound, wantErr: true},
		{name: "handler error", target: "/fail", status: fiber.StatusTeapot, route: "/fail", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			app := newApp(adapter.Config{Output: &buf})

			resp := doRequest(t, app, tt.target)
			assert.Equal(t, tt.status, resp.StatusCode)

			var line accessLine
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())

			assert.Equal(t, tt.status, line.Status)
			assert.Equal(t, tt.target, line.URI)
			assert.Equal(t, fiber.MethodGet, line.Method)
			assert.Equal(t, "example.com", line.Host)

			if tt.route != "" {
				assert.Equal(t, tt.route, line.Route)
			}

			assert.Equal(t, tt.wantErr, line.Error != "")
		})
	}
}

func TestCheckAliveNotLogged(t *testing.T) {
	var buf bytes.Buffer
	app := newApp(adapter.Config{
		Output:        &buf,
		CheckAliveURI: "/checkalive",
		Config:        logger.Log{DisableCheckAlive: true},
	})

	resp := doRequest(t, app, "/checkalive")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, buf.String())

	doRequest(t, app, "/api/settings/k")
	assert.True(t, strings.Contains(buf.String(), "/api/settings/k"))
}

func TestNextSkipsLogging(t *testing.T) {
	var buf bytes.Buffer
	app := newApp(adapter.Config{
		Output: &buf,
		Next: func(*fiber.Ctx) bool {
			return true
		},
	})

	doRequest(t, app, "/api/settings/k")
	assert.Empty(t, buf.String())
}

func TestNoWritersConfigured(t *testing.T) {
	app := newApp(adapter.Config{})

	resp := doRequest(t, app, "/api/settings/k")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
