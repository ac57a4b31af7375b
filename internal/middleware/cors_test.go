package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCORSApp(cfg CORSConfig) *fiber.App {
	app := fiber.New()
	app.Use(CORS(cfg))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func TestCORS_NoOriginPassesThrough(t *testing.T) {
	app := newCORSApp(CORSConfig{AllowedSuffix: ".volunhub.org"})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORS_ExactOriginAllowed(t *testing.T) {
	app := newCORSApp(CORSConfig{AllowedOrigins: []string{"https://admin.volunhub.net"}})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://admin.volunhub.net")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://admin.volunhub.net", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestCORS_SuffixMatch(t *testing.T) {
	app := newCORSApp(CORSConfig{AllowedSuffix: ".volunhub.org"})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://preview-42.volunhub.org")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://preview-42.volunhub.org", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORS_LocalhostOnlyInDev(t *testing.T) {
	dev := newCORSApp(CORSConfig{AllowLocalhost: true})
	r := httptest.NewRequest("GET", "/ping", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	resp, err := dev.Test(r)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	prod := newCORSApp(CORSConfig{AllowedSuffix: ".volunhub.org"})
	r = httptest.NewRequest("GET", "/ping", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	resp, err = prod.Test(r)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	app := newCORSApp(CORSConfig{AllowedSuffix: ".volunhub.org"})

	req := httptest.NewRequest(fiber.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.volunhub.org")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.volunhub.org", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestCORS_UnknownOriginForbidden(t *testing.T) {
	app := newCORSApp(CORSConfig{
		AllowedOrigins: []string{"https://admin.volunhub.net"},
		AllowedSuffix:  ".volunhub.org",
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
