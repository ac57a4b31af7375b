package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig controls which browser origins may call the API with credentials.
type CORSConfig struct {
	// AllowedOrigins are matched exactly, scheme included.
	AllowedOrigins []string
	// AllowedSuffix admits any origin ending with the suffix,
	// e.g. ".volunhub.org" covers the app and preview deploys.
	AllowedSuffix string
	// AllowLocalhost admits http://localhost:* and http://127.0.0.1:*
	// for local frontend development.
	AllowLocalhost bool
}

// CORS returns a Fiber handler enforcing the origin policy above.
// Credentials are allowed for admitted origins; everything else gets 403.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		// Same-origin requests and CLI tools send no Origin header.
		if origin == "" {
			return c.Next()
		}
		if !cfg.originAllowed(origin) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status": "error",
				"error": fiber.Map{
					"message":    "Not allowed by CORS",
					"statusCode": 403,
					"details":    fiber.Map{},
				},
			})
		}
		setCORSHeaders(c, origin)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func (cfg CORSConfig) originAllowed(origin string) bool {
	lower := strings.ToLower(origin)
	for _, allowed := range cfg.AllowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	if cfg.AllowedSuffix != "" && strings.HasSuffix(lower, strings.ToLower(cfg.AllowedSuffix)) {
		return true
	}
	if cfg.AllowLocalhost && (strings.HasPrefix(lower, "http://localhost:") || strings.HasPrefix(lower, "http://127.0.0.1:")) {
		return true
	}
	return false
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set("Access-Control-Allow-Origin", origin)
	c.Set("Access-Control-Allow-Credentials", "true")
	c.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type")
	c.Set("Vary", "Origin")
}
