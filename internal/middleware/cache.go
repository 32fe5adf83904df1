package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CacheConfig struct {
	MaxAge  int
	Private bool
	NoStore bool
	Vary    []string
}

// DefaultCacheConfig suits the public availability endpoint: short-lived
// public responses that proxies may share.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge: 30,
		Vary:   []string{"Accept"},
	}
}

// Cache sets Cache-Control headers on GET responses. Mutating requests
// always get no-store.
func Cache(config CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}

		directives := make([]string, 0, 3)
		if config.Private {
			directives = append(directives, "private")
		} else {
			directives = append(directives, "public")
		}
		if config.NoStore {
			directives = append(directives, "no-store")
		}
		if config.MaxAge > 0 {
			directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
		}
		c.Header("Cache-Control", strings.Join(directives, ", "))

		if len(config.Vary) > 0 {
			c.Header("Vary", strings.Join(config.Vary, ", "))
		}

		c.Next()
	}
}
