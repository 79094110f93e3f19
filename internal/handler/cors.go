package handler

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// CORSMiddleware creates a CORS middleware. "*" in allowedOrigins allows any
// origin. Paging headers are exposed so browser clients can read list totals.
func CORSMiddleware(allowedOrigins, allowedMethods, allowedHeaders []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     allowedMethods,
		AllowHeaders:     allowedHeaders,
		ExposeHeaders:    []string{HeaderTotal, HeaderLimit, HeaderOffset, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}

	if slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
