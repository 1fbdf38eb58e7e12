package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	mwopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
)

// CORS returns a middleware writing CORS headers for allowed origins and
// answering preflight requests with 204. It is a no-op when opts is nil or
// not enabled. Options are expected to be validated.
func CORS(opts *mwopts.CORSOptions) gin.HandlerFunc {
	if opts == nil || !opts.Enable {
		return func(c *gin.Context) { c.Next() }
	}

	allowed := make(map[string]bool, len(opts.AllowOrigins))
	wildcard := false
	for _, o := range opts.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = true
	}
	allowMethods := strings.Join(opts.AllowMethods, ", ")
	allowHeaders := strings.Join(opts.AllowHeaders, ", ")
	exposeHeaders := strings.Join(opts.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(opts.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || (!wildcard && !allowed[origin]) {
			c.Next()
			return
		}

		if wildcard {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		if opts.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if exposeHeaders != "" {
			c.Header("Access-Control-Expose-Headers", exposeHeaders)
		}

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.Header("Access-Control-Allow-Methods", allowMethods)
			c.Header("Access-Control-Allow-Headers", allowHeaders)
			c.Header("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
