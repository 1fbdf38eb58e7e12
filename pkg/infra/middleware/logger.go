package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	infralog "github.com/kart-io/sentinel-embed/pkg/infra/logger"
	mwopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
)

// Logger returns an access log middleware. 5xx responses log at error
// level and 4xx at warn level.
func Logger(opts *mwopts.LoggerOptions) gin.HandlerFunc {
	var skip map[string]bool
	if opts != nil {
		skip = skipSet(opts.SkipPaths)
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"client_ip", c.ClientIP(),
			"latency_ms", latency.Milliseconds(),
			"bytes", c.Writer.Size(),
		}
		log := infralog.FromContext(c.Request.Context())

		switch {
		case status >= 500:
			log.Errorw("HTTP Request", fields...)
		case status >= 400:
			log.Warnw("HTTP Request", fields...)
		default:
			log.Infow("HTTP Request", fields...)
		}
	}
}
