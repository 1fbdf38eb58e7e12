package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
	"github.com/kart-io/sentinel-embed/pkg/utils/response"
)

// BodyLimit rejects requests whose Content-Length exceeds maxSize and caps
// the bytes read from the body. A non-positive maxSize disables it.
func BodyLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxSize <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxSize {
			logger.Warnw("request body too large",
				"path", c.Request.URL.Path,
				"content_length", c.Request.ContentLength,
				"max_size", maxSize,
			)
			response.Fail(c, errors.ErrRequestTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
