package middleware

import (
	"github.com/gin-gonic/gin"

	infralog "github.com/kart-io/sentinel-embed/pkg/infra/logger"
	mwopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
)

// RequestID returns a middleware that propagates the request ID header or
// generates one, echoes it in the response and stores it in the request context, where
// it also becomes a log field.
func RequestID(opts *mwopts.RequestIDOptions) gin.HandlerFunc {
	header := HeaderXRequestID
	var gen IDGenerator = HexGenerator{}
	if opts != nil {
		if opts.Header != "" {
			header = opts.Header
		}
		gen = NewGenerator(opts.GeneratorType)
	}

	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			id = gen.Generate()
		}
		c.Header(header, id)
		ctx := WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(infralog.WithRequestID(ctx, id))
		c.Next()
	}
}
