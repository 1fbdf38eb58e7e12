package middleware

import (
	"context"
	stderrors "errors"

	"github.com/gin-gonic/gin"

	mwopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
	"github.com/kart-io/sentinel-embed/pkg/utils/response"
)

// Timeout returns a middleware that puts a deadline on the request context.
// Handlers observe the deadline through ctx; when it expires before anything
// was written, a 504 timeout error is returned. A zero timeout disables it.
func Timeout(opts *mwopts.TimeoutOptions) gin.HandlerFunc {
	if opts == nil || opts.Timeout <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	skip := skipSet(opts.SkipPaths)

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), opts.Timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			response.Fail(c, errors.ErrRequestTimeout)
		}
	}
}
