package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	mwopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
	"github.com/kart-io/sentinel-embed/pkg/utils/response"
)

// Recovery returns a middleware that turns a panic into a 500 response.
// The stack is always logged and returned to the client only when
// EnableStackTrace is set.
func Recovery(opts *mwopts.RecoveryOptions) gin.HandlerFunc {
	withStack := opts != nil && opts.EnableStackTrace

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()
			logger.Errorw("panic recovered",
				"panic", fmt.Sprint(r),
				"stack_trace", string(stack),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c.Request.Context()),
			)

			cause := fmt.Errorf("panic: %v", r)
			if withStack {
				cause = fmt.Errorf("panic: %v\n%s", r, stack)
			}
			response.Fail(c, errors.ErrPanic.WithCause(cause))
		}()
		c.Next()
	}
}
