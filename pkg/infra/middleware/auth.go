package middleware

import (
	"crypto/subtle"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	mwopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
	"github.com/kart-io/sentinel-embed/pkg/utils/response"
)

const bearerScheme = "Bearer "

// TokenAuth checks a static bearer token. The token can be replaced at
// runtime, and an empty token lets every request through.
type TokenAuth struct {
	token atomic.Pointer[string]
	skip  map[string]bool
}

// NewTokenAuth creates a TokenAuth from opts.
func NewTokenAuth(opts *mwopts.AuthOptions) *TokenAuth {
	a := &TokenAuth{}
	token := ""
	if opts != nil {
		token = opts.Token
		a.skip = skipSet(opts.SkipPaths)
	}
	a.SetToken(token)
	return a
}

// SetToken replaces the expected token.
func (a *TokenAuth) SetToken(token string) {
	a.token.Store(&token)
}

// Enabled reports whether a token is configured.
func (a *TokenAuth) Enabled() bool {
	return *a.token.Load() != ""
}

// Middleware returns the gin handler. Missing or mismatched tokens get
// 401 {"error":"Unauthorized"}.
func (a *TokenAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		want := *a.token.Load()
		if want == "" || a.skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		got, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			logger.Warnw("authentication failed",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
				"request_id", GetRequestID(c.Request.Context()),
			)
			response.Fail(c, errors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerScheme):])
	return token, token != ""
}
