package middleware

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())
	assert.Empty(t, o.Auth.Token)
	assert.Contains(t, o.Auth.SkipPaths, "/healthz")
}

func TestValidate(t *testing.T) {
	o := NewOptions()
	o.RequestID.Header = ""
	o.RequestID.GeneratorType = "uuid"
	assert.Len(t, o.Validate(), 2)
}

func TestComplete_FillsSections(t *testing.T) {
	o := &Options{}
	require.NoError(t, o.Complete())
	assert.NotNil(t, o.Recovery)
	assert.NotNil(t, o.RequestID)
	assert.NotNil(t, o.Logger)
	assert.NotNil(t, o.Timeout)
	assert.NotNil(t, o.Auth)
	assert.NotNil(t, o.CORS)
	assert.Equal(t, "/readyz", o.Health.ReadinessPath)
	assert.Equal(t, GeneratorRandom, o.RequestID.GeneratorType)
}

func TestAddFlags(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--middleware.auth.token=secret", "--middleware.request-id.generator=ulid"}))
	assert.Equal(t, "secret", o.Auth.Token)
	assert.Equal(t, GeneratorULID, o.RequestID.GeneratorType)
}

func TestCORSValidate(t *testing.T) {
	tests := []struct {
		name string
		cors CORSOptions
		errs int
	}{
		{"wildcard", CORSOptions{AllowOrigins: []string{"*"}}, 0},
		{"explicit origins", CORSOptions{AllowOrigins: []string{"https://app.example.com", "http://localhost:3000"}, AllowCredentials: true}, 0},
		{"empty", CORSOptions{}, 1},
		{"wildcard with credentials", CORSOptions{AllowOrigins: []string{"*"}, AllowCredentials: true}, 1},
		{"no scheme", CORSOptions{AllowOrigins: []string{"example.com"}}, 1},
		{"with path", CORSOptions{AllowOrigins: []string{"https://example.com/app"}}, 1},
		{"negative max age", CORSOptions{AllowOrigins: []string{"*"}, MaxAge: -1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.cors.Validate(), tt.errs)
		})
	}
}

func TestValidate_CORSOnlyWhenEnabled(t *testing.T) {
	o := NewOptions()
	o.CORS.AllowOrigins = nil
	assert.Empty(t, o.Validate())

	o.CORS.Enable = true
	assert.Len(t, o.Validate(), 1)
}
