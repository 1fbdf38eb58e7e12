package redis

import (
	"encoding/json"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSON_PasswordRedacted(t *testing.T) {
	o := NewOptions()
	o.Password = "supersecret"

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "supersecret")
	assert.Contains(t, string(data), redactedPassword)
	assert.NotContains(t, o.String(), "supersecret")

	o.Password = ""
	data, err = json.Marshal(o)
	require.NoError(t, err)
	assert.NotContains(t, string(data), redactedPassword)
}

func TestValidate(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())
	assert.Equal(t, "127.0.0.1:6379", o.Addr())

	o.Host = ""
	o.Port = 0
	o.Database = -1
	assert.Len(t, o.Validate(), 3)
}

func TestAddFlags(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--redis.host=cache", "--redis.port=6380", "--redis.database=2"}))
	assert.Equal(t, "cache:6380", o.Addr())
	assert.Equal(t, 2, o.Database)
}
