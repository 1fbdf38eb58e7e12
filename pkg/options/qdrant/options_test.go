package qdrantopts

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_MapsRESTPort(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{RESTPort, GRPCPort},
		{0, GRPCPort},
		{GRPCPort, GRPCPort},
		{16334, 16334},
	}
	for _, tt := range tests {
		o := NewOptions()
		o.Port = tt.in
		require.NoError(t, o.Complete())
		assert.Equal(t, tt.want, o.Port)
	}
}

func TestValidate(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())
	assert.Equal(t, "localhost:6334", o.Addr())

	o.Host = ""
	o.Port = 70000
	o.Timeout = 0
	assert.Len(t, o.Validate(), 3)

	var nilOpts *Options
	assert.Nil(t, nilOpts.Validate())
}

func TestAddFlags(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--qdrant.host=qdrant", "--qdrant.port=6333", "--qdrant.use-tls"}))
	require.NoError(t, o.Complete())
	assert.Equal(t, "qdrant", o.Host)
	assert.Equal(t, GRPCPort, o.Port)
	assert.True(t, o.UseTLS)
}
