package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOptions struct {
	Name    string        `mapstructure:"name"`
	Enable  bool          `mapstructure:"enable"`
	Timeout time.Duration `mapstructure:"timeout"`
	Store   struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"store"`

	completed bool
}

func (o *testOptions) Flags() (fss NamedFlagSets) {
	fs := fss.FlagSet("test")
	fs.StringVar(&o.Name, "name", "default", "name")
	fs.BoolVar(&o.Enable, "enable", false, "enable")
	fs.DurationVar(&o.Timeout, "timeout", time.Second, "timeout")
	fs.StringVar(&o.Store.Host, "store.host", "localhost", "host")
	fs.IntVar(&o.Store.Port, "store.port", 6333, "port")
	return fss
}

func (o *testOptions) Complete() error { o.completed = true; return nil }
func (o *testOptions) Validate() error { return nil }

func runApp(t *testing.T, opts *testOptions, args []string, extra ...Option) {
	t.Helper()
	ran := false
	a := NewApp(append([]Option{
		WithName("embedtest"),
		WithOptions(opts),
		WithNoVersion(),
		WithDotenv(),
		WithRunFunc(func() error { ran = true; return nil }),
	}, extra...)...)
	a.Command().SetArgs(args)
	require.NoError(t, a.Command().Execute())
	require.True(t, ran)
	require.True(t, opts.completed)
}

func TestApp_ConfigFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "embedtest.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
name: from-file
enable: "True"
timeout: 5s
store:
  host: ${EMBEDTEST_HOST_VALUE}
`), 0o600))

	t.Setenv("EMBEDTEST_HOST_VALUE", "qdrant.local")
	t.Setenv("EMBEDTEST_STORE_PORT", "7000")

	opts := &testOptions{}
	runApp(t, opts, []string{"-c", cfg, "--name", "from-flag"})

	assert.Equal(t, "from-flag", opts.Name)
	assert.True(t, opts.Enable)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, "qdrant.local", opts.Store.Host)
	assert.Equal(t, 7000, opts.Store.Port)
}

func TestApp_EnvAliases(t *testing.T) {
	t.Setenv("LEGACY_ENABLE", "true")
	t.Setenv("LEGACY_HOST", "legacy-host")
	t.Setenv("EMBEDTEST_STORE_HOST", "prefixed-host")

	opts := &testOptions{}
	runApp(t, opts, []string{},
		WithEnvAliases(map[string][]string{
			"enable":     {"LEGACY_ENABLE"},
			"store.host": {"LEGACY_HOST"},
		}))

	assert.True(t, opts.Enable)
	// 带前缀的变量优先于别名
	assert.Equal(t, "prefixed-host", opts.Store.Host)
}

func TestApp_MissingExplicitConfig(t *testing.T) {
	opts := &testOptions{}
	a := NewApp(WithName("embedtest"), WithOptions(opts), WithNoVersion(), WithSilence())
	a.Command().SetArgs([]string{"-c", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, a.Command().Execute())
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "True", "1", "yes", "ON"} {
		b, ok := ParseBool(s)
		assert.True(t, ok, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"false", "False", "0", "no", "off"} {
		b, ok := ParseBool(s)
		assert.True(t, ok, s)
		assert.False(t, b, s)
	}
	_, ok := ParseBool("maybe")
	assert.False(t, ok)
}

func TestNamedFlagSets_Order(t *testing.T) {
	var fss NamedFlagSets
	fss.FlagSet("b")
	fss.FlagSet("a")
	fss.FlagSet("b")
	assert.Equal(t, []string{"b", "a"}, fss.Order)
	assert.IsType(t, &pflag.FlagSet{}, fss.FlagSets["a"])
}
