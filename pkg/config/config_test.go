package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Samples)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "rain", cfg.Query)
	assert.False(t, cfg.JSONLogs)
	assert.False(t, cfg.Verbose)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("samples", 1000, "")
	flags.Uint64("seed", 42, "")
	require.NoError(t, flags.Parse([]string{"--samples=5", "--seed=7"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Samples)
	assert.Equal(t, uint64(7), cfg.Seed)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("BAYESNET_SAMPLES", "250")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Samples)
}
