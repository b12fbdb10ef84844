package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_BindsPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	require.NoError(t, flags.Set("endpoint", "http://localhost:9000"))
	require.NoError(t, flags.Set("bucket", "artifacts"))

	require.NoError(t, initConfig(flags))

	assert.Equal(t, "http://localhost:9000", cfg.GetString("endpoint"))
	assert.Equal(t, "artifacts", cfg.GetString("bucket"))
	assert.Equal(t, "us-east-1", cfg.GetString("region"))
	assert.Equal(t, 3, cfg.GetInt("max-retries"))
}

func TestInitConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("OBJSTORE_ACCESS_KEY", "AKIDEXAMPLE")

	require.NoError(t, initConfig(pflag.NewFlagSet("objstore", pflag.ContinueOnError)))

	assert.Equal(t, "AKIDEXAMPLE", cfg.GetString("access-key"))
}

func TestParseKeyValue(t *testing.T) {
	assert.Nil(t, parseKeyValue(""))
	assert.Equal(t, map[string]string{"owner": "platform", "env": "ci"},
		parseKeyValue("owner=platform,env=ci"))
}
