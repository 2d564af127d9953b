package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recipe-cost/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"resolve", "shop", "packages", "cache", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "recipe-cost", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommand_LogFlags(t *testing.T) {
	for _, name := range []string{"log-level", "log-format"} {
		flag := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "root command should have --%s flag", name)
		assert.Empty(t, flag.DefValue)
	}
	assert.True(t, rootCmd.SilenceUsage)
}

func TestApplyLogOverrides(t *testing.T) {
	saved := logOverrides
	t.Cleanup(func() { logOverrides = saved })

	lc := config.LogConfig{Level: "info", Format: "json"}
	logOverrides.level, logOverrides.format = "", ""
	applyLogOverrides(&lc)
	assert.Equal(t, config.LogConfig{Level: "info", Format: "json"}, lc)

	logOverrides.level = "debug"
	applyLogOverrides(&lc)
	assert.Equal(t, config.LogConfig{Level: "debug", Format: "json"}, lc)

	logOverrides.format = "console"
	applyLogOverrides(&lc)
	assert.Equal(t, config.LogConfig{Level: "debug", Format: "console"}, lc)
}

func TestShopCommand_Flags(t *testing.T) {
	for _, name := range []string{"file", "item", "json"} {
		require.NotNil(t, shopCmd.Flags().Lookup(name), "shop command should have --%s flag", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestCacheCommand_HasClear(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range cacheCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["clear"])
	require.NotNil(t, cacheClearCmd.Flags().Lookup("prices"))
}
