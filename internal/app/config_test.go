package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigSyncDefaultsOnWithEndpoint(t *testing.T) {
	t.Setenv("SYNC_ENDPOINT_URL", "https://sheets.example/exec")
	t.Setenv("SYNC_ENABLED", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.SyncEnabled)
}

func TestLoadConfigSyncDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("SYNC_ENDPOINT_URL", "")
	t.Setenv("SYNC_ENABLED", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.SyncEnabled)
}

func TestLoadConfigHonorsExplicitSyncOptOut(t *testing.T) {
	t.Setenv("SYNC_ENDPOINT_URL", "https://sheets.example/exec")
	t.Setenv("SYNC_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.SyncEnabled)
}

func TestLoadConfigRejectsUnknownStoreDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := LoadConfig()
	require.Error(t, err)
}
