package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, "8090", cfg.Server.OpsPort)
	assert.Equal(t, "supplypulse", cfg.Database.DBName)
	assert.Equal(t, 60, cfg.Cache.KPITTLSeconds)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "notifications", cfg.Notify.Channel)
	assert.Equal(t, "reports", cfg.Export.Bucket)
	assert.False(t, cfg.Export.Enabled)
}

func TestLoadReturnsSharedInstance(t *testing.T) {
	assert.Same(t, Load(), Load())
}
