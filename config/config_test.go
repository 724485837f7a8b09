package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_OWNER_ID", "owner@s.whatsapp.net")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Bot.DefaultPrefix)
	assert.Equal(t, 3, cfg.Warnings.Links)
	assert.Equal(t, 2, cfg.Warnings.Sales)
	assert.Equal(t, 3, cfg.Warnings.Default)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_RequiresOwner(t *testing.T) {
	t.Setenv("BOT_OWNER_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Bot:      BotConfig{OwnerID: "owner@s.whatsapp.net", DefaultPrefix: "."},
			Warnings: WarningConfig{Links: 3, Sales: 2, Default: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing owner", mutate: func(c *Config) { c.Bot.OwnerID = "" }, wantErr: true},
		{name: "empty prefix", mutate: func(c *Config) { c.Bot.DefaultPrefix = "" }, wantErr: true},
		{name: "zero threshold", mutate: func(c *Config) { c.Warnings.Sales = 0 }, wantErr: true},
		{name: "negative threshold", mutate: func(c *Config) { c.Warnings.Links = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWarningConfig_Threshold(t *testing.T) {
	w := &WarningConfig{Links: 3, Sales: 2, Default: 5}

	assert.Equal(t, 3, w.Threshold("links"))
	assert.Equal(t, 2, w.Threshold("sales"))
	assert.Equal(t, 5, w.Threshold("default"))
	assert.Equal(t, 5, w.Threshold("anything-else"))
}
