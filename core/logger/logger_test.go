package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	coreconfig "github.com/m3rciful/filestore-bot/core/config"
)

func TestResolveOptionsDefaults(t *testing.T) {
	o := resolveOptions(nil)
	assert.Equal(t, formatJSON, o.format)
	assert.Equal(t, slog.LevelInfo, o.level)
	assert.Equal(t, "prod", o.profile)
	assert.Equal(t, [2]int{1, 50}, [2]int{o.sampleKeep, o.sampleOf})
	assert.Empty(t, o.file)
}

func TestResolveOptionsFromConfig(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Logging = coreconfig.LoggingConfig{
		Level:       "warning",
		KeysOrder:   "event, ,status",
		DebugSample: "0",
		Dir:         "logs",
		BotFile:     "bot.log",
		Profile:     "Dev",
	}
	o := resolveOptions(cfg)
	assert.Equal(t, formatKV, o.format)
	assert.Equal(t, slog.LevelWarn, o.level)
	assert.Equal(t, []string{"event", "status"}, o.order)
	assert.Equal(t, [2]int{0, 0}, [2]int{o.sampleKeep, o.sampleOf})
	assert.Equal(t, filepath.Join("logs", "bot.log"), o.file)

	cfg.Logging = coreconfig.LoggingConfig{Format: "json", Profile: "debug", DebugSample: "bogus"}
	o = resolveOptions(cfg)
	assert.Equal(t, formatJSON, o.format)
	assert.Equal(t, [2]int{1, 50}, [2]int{o.sampleKeep, o.sampleOf})
}
