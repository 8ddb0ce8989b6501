package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("COMMENTLENS_ADDR", "")

	config := InitConfig()
	assert.Equal(t, ":5000", config.Addr)
	assert.Equal(t, DefaultModel, config.Model)
	assert.Equal(t, 20, config.BatchSize)
	assert.Equal(t, 500, config.ChunkSize)
	assert.NotEmpty(t, config.ConfigDir)
	assert.NotEmpty(t, config.CacheDir)
}

func TestInitConfigBarePortBecomesAddr(t *testing.T) {
	t.Setenv("COMMENTLENS_ADDR", "")
	t.Setenv("PORT", "8080")

	config := InitConfig()
	assert.Equal(t, ":8080", config.Addr)
}

func TestInitConfigEnvOverrides(t *testing.T) {
	t.Setenv("COMMENTLENS_MODEL", "llama-3.1-8b-instant")
	t.Setenv("YOUTUBE_API_KEY", "yt-from-env")
	t.Setenv("GROQ_API_KEY", "gq-from-env")

	config := InitConfig()
	assert.Equal(t, "llama-3.1-8b-instant", config.Model)
	assert.Equal(t, "yt-from-env", config.YouTubeAPIKey)
	assert.Equal(t, "gq-from-env", config.GroqAPIKey)
}
