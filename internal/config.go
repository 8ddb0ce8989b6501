package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds application settings.
type Config struct {
	// User configurable settings
	Addr          string
	Model         string
	BatchSize     int
	ChunkSize     int
	CallPause     time.Duration
	PollInterval  time.Duration
	CacheTTL      time.Duration
	RedisURL      string
	YouTubeAPIKey string
	GroqAPIKey    string
	Verbose       bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
}

//go:embed config.toml
var defaultFS embed.FS

// ensureDefaultConfig writes the embedded default config into the XDG
// config directory if none exists yet.
func ensureDefaultConfig(configDir string) error {
	filePath := filepath.Join(configDir, "config.toml")
	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	content, err := defaultFS.ReadFile("config.toml")
	if err != nil {
		return fmt.Errorf("reading embedded default configuration: %w", err)
	}

	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("writing default configuration: %w", err)
	}

	fmt.Printf("Created default configuration at %s\n", filePath)
	return nil
}

// InitConfig initializes Viper and loads configuration.
func InitConfig() *Config {
	// XDG standard directories
	configDir := filepath.Join(xdg.ConfigHome, "commentlens")
	dataDir := filepath.Join(xdg.DataHome, "commentlens")
	cacheDir := filepath.Join(xdg.CacheHome, "commentlens")

	v := viper.New()

	// Defaults for configurable settings
	v.SetDefault("addr", ":5000")
	v.SetDefault("model", DefaultModel)
	v.SetDefault("batch_size", 20)
	v.SetDefault("chunk_size", 500)
	v.SetDefault("call_pause", 5*time.Second)
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("cache_ttl", time.Duration(0)) // 0 = no expiry
	v.SetDefault("redis_url", "")
	v.SetDefault("verbose", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("COMMENTLENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Fallback API keys and redis come from conventional env names too.
	_ = v.BindEnv("youtube_api_key", "COMMENTLENS_YOUTUBE_API_KEY", "YOUTUBE_API_KEY")
	_ = v.BindEnv("groq_api_key", "COMMENTLENS_GROQ_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("redis_url", "COMMENTLENS_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("addr", "COMMENTLENS_ADDR", "PORT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	addr := v.GetString("addr")
	// A bare PORT env value becomes a listen address.
	if addr != "" && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	config := &Config{
		Addr:          addr,
		Model:         v.GetString("model"),
		BatchSize:     v.GetInt("batch_size"),
		ChunkSize:     v.GetInt("chunk_size"),
		CallPause:     v.GetDuration("call_pause"),
		PollInterval:  v.GetDuration("poll_interval"),
		CacheTTL:      v.GetDuration("cache_ttl"),
		RedisURL:      v.GetString("redis_url"),
		YouTubeAPIKey: v.GetString("youtube_api_key"),
		GroqAPIKey:    v.GetString("groq_api_key"),
		Verbose:       v.GetBool("verbose"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
	}

	if config.Verbose {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// EnsureDefaultConfig makes sure the XDG config directory holds a config
// file, creating it from the embedded default when missing.
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultConfig(configDir)
}
