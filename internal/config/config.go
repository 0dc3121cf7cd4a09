package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        string `yaml:"port"`
		CORSOrigins string `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	Content struct {
		Dir string `yaml:"dir"`
	} `yaml:"content"`
	Quiz struct {
		TTL             string `yaml:"ttl"`
		AdvanceDelay    string `yaml:"advance_delay"`
		CompletionDelay string `yaml:"completion_delay"`
	} `yaml:"quiz"`
	Tutor struct {
		APIKey       string `yaml:"api_key"`
		BaseURL      string `yaml:"base_url"`
		Model        string `yaml:"model"`
		HistoryLimit int    `yaml:"history_limit"`
	} `yaml:"tutor"`
	TTS struct {
		APIKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
		VoiceID  string `yaml:"voice_id"`
		CacheDir string `yaml:"cache_dir"`
	} `yaml:"tts"`
	Client struct {
		APIURL string `yaml:"api_url"`
	} `yaml:"client"`
}

// Load reads YAML config from path and applies environment overrides for
// secrets. A missing file yields the defaults plus the environment.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err):
	default:
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Tutor.APIKey = v
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		cfg.TTS.APIKey = v
	}
	if v := os.Getenv("TULU_API_URL"); v != "" {
		cfg.Client.APIURL = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
