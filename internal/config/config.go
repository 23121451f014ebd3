package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type StoreConfig struct {
	// Backend is one of "sqlite", "file", "memory".
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	LLM    LLMConfig    `toml:"llm"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// Default returns the configuration used when no file is present: a sqlite
// journal under the user's home directory and no LLM provider.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    filepath.Join(home, ".noticing", "noticing.db"),
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables on top of the loaded file so a
// deployment can override single values without editing the config.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("NOTICING_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("NOTICING_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}
