package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Contains(t, cfg.Store.Path, ".noticing")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[llm]
provider = "openai"
model = "gpt-4o-mini"
api_key = "sk-test"

[store]
backend = "file"
path = "/tmp/journal.json"

[server]
port = "9090"
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0640))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "/tmp/journal.json", cfg.Store.Path)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	assert.Error(t, err)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[llm]\nprovider = \"ollama\"\n"), 0640))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("LLM_API_KEY", "key-from-env")
	t.Setenv("PORT", "3000")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "key-from-env", cfg.LLM.APIKey)
	assert.Equal(t, "3000", cfg.Server.Port)
}
