package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Engine.MinTokenLength)
	assert.Equal(t, 5*time.Second, cfg.Engine.SubstitutionTimeout)
	assert.Equal(t, "word-query-events", cfg.Kafka.Topics.QueryEvents)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9000
dictionary:
  path: /tmp/words.txt
engine:
  minTokenLength: 4
  substitutionTimeout: 250ms
redis:
  enabled: false
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/words.txt", cfg.Dictionary.Path)
	assert.Equal(t, 4, cfg.Engine.MinTokenLength)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.SubstitutionTimeout)
	assert.False(t, cfg.Redis.Enabled)
	// untouched sections keep their defaults
	assert.Equal(t, 100, cfg.Engine.PhraseLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WE_SERVER_PORT", "7070")
	t.Setenv("WE_DICTIONARY_PATH", "/srv/words")
	t.Setenv("WE_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("WE_ENGINE_SUBSTITUTION_TIMEOUT", "2s")
	t.Setenv("WE_REDIS_ENABLED", "false")
	t.Setenv("WE_KAFKA_ENABLED", "true")
	t.Setenv("WE_SERVER_RATE_LIMIT", "0")
	t.Setenv("WE_SERVER_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/words", cfg.Dictionary.Path)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Engine.SubstitutionTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, 0, cfg.Server.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Engine.MinTokenLength = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Engine.MaxPhraseLimit = cfg.Engine.PhraseLimit - 1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.RateLimit = -1
	assert.Error(t, cfg.Validate())

	assert.NoError(t, Default().Validate())
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "w", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=w sslmode=disable", p.DSN())
}

func TestLoadDevelopmentConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "development.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data/wordlist.txt", cfg.Dictionary.Path)
	assert.Equal(t, "word-query-events", cfg.Kafka.Topics.QueryEvents)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
}
