package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
collision:
  active_jobs_threshold: 8
  wait_jobs_threshold: 4
  msg_expire_time_ms: 2500
  max_stealing_attempts: 3
  stealing_enabled: false
  stealing_attributes:
    rack: east
    tier: gold

pagestore:
  dir: /var/lib/jobsteal
  page_size: 8192

metrics:
  enabled: false
  port: 9200
`

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesAllFields(t *testing.T) {
	cfg, err := Load(writeFixture(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Collision.ActiveJobsThreshold)
	assert.Equal(t, 4, cfg.Collision.WaitJobsThreshold)
	assert.EqualValues(t, 2500, cfg.Collision.MsgExpireTimeMs)
	assert.Equal(t, 3, cfg.Collision.MaxStealingAttempts)
	assert.False(t, cfg.Collision.StealingEnabled)
	assert.Equal(t, map[string]string{"rack": "east", "tier": "gold"}, cfg.Collision.StealingAttributes)

	assert.Equal(t, "/var/lib/jobsteal", cfg.PageStore.Dir)
	assert.EqualValues(t, 8192, cfg.PageStore.PageSize)

	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9200, cfg.Metrics.Port)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAMLReturnsError(t *testing.T) {
	_, err := Load(writeFixture(t, "collision: [this is not a mapping"))
	assert.Error(t, err)
}

func TestCollisionConfigProjection(t *testing.T) {
	cfg, err := Load(writeFixture(t, testYAML))
	require.NoError(t, err)

	cc := cfg.CollisionConfig()
	assert.Equal(t, 8, cc.ActiveJobsThreshold)
	assert.Equal(t, 4, cc.WaitJobsThreshold)
	assert.Equal(t, 2500*time.Millisecond, cc.MsgExpireTime)
	assert.Equal(t, 3, cc.MaxStealingAttempts)
	assert.False(t, cc.StealingEnabled)
	assert.Equal(t, map[string]string{"rack": "east", "tier": "gold"}, cc.StealingAttributes)
}

func TestDefaultMatchesConfigsDefaultYAML(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 16, cfg.Collision.ActiveJobsThreshold)
	assert.Equal(t, 32, cfg.Collision.WaitJobsThreshold)
	assert.EqualValues(t, 1000, cfg.Collision.MsgExpireTimeMs)
	assert.Equal(t, 5, cfg.Collision.MaxStealingAttempts)
	assert.True(t, cfg.Collision.StealingEnabled)
	assert.Equal(t, "data", cfg.PageStore.Dir)
	assert.EqualValues(t, 4096, cfg.PageStore.PageSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}
