package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/estimator"
)

func TestLoad_FromEnvDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("EVALUATOR_WORKERS", "16")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "shopeval", cfg.App.Name)
	assert.Equal(t, 16, cfg.Evaluator.Workers)
	assert.Equal(t, time.Minute, cfg.Evaluator.RefreshInterval)
	assert.Equal(t, estimator.StandardDefaults(), cfg.Estimator.Defaults())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 4, cfg.Evaluator.Workers)
	assert.Equal(t, 30*time.Second, cfg.Evaluator.RefreshInterval)
	assert.Equal(t, 14.5, cfg.Estimator.PaintHours)
	assert.Equal(t, "B", cfg.Estimator.CleaningClass)
	// 文件未给出的字段使用默认值
	assert.Equal(t, 24.0, cfg.Estimator.LiningHours)
	assert.Equal(t, "json", cfg.Log.LoggerConfig().Format)
	assert.Contains(t, cfg.Database.DSN(), "dbname=fleet")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Evaluator.Workers = 0
	cfg.Estimator.PaintHours = -1

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

func TestRedisConfig_Addr(t *testing.T) {
	c := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", c.Addr())
}
