package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopeval/shopeval/internal/config"
	"github.com/shopeval/shopeval/pkg/evaluation"
)

func TestParseShopCodes(t *testing.T) {
	tests := []struct {
		in       string
		expected []string
	}{
		{"", nil},
		{"HOU1", []string{"HOU1"}},
		{" HOU1, ,BTR2 ", []string{"HOU1", "BTR2"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseShopCodes(tt.in), "parseShopCodes(%q)", tt.in)
	}
}

func TestParseOverrides(t *testing.T) {
	o, err := parseOverrides(`{"exterior_paint": true, "primary_network": true, "lining_type": "Epoxy"}`)
	require.NoError(t, err)
	assert.True(t, o.ExteriorPaint)
	assert.True(t, o.PrimaryNetworkOverride)
	assert.Equal(t, "Epoxy", o.LiningType)

	_, err = parseOverrides(`{"exterior_paint":`)
	assert.Error(t, err)

	o, err = parseOverrides("  ")
	require.NoError(t, err)
	assert.False(t, o.NewLining)
}

func TestRun_FileInput(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := config.Load("")
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.Metrics.Enabled = true
	cfg.Metrics.TextfilePath = filepath.Join(dir, "shopeval.prom")

	opts := options{
		inputPath: filepath.Join("..", "..", "pkg", "evaluation", "testdata", "fixture.json"),
		carNumber: "UTLX 100",
		overrides: `{"kosher_cleaning": true}`,
	}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, opts, &out))

	var result evaluation.BatchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "UTLX 100", result.CarNumber)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "HOU1", result.Results[0].ShopCode)
	assert.Equal(t, 1, result.Eligible)

	_, err = os.Stat(cfg.Metrics.TextfilePath)
	assert.NoError(t, err)
}

func TestRun_UnknownCar(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := config.Load("")
	require.NoError(t, err)

	opts := options{
		inputPath: filepath.Join("..", "..", "pkg", "evaluation", "testdata", "fixture.json"),
		carNumber: "NOPE 0",
	}

	var out bytes.Buffer
	assert.Error(t, run(context.Background(), cfg, opts, &out))
	assert.Zero(t, out.Len())
}
