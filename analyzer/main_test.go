package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "results.json")
	out := filepath.Join(dir, "analysis.json")

	require.NoError(t, os.WriteFile(in, []byte(`[
		{"language": "Go", "mode": "single", "time_ms": 800, "error": 0.0001, "memory_mb": 3},
		{"language": "Go", "mode": "parallel", "time_ms": 120, "error": 0.0002, "memory_mb": 4}
	]`), 0o644))

	analysis, err := analyzeFile(in, out)
	require.NoError(t, err)
	require.NotNil(t, analysis.Stats.Fastest)
	assert.Equal(t, "parallel", analysis.Stats.Fastest.Mode)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var written map[string]any
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Contains(t, written, "grouped")
	assert.Contains(t, written, "rankings")
	assert.Contains(t, written, "stats")
}

func TestAnalyzeFileMissing(t *testing.T) {
	_, err := analyzeFile(filepath.Join(t.TempDir(), "nope.json"), "unused.json")
	assert.Error(t, err)
}
