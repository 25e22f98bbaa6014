package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsJSON = `[
  {"language": "C", "variant": "standard", "mode": "single", "iterations": 100000000,
   "pi_estimate": 3.14159, "error": 0.00002, "time_ms": 410.5, "memory_mb": 1.5},
  {"language": "Go", "variant": "standard", "mode": "parallel", "iterations": 100000000,
   "pi_estimate": 3.1417, "error": 0.0001, "time_ms": 95.25, "memory_mb": 6.0, "thread_count": 8},
  {"language": "Python", "variant": "numpy", "mode": "single", "iterations": "100000000",
   "pi_estimate": 3.1412, "error": 0.0004, "time_ms": 1200},
  {"pi_estimate": 3.0, "error": 0.14}
]`

func decodeFixture(t *testing.T) []Document {
	t.Helper()

	var raw []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultsJSON), &raw))

	docs, err := DecodeDocuments(raw)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	return docs
}

func TestDecodeDocuments(t *testing.T) {
	results := decodeFixture(t)

	assert.Equal(t, "Go", results[1].Language)
	assert.Equal(t, uint64(100000000), results[1].Iterations)
	assert.Equal(t, 8, results[1].ThreadCount)

	// weakly typed: a string iteration count still decodes
	assert.Equal(t, uint64(100000000), results[2].Iterations)
	assert.Zero(t, results[2].MemoryMB)

	assert.Equal(t, "Unknown", results[3].Language)
	assert.Equal(t, "standard", results[3].Variant)
	assert.Equal(t, ModeSingle, results[3].Mode)
	assert.Zero(t, results[3].TimeMS)
	_, hasLanguage := results[3].Source["language"]
	assert.False(t, hasLanguage)
}

func TestDecodeDocumentsRejectsGarbage(t *testing.T) {
	_, err := DecodeDocuments([]map[string]any{{"iterations": "lots"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 0")
}

func TestAnalyze(t *testing.T) {
	analysis := Analyze(decodeFixture(t))

	assert.Len(t, analysis.Grouped, 4)
	assert.Len(t, analysis.Grouped["Go_standard_parallel"], 1)
	assert.Len(t, analysis.Grouped["Unknown_standard_single"], 1)

	var order []string
	for _, r := range analysis.Rankings.Time {
		order = append(order, r.Language)
	}
	assert.Equal(t, []string{"Go", "C", "Python", "Unknown"}, order)

	order = order[:0]
	for _, r := range analysis.Rankings.Memory {
		order = append(order, r.Language)
	}
	assert.Equal(t, []string{"C", "Go", "Python", "Unknown"}, order)

	assert.Equal(t, 4, analysis.Stats.TotalResults)
	assert.Equal(t, 4, analysis.Stats.Languages)
	require.NotNil(t, analysis.Stats.Fastest)
	assert.Equal(t, "Go", analysis.Stats.Fastest.Language)
	require.NotNil(t, analysis.Stats.MostAccurate)
	assert.Equal(t, "C", analysis.Stats.MostAccurate.Language)
	require.NotNil(t, analysis.Stats.MostEfficientMemory)
	assert.Equal(t, "C", analysis.Stats.MostEfficientMemory.Language)
}

func TestAnalyzeKeepsSourceDocuments(t *testing.T) {
	analysis := Analyze(decodeFixture(t))

	data, err := json.Marshal(analysis)
	require.NoError(t, err)

	var written struct {
		Rankings struct {
			Time []map[string]any `json:"time"`
		} `json:"rankings"`
	}
	require.NoError(t, json.Unmarshal(data, &written))
	require.Len(t, written.Rankings.Time, 4)

	// results that never reported a time come last and are not filled in
	assert.Equal(t, map[string]any{"pi_estimate": 3.0, "error": 0.14}, written.Rankings.Time[3])
	assert.NotContains(t, written.Rankings.Time[2], "memory_mb")
	assert.Equal(t, 1200.0, written.Rankings.Time[2]["time_ms"])
}

func TestDocumentWithoutSource(t *testing.T) {
	doc := Document{Result: Result{Language: "Go", TimeMS: 12}}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"time_ms":12`)
	assert.Equal(t, 12.0, doc.metric("time_ms", doc.TimeMS))
}

func TestAnalyzeEmpty(t *testing.T) {
	analysis := Analyze(nil)

	assert.Empty(t, analysis.Grouped)
	assert.Equal(t, 0, analysis.Stats.TotalResults)
	assert.Nil(t, analysis.Stats.Fastest)

	_, err := json.Marshal(analysis)
	assert.NoError(t, err)
}
