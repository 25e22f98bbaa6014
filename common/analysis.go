package common

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// Document is one result as a producer printed it together with its decoded
// form. It marshals back to the source document untouched.
type Document struct {
	Result
	Source map[string]any
}

func (doc Document) MarshalJSON() ([]byte, error) {
	if doc.Source == nil {
		return json.Marshal(doc.Result)
	}

	return json.Marshal(doc.Source)
}

// metric returns value, or +Inf when the producer left key out of its
// document so that the result ranks last.
func (doc Document) metric(key string, value float64) float64 {
	if doc.Source == nil {
		return value
	}

	if v, ok := doc.Source[key]; !ok || v == nil {
		return math.Inf(1)
	}

	return value
}

// DecodeDocuments converts loosely typed JSON documents, as printed by
// benchmark programs written in any language. Missing identification fields
// decode as Unknown/standard/single; the source documents are kept as is.
func DecodeDocuments(raw []map[string]any) ([]Document, error) {
	docs := make([]Document, 0, len(raw))

	for i, source := range raw {
		result := Result{
			Language: "Unknown",
			Variant:  "standard",
			Mode:     ModeSingle,
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &result,
		})
		if err != nil {
			return nil, err
		}

		if err = decoder.Decode(source); err != nil {
			return nil, fmt.Errorf("result at index %d: %w", i, err)
		}

		docs = append(docs, Document{Result: result, Source: source})
	}

	return docs, nil
}

type Rankings struct {
	Time   []Document `json:"time"`
	Error  []Document `json:"error"`
	Memory []Document `json:"memory"`
}

type Stats struct {
	TotalResults        int       `json:"total_results"`
	Languages           int       `json:"languages"`
	Fastest             *Document `json:"fastest"`
	MostAccurate        *Document `json:"most_accurate"`
	MostEfficientMemory *Document `json:"most_efficient_memory"`
}

type Analysis struct {
	Grouped  map[string][]Document `json:"grouped"`
	Rankings Rankings              `json:"rankings"`
	Stats    Stats                 `json:"stats"`
}

func GroupKey(r Result) string {
	return fmt.Sprintf("%s_%s_%s", r.Language, r.Variant, r.Mode)
}

func rankBy(docs []Document, metric func(Document) float64) []Document {
	ranked := make([]Document, len(docs))
	copy(ranked, docs)

	sort.SliceStable(ranked, func(i, j int) bool {
		return metric(ranked[i]) < metric(ranked[j])
	})

	return ranked
}

func first(docs []Document) *Document {
	if len(docs) == 0 {
		return nil
	}

	doc := docs[0]
	return &doc
}

func Analyze(docs []Document) Analysis {
	analysis := Analysis{
		Grouped: make(map[string][]Document),
	}

	languages := make(map[string]struct{})
	for _, doc := range docs {
		key := GroupKey(doc.Result)
		analysis.Grouped[key] = append(analysis.Grouped[key], doc)
		languages[doc.Language] = struct{}{}
	}

	analysis.Rankings = Rankings{
		Time:   rankBy(docs, func(doc Document) float64 { return doc.metric("time_ms", doc.TimeMS) }),
		Error:  rankBy(docs, func(doc Document) float64 { return doc.metric("error", doc.Error) }),
		Memory: rankBy(docs, func(doc Document) float64 { return doc.metric("memory_mb", doc.MemoryMB) }),
	}

	analysis.Stats = Stats{
		TotalResults:        len(docs),
		Languages:           len(languages),
		Fastest:             first(analysis.Rankings.Time),
		MostAccurate:        first(analysis.Rankings.Error),
		MostEfficientMemory: first(analysis.Rankings.Memory),
	}

	return analysis
}
