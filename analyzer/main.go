package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/xor-shift/pibench/common"
)

func analyzeFile(in, out string) (common.Analysis, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return common.Analysis{}, err
	}

	var raw []map[string]any
	if err = json.Unmarshal(data, &raw); err != nil {
		return common.Analysis{}, fmt.Errorf("parsing %s: %w", in, err)
	}

	docs, err := common.DecodeDocuments(raw)
	if err != nil {
		return common.Analysis{}, fmt.Errorf("decoding %s: %w", in, err)
	}

	analysis := common.Analyze(docs)

	jsonData, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return common.Analysis{}, err
	}

	return analysis, os.WriteFile(out, jsonData, 0o644)
}

func main() {
	args := struct {
		In  string `arg:"" optional:"" name:"results" default:"results/results.json" help:"JSON array of benchmark results"`
		Out string `name:"out" short:"o" default:"results/analysis.json" help:"Where to write the analysis"`
	}{}

	_ = kong.Parse(&args, kong.Description("Group and rank benchmark results."))

	analysis, err := analyzeFile(args.In, args.Out)
	if err != nil {
		log.Fatalf("analysis failed: %s", err)
	}

	if fastest := analysis.Stats.Fastest; fastest != nil {
		log.Printf("fastest: %s (%.2fms)", common.GroupKey(fastest.Result), fastest.TimeMS)
	}

	log.Printf("Analysis of %d results saved to %s", analysis.Stats.TotalResults, args.Out)
}
