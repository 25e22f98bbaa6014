package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/template"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/xor-shift/pibench/common"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading dotenv failed: %s", err)
	}
}

var columns = []string{
	"Run ID",
	"Insert Time",
	"Language",
	"Variant",
	"Version",
	"Mode",
	"Iterations",
	"Pi Estimate",
	"Error",
	"Time (ms)",
	"Memory (MB)",
	"CPU Cores",
	"Threads",
	"OS",
	"Compiler",
	"Seed",
	"Partition",
}

func writeCSV(w io.Writer, rows []common.StoredResult, exportColumnTitles bool) error {
	csvWriter := csv.NewWriter(w)

	if exportColumnTitles {
		if err := csvWriter.Write(columns); err != nil {
			return err
		}
	}

	for _, row := range rows {
		rowStrings := []string{
			row.RunID,
			strconv.FormatInt(row.InsertTime.Unix(), 10),
			row.Language,
			row.Variant,
			row.Version,
			row.Mode,
			strconv.FormatUint(row.Iterations, 10),
			strconv.FormatFloat(row.PiEstimate, 'f', -1, 64),
			strconv.FormatFloat(row.Error, 'g', -1, 64),
			fmt.Sprintf("%f", row.TimeMS),
			fmt.Sprintf("%f", row.MemoryMB),
			strconv.Itoa(row.CPUCores),
			strconv.Itoa(row.ThreadCount),
			row.OS,
			row.Compiler,
			strconv.FormatUint(row.Seed, 10),
			row.Partition,
		}

		if err := csvWriter.Write(rowStrings); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func writeJSON(w io.Writer, rows []common.StoredResult) error {
	results := make([]common.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.Result)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func outFileName(nameTemplate string, language, mode, format string) (string, error) {
	outFileNameTemplate, err := template.New("").Parse(nameTemplate)
	if err != nil {
		return "", fmt.Errorf("creating the output filename template: %w", err)
	}

	templateArguments := struct {
		Language string
		Mode     string
		Format   string
	}{
		Language: language,
		Mode:     mode,
		Format:   format,
	}

	outFileNameBuf := bytes.Buffer{}
	if err = outFileNameTemplate.Execute(&outFileNameBuf, templateArguments); err != nil {
		return "", fmt.Errorf("executing the output filename template: %w", err)
	}

	return outFileNameBuf.String(), nil
}

func main() {
	args := struct {
		Language           string `name:"language" short:"l" help:"Only export runs of this language"`
		Mode               string `name:"mode" short:"m" help:"Only export runs of this mode (single or parallel)"`
		Limit              int    `name:"limit" short:"n" default:"0" help:"Export at most this many runs, 0 for all"`
		Out                string `name:"out" short:"o" default:"results{{if .Mode}}_{{.Mode}}{{end}}.{{.Format}}" help:"File to output to (templated)"`
		Format             string `name:"format" short:"f" enum:"csv,json" default:"csv" help:"Data format"`
		ExportColumnTitles bool   `name:"export_column_titles" negatable:"" default:"true" help:"(applicable only to CSV outputs) whether to include column titles for CSV exports"`
	}{}

	_ = kong.Parse(&args)

	store, err := common.OpenStore(common.DBConfigFromEnv())
	if err != nil {
		log.Fatalln(err)
	}

	rows, err := store.Results(context.Background(), common.Filter{
		Language: args.Language,
		Mode:     args.Mode,
		Limit:    args.Limit,
	})
	if err != nil {
		log.Fatalf("Failed to fetch results: %s", err)
	}

	_ = store.Close()

	fileName, err := outFileName(args.Out, args.Language, args.Mode, args.Format)
	if err != nil {
		log.Fatalln(err)
	}

	var outFile *os.File
	if outFile, err = os.Create(fileName); err != nil {
		log.Fatalf("error while creating the output file \"%s\": %s", fileName, err)
	}
	defer outFile.Close()

	switch args.Format {
	case "json":
		err = writeJSON(outFile, rows)
	default:
		err = writeCSV(outFile, rows, args.ExportColumnTitles)
	}

	if err != nil {
		log.Fatalf("error while writing \"%s\": %s", fileName, err)
	}

	log.Printf("exported %d runs to %s", len(rows), fileName)
}
