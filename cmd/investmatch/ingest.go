package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	dombatch "github.com/kailas-cloud/investmatch/internal/domain/batch"
)

func runIngest(ctx context.Context, g *globalFlags, file string, out io.Writer) error {
	records, err := readInvestorsFile(file)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	// The service caps each call, so large files go in chunks.
	size := a.cfg.Ingest.MaxBatchSize
	results := make([]dombatch.Result, 0, len(records))
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		results = append(results, a.ingest.Ingest(ctx, records[start:end])...)
	}

	return printIngestSummary(out, results)
}

// readInvestorsFile accepts a JSON array or an object holding an "investors" array.
func readInvestorsFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if obj, ok := v.(map[string]any); ok {
		v = obj["investors"]
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an array of investors or {\"investors\": [...]}", path)
	}

	records := make([]map[string]any, len(list))
	for i, item := range list {
		records[i], _ = item.(map[string]any)
	}
	return records, nil
}

func printIngestSummary(out io.Writer, results []dombatch.Result) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(out, "  %s %s\n", green("✓"), r.ID())
		} else {
			fmt.Fprintf(out, "  %s %s: %v\n", red("✗"), r.ID(), r.Err())
		}
	}

	ok, failed := dombatch.Summarize(results)
	fmt.Fprintf(out, "%s %d stored, %d failed\n", bold("Ingestion:"), ok, failed)
	if failed > 0 {
		return errors.New("some investors were not stored")
	}
	return nil
}
