package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/kailas-cloud/investmatch/internal/domain/metadata"
	"github.com/kailas-cloud/investmatch/internal/domain/recommendation"
	"github.com/kailas-cloud/investmatch/internal/domain/startup"
)

// startupFile is the on-disk startup profile.
type startupFile struct {
	StartupID    string  `json:"startup_id"`
	Problem      string  `json:"problem_statement"`
	Solution     string  `json:"solution_description"`
	IndustryTags any     `json:"industry_tags"`
	Stage        *string `json:"stage"`
	FundingAsk   *int64  `json:"funding_ask_egp"`
	K            any     `json:"k"`

	tags []string
}

func runRecommend(ctx context.Context, g *globalFlags, file string, out io.Writer) error {
	sf, err := readStartupFile(file)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	profile := startup.New(sf.Problem, sf.Solution, sf.tags, sf.Stage, sf.FundingAsk, startup.NormalizeK(sf.K))
	results, err := a.recommend.Recommend(ctx, profile)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	printRecommendations(out, sf.StartupID, results)
	return nil
}

func readStartupFile(path string) (startupFile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return startupFile{}, fmt.Errorf("read %s: %w", path, err)
	}

	var sf startupFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&sf); err != nil {
		return startupFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if sf.tags, err = metadata.ListFromValue(sf.IndustryTags); err != nil {
		return startupFile{}, fmt.Errorf("parse %s: industry_tags: %w", path, err)
	}
	return sf, nil
}

func printRecommendations(out io.Writer, startupID string, results []recommendation.Result) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	title := "Recommendations"
	if startupID != "" {
		title += " for " + startupID
	}
	fmt.Fprintln(out, cyan(title))

	if len(results) == 0 {
		fmt.Fprintln(out, faint("  no matching investors"))
		return
	}
	for i, r := range results {
		fmt.Fprintf(out, "%2d. %s  score %s\n", i+1, r.InvestorID(), green(fmt.Sprintf("%.4f", r.Score())))
		if len(r.Reasons()) > 0 {
			fmt.Fprintf(out, "    %s\n", faint(strings.Join(r.Reasons(), " | ")))
		}
	}
}
