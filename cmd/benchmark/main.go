package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/config"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/review"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/textgen"
)

type result struct {
	Sample    string
	Chars     int
	Provider  string
	Run       int
	ElapsedMs int64
	OutChars  int
	Error     string
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	provider := flag.String("provider", "", "override the text-generation provider")
	model := flag.String("model", "", "override the model")
	useMock := flag.Bool("mock", false, "benchmark the mock generator")
	runs := flag.Int("runs", 3, "Number of runs per sample")
	quality := flag.Bool("quality", false, "Quality mode: show prompt/output for one sample per sentiment (1 run, no timing table)")
	jsonOut := flag.String("json", "", "Write results to JSON file (e.g. results.json)")
	warmup := flag.Bool("warmup", false, "Run one warmup request per sample before measuring")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *provider != "" {
		cfg.TextGen.Provider = *provider
	}
	if *model != "" {
		cfg.TextGen.Model = *model
	}

	catalog := review.DefaultCatalog()
	if cfg.Reviews.PromptsPath != "" {
		if catalog, err = review.LoadCatalog(cfg.Reviews.PromptsPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading prompts: %v\n", err)
			os.Exit(1)
		}
	}

	// No retries: the benchmark measures single attempts.
	gen, err := textgen.Build(textgen.Options{
		Provider:  cfg.TextGen.Provider,
		Model:     cfg.TextGen.Model,
		APIKey:    cfg.TextGen.APIKey,
		BaseURL:   cfg.TextGen.BaseURL,
		MaxTokens: cfg.TextGen.MaxTokens,
		Timeout:   cfg.TextGen.Timeout,
	}, *useMock || cfg.TextGen.Mock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building generator: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	company := cfg.Reviews.CompanyName
	system := review.SystemPrompt(company)

	if *quality {
		if runQualityMode(ctx, gen, system, QualitySamples(catalog, company)) > 0 {
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Benchmarking provider %s (%d runs per sample", gen.Name(), *runs)
	if *warmup {
		fmt.Print(", warmup enabled")
	}
	fmt.Println(")")

	var results []result
	var failures int
	for _, sample := range Samples(catalog, company) {
		if *warmup {
			fmt.Printf("  Warming up %s...", sample.Name)
			w := benchmark(ctx, gen, system, sample, 0)
			if w.Error != "" {
				fmt.Printf(" FAILED (%s)\n", w.Error)
			} else {
				fmt.Printf(" %dms (discarded)\n", w.ElapsedMs)
			}
		}
		for run := 1; run <= *runs; run++ {
			fmt.Printf("  Running %s (run %d/%d)...", sample.Name, run, *runs)
			r := benchmark(ctx, gen, system, sample, run)
			results = append(results, r)
			if r.Error != "" {
				fmt.Printf(" FAILED (%s)\n", r.Error)
				failures++
			} else {
				fmt.Printf(" %dms\n", r.ElapsedMs)
			}
		}
	}

	fmt.Println()
	printTable(results)
	printSummary(results)

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, results, gen.Name(), cfg.TextGen.Model); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
		} else {
			fmt.Printf("\nResults written to %s\n", *jsonOut)
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func benchmark(ctx context.Context, gen textgen.Generator, system string, sample Sample, run int) result {
	r := result{Sample: sample.Name, Chars: len(sample.Prompt), Provider: gen.Name(), Run: run}

	start := time.Now()
	text, err := gen.Generate(ctx, system, sample.Prompt)
	r.ElapsedMs = time.Since(start).Milliseconds()
	if err != nil {
		r.Error = err.Error()
		return r
	}
	text = strings.TrimSpace(text)
	if text == "" {
		r.Error = textgen.ErrEmptyResponse.Error()
		return r
	}
	r.OutChars = len(text)
	return r
}

func printTable(results []result) {
	fmt.Println("| Sample | Chars | Provider | Run | Elapsed (ms) | Out Chars | Ratio |")
	fmt.Println("|--------|-------|----------|-----|--------------|-----------|-------|")
	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("| %-28s | %5d | %-10s | %d | %12s | %9s | %5s |\n",
				r.Sample, r.Chars, r.Provider, r.Run, "FAIL", "-", "-")
			continue
		}
		ratio := float64(r.OutChars) / float64(r.Chars)
		fmt.Printf("| %-28s | %5d | %-10s | %d | %12d | %9d | %5.2f |\n",
			r.Sample, r.Chars, r.Provider, r.Run, r.ElapsedMs, r.OutChars, ratio)
	}
}

// runQualityMode prints each prompt with its review and returns the failure count.
func runQualityMode(ctx context.Context, gen textgen.Generator, system string, samples []Sample) int {
	fmt.Printf("Quality test using provider: %s\n", gen.Name())
	fmt.Println(strings.Repeat("=", 72))

	var failures int
	for i, sample := range samples {
		fmt.Printf("\n--- %d/%d: %s ---\n", i+1, len(samples), sample.Name)
		fmt.Printf("IN:  %s\n", sample.Prompt)

		start := time.Now()
		text, err := gen.Generate(ctx, system, sample.Prompt)
		if err != nil {
			fmt.Printf("ERR: %s\n", err)
			failures++
			continue
		}
		text = strings.TrimSpace(text)
		fmt.Printf("OUT: %s\n", text)
		fmt.Printf("     [%dms, %d->%d chars]\n", time.Since(start).Milliseconds(), len(sample.Prompt), len(text))
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 72))
	fmt.Printf("Done: %d/%d passed\n", len(samples)-failures, len(samples))
	return failures
}

func printSummary(results []result) {
	var ok []result
	for _, r := range results {
		if r.Error == "" {
			ok = append(ok, r)
		}
	}

	failed := len(results) - len(ok)

	if len(ok) == 0 {
		fmt.Printf("\nSummary: all %d runs failed\n", len(results))
		return
	}

	var totalElapsed int64
	var totalOut int
	minR, maxR := ok[0], ok[0]
	for _, r := range ok {
		totalElapsed += r.ElapsedMs
		totalOut += r.OutChars
		if r.ElapsedMs < minR.ElapsedMs {
			minR = r
		}
		if r.ElapsedMs > maxR.ElapsedMs {
			maxR = r
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("- Avg elapsed: %dms\n", totalElapsed/int64(len(ok)))
	fmt.Printf("- Avg review length: %d chars\n", totalOut/len(ok))
	fmt.Printf("- Min elapsed: %dms (%s)\n", minR.ElapsedMs, minR.Sample)
	fmt.Printf("- Max elapsed: %dms (%s)\n", maxR.ElapsedMs, maxR.Sample)
	fmt.Printf("- Total runs: %d (%d ok, %d failed)\n", len(results), len(ok), failed)
}

type jsonReport struct {
	Timestamp string   `json:"timestamp"`
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	Results   []result `json:"results"`
}

func writeJSON(path string, results []result, provider, model string) error {
	report := jsonReport{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Provider:  provider,
		Model:     model,
		Results:   results,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
