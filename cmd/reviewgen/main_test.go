package main

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/config"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/dataset"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/metrics"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/review"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/sampling"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Customers.Count = 40
	cfg.Reviews.Count = 60
	cfg.Reviews.Concurrency = 4
	cfg.TextGen.Mock = true
	cfg.Output.Dir = t.TempDir()
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunWritesAllTables(t *testing.T) {
	cfg := testConfig(t)
	if err := run(t.Context(), cfg, quietLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"customers.csv", "reviews.csv", "merged.csv"} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	rows, err := dataset.Load(filepath.Join(cfg.Output.Dir, "merged.csv"))
	if err != nil {
		t.Fatalf("load merged: %v", err)
	}
	if len(rows) != 60 {
		t.Errorf("merged rows: got %d, want 60", len(rows))
	}
}

func TestRunIsDeterministic(t *testing.T) {
	read := func() string {
		cfg := testConfig(t)
		if err := run(t.Context(), cfg, quietLogger()); err != nil {
			t.Fatalf("run: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "merged.csv"))
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
	if read() != read() {
		t.Error("same seed produced different merged tables")
	}
}

func TestRunXLSXWithoutMerge(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Format = "xlsx"
	cfg.Output.Merged = false
	if err := run(t.Context(), cfg, quietLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "reviews.xlsx")); err != nil {
		t.Errorf("reviews.xlsx: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "merged.xlsx")); err == nil {
		t.Error("merged table written although disabled")
	}
}

func TestRunRejectsMissingPrompts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reviews.PromptsPath = filepath.Join(t.TempDir(), "absent.yaml")
	if err := run(t.Context(), cfg, quietLogger()); err == nil {
		t.Error("expected error for missing prompt catalog")
	}
}

func readReviews(t *testing.T, dir string) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "reviews.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read reviews.csv: %v", err)
	}
	return records[1:]
}

func TestRunReviewsFollowStandalonePlan(t *testing.T) {
	cfg := testConfig(t)
	if err := run(t.Context(), cfg, quietLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}

	rcfg, err := reviewConfig(cfg, cfg.Customers.Count)
	if err != nil {
		t.Fatal(err)
	}
	plan, err := review.Plan(rcfg, sampling.New(cfg.Seed))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	got := readReviews(t, cfg.Output.Dir)
	if len(got) != len(plan) {
		t.Fatalf("reviews: got %d, want %d", len(got), len(plan))
	}
	// Columns: Review_ID, Customer_ID, Review_Date, Rating, Review_Text, Sentiment, Prompt, Company_Name.
	for i, req := range plan {
		rec := got[i]
		want := []string{
			strconv.Itoa(req.CustomerID),
			req.Date.Format(time.DateOnly),
			strconv.Itoa(req.Rating),
		}
		if rec[1] != want[0] || rec[2] != want[1] || rec[3] != want[2] || rec[6] != req.Prompt {
			t.Fatalf("review %d: got %v, want customer/date/rating %v prompt %q", i+1, rec, want, req.Prompt)
		}
	}
}

func TestRunReviewsIndependentOfCustomerCount(t *testing.T) {
	first := func(customers int) []string {
		cfg := testConfig(t)
		cfg.Customers.Count = customers
		if err := run(t.Context(), cfg, quietLogger()); err != nil {
			t.Fatalf("run: %v", err)
		}
		return readReviews(t, cfg.Output.Dir)[0]
	}
	// The first review's date, rating and prompt are drawn before any
	// customer id, so they only depend on the seed.
	a, b := first(40), first(41)
	if a[2] != b[2] || a[3] != b[3] || a[6] != b[6] {
		t.Errorf("first review changed with customer count: %v vs %v", a, b)
	}
}

func TestRunValidatesBeforeSampling(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero std dev", func(c *config.Config) { c.Reviews.StdDev = 0 }},
		{"negative reviews", func(c *config.Config) { c.Reviews.Count = -1 }},
		{"inverted dates", func(c *config.Config) {
			c.Reviews.StartDate, c.Reviews.EndDate = c.Reviews.EndDate, c.Reviews.StartDate
		}},
		{"no customers", func(c *config.Config) { c.Customers.Count = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			before := testutil.ToFloat64(metrics.CustomersGenerated)

			err := run(t.Context(), cfg, quietLogger())
			if !apperr.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if after := testutil.ToFloat64(metrics.CustomersGenerated); after != before {
				t.Errorf("customers counted before validation: %v -> %v", before, after)
			}
			if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "customers.csv")); err == nil {
				t.Error("customers.csv written despite invalid config")
			}
		})
	}
}
