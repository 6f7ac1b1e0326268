// Package review samples synthetic customer reviews.
//
// Generation happens in two phases. Plan draws every random value (date,
// rating, prompt, customer) from an explicit stream and touches nothing
// else; Executor then asks a text generator for the prose. Keeping the
// phases apart means retries, latency or parallel calls can never shift
// the random sequence.
package review

import (
	"math"
	"time"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/sampling"
)

// DefaultMeanRating applies to years missing from RatingMeans.
const DefaultMeanRating = 3.0

const (
	minRating = 1
	maxRating = 5
)

// Config describes one generation run.
type Config struct {
	CompanyName  string
	NumCustomers int
	NumReviews   int
	StartDate    time.Time
	EndDate      time.Time
	RatingMeans  map[int]float64
	StdDev       float64
	// Prompts defaults to DefaultCatalog when nil.
	Prompts Catalog
}

// DefaultRatingMeans is the improving 2020–2024 trend.
func DefaultRatingMeans() map[int]float64 {
	return map[int]float64{2020: 1.5, 2021: 1.9, 2022: 2.4, 2023: 3.1, 2024: 4.2}
}

func (c Config) catalog() Catalog {
	if c.Prompts == nil {
		return DefaultCatalog()
	}
	return c.Prompts
}

// Validate rejects configurations that cannot be sampled.
func (c Config) Validate() error {
	if c.CompanyName == "" {
		return apperr.Invalid("company_name", "must not be empty")
	}
	if c.NumReviews < 0 {
		return apperr.Invalid("num_reviews", "must not be negative, got %d", c.NumReviews)
	}
	if c.NumCustomers <= 0 {
		return apperr.Invalid("num_customers", "must be positive, got %d", c.NumCustomers)
	}
	if math.IsNaN(c.StdDev) || c.StdDev <= 0 {
		return apperr.Invalid("std_dev", "must be positive, got %v", c.StdDev)
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return apperr.Invalid("date_range", "start and end dates are required")
	}
	if day(c.EndDate).Before(day(c.StartDate)) {
		return apperr.Invalid("date_range", "end %s is before start %s",
			c.EndDate.Format(time.DateOnly), c.StartDate.Format(time.DateOnly))
	}
	catalog := c.catalog()
	for _, s := range Sentiments {
		if len(catalog[s]) == 0 {
			return apperr.Invalid("prompts", "no templates for %s sentiment", s)
		}
	}
	return nil
}

// MeanFor returns the target mean rating for year.
func (c Config) MeanFor(year int) float64 {
	if m, ok := c.RatingMeans[year]; ok {
		return m
	}
	return DefaultMeanRating
}

// Request is everything needed to produce one review except its text.
type Request struct {
	ReviewID     int
	CustomerID   int
	Date         time.Time
	Year         int
	Rating       int
	Sentiment    Sentiment
	Topic        string
	Prompt       string
	SystemPrompt string
	CompanyName  string
}

// SystemPrompt binds the model's persona to the company.
func SystemPrompt(company string) string {
	return "You are a customer of " + company + ". Only respond with the review."
}

// Plan draws NumReviews requests from s. Within a review the draws happen
// in a fixed order: date, rating, prompt, customer.
func Plan(cfg Config, s *sampling.Stream) ([]Request, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog := cfg.catalog()
	system := SystemPrompt(cfg.CompanyName)
	start := day(cfg.StartDate)
	spanDays := int(day(cfg.EndDate).Sub(start).Hours() / 24)

	plan := make([]Request, 0, cfg.NumReviews)
	for i := 0; i < cfg.NumReviews; i++ {
		date := start.AddDate(0, 0, s.IntRange(0, spanDays))
		year := date.Year()
		rating := SampleRating(s, cfg.MeanFor(year), cfg.StdDev)
		sentiment := SentimentOf(rating)
		tmpl := sampling.Choice(s, catalog[sentiment])
		customer := s.IntRange(1, cfg.NumCustomers)

		plan = append(plan, Request{
			ReviewID:     i + 1,
			CustomerID:   customer,
			Date:         date,
			Year:         year,
			Rating:       rating,
			Sentiment:    sentiment,
			Topic:        tmpl.Topic,
			Prompt:       tmpl.Render(cfg.CompanyName),
			SystemPrompt: system,
			CompanyName:  cfg.CompanyName,
		})
	}
	return plan, nil
}

// SampleRating draws from N(mean, sd²), rounds half to even, then clamps
// the rounded value into [1, 5].
func SampleRating(s *sampling.Stream, mean, sd float64) int {
	x := sampling.Round(s.Normal(mean, sd))
	return int(sampling.Clip(x, minRating, maxRating))
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
