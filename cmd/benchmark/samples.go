package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/review"
)

// Sample is one prompt sent to the provider under test.
type Sample struct {
	Name      string
	Sentiment review.Sentiment
	Prompt    string
}

// Samples renders every catalog template for company, ordered by
// sentiment then topic so runs are comparable.
func Samples(c review.Catalog, company string) []Sample {
	var out []Sample
	for _, s := range review.Sentiments {
		for _, tpl := range c[s] {
			out = append(out, Sample{
				Name:      fmt.Sprintf("%s/%s", s, strings.ToLower(strings.ReplaceAll(tpl.Topic, " ", "-"))),
				Sentiment: s,
				Prompt:    tpl.Render(company),
			})
		}
	}
	slices.SortStableFunc(out, func(a, b Sample) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// QualitySamples picks the first template of each sentiment.
func QualitySamples(c review.Catalog, company string) []Sample {
	var out []Sample
	seen := map[review.Sentiment]bool{}
	for _, s := range Samples(c, company) {
		if !seen[s.Sentiment] {
			seen[s.Sentiment] = true
			out = append(out, s)
		}
	}
	return out
}
