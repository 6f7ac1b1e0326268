// Package dashboard filters the merged review table and computes the
// aggregates each chart renders.
package dashboard

import (
	"slices"

	"github.com/samber/lo"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/dataset"
)

// Filter narrows rows. Year bounds are inclusive and zero means open;
// an empty selection places no constraint on that dimension.
type Filter struct {
	YearFrom   int      `json:"year_from,omitempty"`
	YearTo     int      `json:"year_to,omitempty"`
	PlanTypes  []string `json:"plan_types,omitempty"`
	Genders    []string `json:"genders,omitempty"`
	AgeGroups  []string `json:"age_groups,omitempty"`
	Regions    []string `json:"regions,omitempty"`
	Sentiments []string `json:"sentiments,omitempty"`
}

func (f Filter) Validate() error {
	if f.YearFrom != 0 && f.YearTo != 0 && f.YearFrom > f.YearTo {
		return apperr.Invalid("year_range", "year_from %d is after year_to %d", f.YearFrom, f.YearTo)
	}
	return nil
}

func selected(values []string, v string) bool {
	return len(values) == 0 || slices.Contains(values, v)
}

// Match reports whether r passes every constraint.
func (f Filter) Match(r dataset.Row) bool {
	if f.YearFrom != 0 && r.ReviewYear < f.YearFrom {
		return false
	}
	if f.YearTo != 0 && r.ReviewYear > f.YearTo {
		return false
	}
	return selected(f.PlanTypes, r.PlanType) &&
		selected(f.Genders, r.Gender) &&
		selected(f.AgeGroups, r.AgeGroup) &&
		selected(f.Regions, r.Region) &&
		selected(f.Sentiments, r.Sentiment)
}

func (f Filter) Apply(rows []dataset.Row) []dataset.Row {
	return lo.Filter(rows, func(r dataset.Row, _ int) bool { return f.Match(r) })
}

// FilterOptions lists the values each filter control can offer.
type FilterOptions struct {
	MinYear    int      `json:"min_year"`
	MaxYear    int      `json:"max_year"`
	PlanTypes  []string `json:"plan_types"`
	Genders    []string `json:"genders"`
	AgeGroups  []string `json:"age_groups"`
	Regions    []string `json:"regions"`
	Sentiments []string `json:"sentiments"`
	Topics     []string `json:"topics"`
}

func Options(rows []dataset.Row) FilterOptions {
	if len(rows) == 0 {
		return FilterOptions{}
	}
	years := lo.Map(rows, func(r dataset.Row, _ int) int { return r.ReviewYear })
	return FilterOptions{
		MinYear:    lo.Min(years),
		MaxYear:    lo.Max(years),
		PlanTypes:  distinct(rows, func(r dataset.Row) string { return r.PlanType }),
		Genders:    distinct(rows, func(r dataset.Row) string { return r.Gender }),
		AgeGroups:  distinct(rows, func(r dataset.Row) string { return r.AgeGroup }),
		Regions:    distinct(rows, func(r dataset.Row) string { return r.Region }),
		Sentiments: distinct(rows, func(r dataset.Row) string { return r.Sentiment }),
		Topics:     distinct(rows, func(r dataset.Row) string { return r.Topic }),
	}
}

// distinct returns the sorted non-empty values of key.
func distinct(rows []dataset.Row, key func(dataset.Row) string) []string {
	vals := lo.Uniq(lo.FilterMap(rows, func(r dataset.Row, _ int) (string, bool) {
		v := key(r)
		return v, v != ""
	}))
	slices.Sort(vals)
	return vals
}
