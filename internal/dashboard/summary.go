package dashboard

import (
	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/dataset"
)

// Summary is every chart payload for one filter selection.
type Summary struct {
	Filter      Filter           `json:"filter"`
	Rows        int              `json:"rows"`
	Yearly      YearlySummary    `json:"yearly"`
	Sentiment   []SentimentShare `json:"sentiment"`
	Topics      TopicSummary     `json:"topics"`
	Bubbles     []TopicBubble    `json:"bubbles"`
	AgeGender   Heatmap          `json:"age_gender"`
	RegionPlan  Heatmap          `json:"region_plan"`
	RegionTopic Heatmap          `json:"region_topic"`
	States      []StateRating    `json:"states"`
}

// Select validates f and applies it. Nothing to aggregate, before or
// after filtering, is a DataIntegrityError.
func Select(rows []dataset.Row, f Filter) ([]dataset.Row, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &apperr.DataIntegrityError{Reason: "dataset is empty"}
	}
	filtered := f.Apply(rows)
	if len(filtered) == 0 {
		return nil, &apperr.DataIntegrityError{Reason: "no reviews match the selected filters"}
	}
	return filtered, nil
}

// Build selects rows with f and computes every aggregate.
func Build(rows []dataset.Row, f Filter) (Summary, error) {
	filtered, err := Select(rows, f)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Filter:    f,
		Rows:      len(filtered),
		Yearly:    YearlyRatings(filtered),
		Sentiment: SentimentShares(filtered),
		Topics:    TopicMetrics(filtered),
		Bubbles:   TopicBubbles(filtered),
		States:    StateRatings(filtered),
	}
	// The dimension names are fixed, so Pivot cannot fail here.
	s.AgeGender, _ = Pivot(filtered, dataset.ColAgeGroup, dataset.ColGender)
	s.RegionPlan, _ = Pivot(filtered, dataset.ColRegion, dataset.ColPlanType)
	s.RegionTopic, _ = Pivot(filtered, dataset.ColRegion, dataset.ColTopic)
	return s, nil
}
