package dashboard

import (
	"cmp"
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/dataset"
)

// Bubble thresholds on a topic's mean rating.
const (
	NegativeBelow = 2.5
	NeutralBelow  = 4.0
)

var sentimentColors = map[string]string{
	"negative": "red",
	"neutral":  "yellow",
	"positive": "green",
}

var bubbleColors = map[string]string{
	"Negative": "#87CEFA",
	"Neutral":  "#E6E6FA",
	"Positive": "#9370DB",
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func meanRating(rows []dataset.Row) float64 {
	return stat.Mean(lo.Map(rows, func(r dataset.Row, _ int) float64 { return float64(r.Rating) }), nil)
}

// groupSorted groups rows by key and returns the keys in ascending order.
func groupSorted[K cmp.Ordered](rows []dataset.Row, key func(dataset.Row) K) ([]K, map[K][]dataset.Row) {
	groups := lo.GroupBy(rows, key)
	keys := lo.Keys(groups)
	slices.Sort(keys)
	return keys, groups
}

type YearRating struct {
	Year int     `json:"year"`
	Mean float64 `json:"mean"`
}

// Indicator is the current-year KPI. Reference and RelativeDelta are nil
// when the prior year has no reviews.
type Indicator struct {
	Year          int      `json:"year"`
	Value         float64  `json:"value"`
	Reference     *float64 `json:"reference"`
	RelativeDelta *float64 `json:"relative_delta"`
}

type YearlySummary struct {
	Years     []YearRating `json:"years"`
	Indicator Indicator    `json:"indicator"`
}

// YearlyRatings returns the mean rating per year, ascending, and compares
// the latest year to the one before it.
func YearlyRatings(rows []dataset.Row) YearlySummary {
	years, groups := groupSorted(rows, func(r dataset.Row) int { return r.ReviewYear })
	out := YearlySummary{Years: make([]YearRating, 0, len(years))}
	for _, y := range years {
		out.Years = append(out.Years, YearRating{Year: y, Mean: meanRating(groups[y])})
	}
	if len(years) == 0 {
		return out
	}

	latest := out.Years[len(out.Years)-1]
	out.Indicator = Indicator{Year: latest.Year, Value: round2(latest.Mean)}
	if prior, ok := groups[latest.Year-1]; ok {
		ref := meanRating(prior)
		delta := (out.Indicator.Value - ref) / ref
		out.Indicator.Reference = &ref
		out.Indicator.RelativeDelta = &delta
	}
	return out
}

type SentimentShare struct {
	Sentiment string  `json:"sentiment"`
	Count     int     `json:"count"`
	Percent   float64 `json:"percent"`
	Color     string  `json:"color"`
}

// SentimentShares returns each sentiment's share of rows, largest first.
func SentimentShares(rows []dataset.Row) []SentimentShare {
	counts := lo.CountValuesBy(rows, func(r dataset.Row) string { return r.Sentiment })
	shares := make([]SentimentShare, 0, len(counts))
	for s, n := range counts {
		shares = append(shares, SentimentShare{
			Sentiment: s,
			Count:     n,
			Percent:   100 * float64(n) / float64(len(rows)),
			Color:     sentimentColors[s],
		})
	}
	slices.SortFunc(shares, func(a, b SentimentShare) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Sentiment, b.Sentiment)
	})
	return shares
}

type TopicRating struct {
	Topic string  `json:"topic"`
	Mean  float64 `json:"mean"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type TopicSummary struct {
	Highest     TopicRating `json:"highest"`
	Lowest      TopicRating `json:"lowest"`
	MostPopular TopicCount  `json:"most_popular"`
}

// TopicMetrics picks the best and worst rated topics and the most reviewed
// one. Ties go to the alphabetically first topic.
func TopicMetrics(rows []dataset.Row) TopicSummary {
	topics, groups := groupSorted(rows, func(r dataset.Row) string { return r.Topic })
	var out TopicSummary
	for i, t := range topics {
		m := meanRating(groups[t])
		n := len(groups[t])
		if i == 0 || m > out.Highest.Mean {
			out.Highest = TopicRating{Topic: t, Mean: m}
		}
		if i == 0 || m < out.Lowest.Mean {
			out.Lowest = TopicRating{Topic: t, Mean: m}
		}
		if i == 0 || n > out.MostPopular.Count {
			out.MostPopular = TopicCount{Topic: t, Count: n}
		}
	}
	return out
}

type TopicBubble struct {
	Topic    string  `json:"topic"`
	Mean     float64 `json:"mean"`
	Count    int     `json:"count"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
}

// BubbleCategory classifies a topic's mean rating.
func BubbleCategory(mean float64) string {
	switch {
	case mean < NegativeBelow:
		return "Negative"
	case mean < NeutralBelow:
		return "Neutral"
	default:
		return "Positive"
	}
}

// TopicBubbles returns mean and count per topic, most reviewed first.
func TopicBubbles(rows []dataset.Row) []TopicBubble {
	topics, groups := groupSorted(rows, func(r dataset.Row) string { return r.Topic })
	out := make([]TopicBubble, 0, len(topics))
	for _, t := range topics {
		m := meanRating(groups[t])
		cat := BubbleCategory(m)
		out = append(out, TopicBubble{Topic: t, Mean: m, Count: len(groups[t]), Category: cat, Color: bubbleColors[cat]})
	}
	slices.SortStableFunc(out, func(a, b TopicBubble) int { return cmp.Compare(b.Count, a.Count) })
	return out
}

// Dimensions a heatmap can pivot on, keyed by merged-table column name.
var dimensions = map[string]func(dataset.Row) string{
	dataset.ColAgeGroup:  func(r dataset.Row) string { return r.AgeGroup },
	dataset.ColGender:    func(r dataset.Row) string { return r.Gender },
	dataset.ColRegion:    func(r dataset.Row) string { return r.Region },
	dataset.ColPlanType:  func(r dataset.Row) string { return r.PlanType },
	dataset.ColTopic:     func(r dataset.Row) string { return r.Topic },
	dataset.ColState:     func(r dataset.Row) string { return r.State },
	dataset.ColSentiment: func(r dataset.Row) string { return r.Sentiment },
}

// Heatmap is a mean-rating matrix. A nil cell has no reviews.
type Heatmap struct {
	RowDim string       `json:"row_dim"`
	ColDim string       `json:"col_dim"`
	Rows   []string     `json:"rows"`
	Cols   []string     `json:"cols"`
	Values [][]*float64 `json:"values"`
}

// Pivot computes the mean rating for every (rowDim, colDim) pair.
func Pivot(rows []dataset.Row, rowDim, colDim string) (Heatmap, error) {
	rowKey, ok := dimensions[rowDim]
	if !ok {
		return Heatmap{}, apperr.Invalid("rows", "unknown dimension %q", rowDim)
	}
	colKey, ok := dimensions[colDim]
	if !ok {
		return Heatmap{}, apperr.Invalid("cols", "unknown dimension %q", colDim)
	}

	type cell struct{ r, c string }
	cells := lo.GroupBy(rows, func(r dataset.Row) cell { return cell{rowKey(r), colKey(r)} })

	h := Heatmap{
		RowDim: rowDim,
		ColDim: colDim,
		Rows:   distinct(rows, rowKey),
		Cols:   distinct(rows, colKey),
	}
	h.Values = make([][]*float64, len(h.Rows))
	for i, r := range h.Rows {
		h.Values[i] = make([]*float64, len(h.Cols))
		for j, c := range h.Cols {
			if group, ok := cells[cell{r, c}]; ok {
				m := meanRating(group)
				h.Values[i][j] = &m
			}
		}
	}
	return h, nil
}

type StateRating struct {
	State string  `json:"state"`
	Mean  float64 `json:"mean"`
}

// StateRatings ranks states by mean rating, rounded to two decimals.
func StateRatings(rows []dataset.Row) []StateRating {
	states, groups := groupSorted(rows, func(r dataset.Row) string { return r.State })
	out := make([]StateRating, 0, len(states))
	for _, s := range states {
		out = append(out, StateRating{State: s, Mean: round2(meanRating(groups[s]))})
	}
	slices.SortStableFunc(out, func(a, b StateRating) int { return cmp.Compare(b.Mean, a.Mean) })
	return out
}
