package review

// Sentiment is the bucket a rating falls into.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

// Sentiments lists the buckets in catalog order.
var Sentiments = []Sentiment{Positive, Neutral, Negative}

// SentimentOf maps a rating to its bucket: above 3 is positive, below 3
// negative, exactly 3 neutral. Nothing else may override it.
func SentimentOf(rating int) Sentiment {
	switch {
	case rating > 3:
		return Positive
	case rating < 3:
		return Negative
	default:
		return Neutral
	}
}

func (s Sentiment) Valid() bool {
	return s == Positive || s == Neutral || s == Negative
}
