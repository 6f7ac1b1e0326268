// Package dataset joins generated reviews to customers and reads the
// merged table the dashboard aggregates.
package dataset

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/demographic"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/review"
)

// Row is one review joined with the customer who wrote it.
type Row struct {
	ReviewID   int
	CustomerID int
	ReviewDate time.Time
	ReviewYear int
	Rating     int
	Sentiment  string
	Topic      string
	ReviewText string
	PlanType   string
	Age        int
	AgeGroup   string
	Gender     string
	State      string
	Region     string
}

// Column names of the merged table.
const (
	ColReviewID   = "Review_ID"
	ColCustomerID = "Customer_ID_Reviews"
	ColReviewDate = "Review_Date"
	ColReviewYear = "Review_Year"
	ColRating     = "Rating"
	ColSentiment  = "Sentiment"
	ColTopic      = "Topic"
	ColReviewText = "Review_Text"
	ColPlanType   = "Plan_Type"
	ColAge        = "Age"
	ColAgeGroup   = "Age_Group"
	ColGender     = "Gender"
	ColState      = "State"
	ColRegion     = "Region"
)

// Columns is the merged table header in export order.
var Columns = []string{
	ColReviewID, ColCustomerID, ColReviewDate, ColReviewYear, ColRating,
	ColSentiment, ColTopic, ColReviewText, ColPlanType, ColAge, ColAgeGroup,
	ColGender, ColState, ColRegion,
}

// AgeGroup buckets an age into ten-year bands from 25 up to 75+.
func AgeGroup(age int) string {
	switch {
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	case age < 65:
		return "55-64"
	case age < 75:
		return "65-74"
	default:
		return "75+"
	}
}

// Merge inner-joins reviews to customers on customer id, keeping review order.
func Merge(customers []demographic.Customer, reviews []review.Review) ([]Row, error) {
	byID := lo.KeyBy(customers, func(c demographic.Customer) int { return c.ID })

	rows := make([]Row, 0, len(reviews))
	for _, r := range reviews {
		c, ok := byID[r.CustomerID]
		if !ok {
			return nil, &apperr.DataIntegrityError{
				Reason: fmt.Sprintf("review %d references unknown customer %d", r.ID, r.CustomerID),
			}
		}
		rows = append(rows, Row{
			ReviewID:   r.ID,
			CustomerID: r.CustomerID,
			ReviewDate: r.Date,
			ReviewYear: r.Year,
			Rating:     r.Rating,
			Sentiment:  string(r.Sentiment),
			Topic:      r.Topic,
			ReviewText: r.Text,
			PlanType:   c.PlanType,
			Age:        c.Age,
			AgeGroup:   AgeGroup(c.Age),
			Gender:     c.Gender,
			State:      c.State,
			Region:     c.Region,
		})
	}
	return rows, nil
}
