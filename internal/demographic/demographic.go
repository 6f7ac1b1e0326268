// Package demographic fabricates synthetic health-plan customers.
package demographic

import (
	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/sampling"
)

const (
	PlanIndividual = "Individual and Family"
	PlanMedicare   = "Medicare"
)

// Customer is one synthetic plan member.
type Customer struct {
	ID       int
	PlanType string
	Age      int
	Gender   string
	State    string
	Region   string
}

var (
	planTypes   = []string{PlanIndividual, PlanMedicare}
	planWeights = []float64{0.7, 0.3}

	genders       = []string{"Female", "Male", "Other"}
	genderWeights = []float64{0.55, 0.40, 0.05}

	serviceStates = []string{
		"Arizona", "California", "Delaware", "Florida", "Georgia", "Illinois",
		"Indiana", "Kansas", "Maryland", "Missouri", "North Carolina", "New Jersey",
		"Nevada", "Ohio", "Texas", "Utah", "Virginia",
	}

	stateRegion = map[string]string{
		"Illinois": "North", "Indiana": "North", "Kansas": "North", "Ohio": "North",
		"Arizona": "West", "California": "West", "Nevada": "West", "Utah": "West",
		"Delaware": "East", "Maryland": "East", "New Jersey": "East", "Virginia": "East",
		"Florida": "South", "Georgia": "South", "Missouri": "South", "North Carolina": "South", "Texas": "South",
	}
)

// States returns the serviced states in their fixed order.
func States() []string {
	return append([]string(nil), serviceStates...)
}

// RegionOf maps a serviced state to its region.
func RegionOf(state string) (string, bool) {
	r, ok := stateRegion[state]
	return r, ok
}

// GenerateSeeded is Generate over a fresh stream seeded with seed.
func GenerateSeeded(n int, seed int64) ([]Customer, error) {
	return Generate(n, sampling.New(seed))
}

// Generate draws n customers from s. Fields are drawn column by column:
// every plan type first, then ages, genders and states.
func Generate(n int, s *sampling.Stream) ([]Customer, error) {
	if n <= 0 {
		return nil, apperr.Invalid("n_customers", "must be positive, got %d", n)
	}

	customers := make([]Customer, n)
	for i := range customers {
		customers[i].ID = i + 1
		customers[i].PlanType = planTypes[s.Categorical(planWeights)]
	}
	for i := range customers {
		customers[i].Age = sampleAge(s, customers[i].PlanType)
	}
	for i := range customers {
		customers[i].Gender = genders[s.Categorical(genderWeights)]
	}
	for i := range customers {
		state := sampling.Choice(s, serviceStates)
		customers[i].State = state
		customers[i].Region = stateRegion[state]
	}
	return customers, nil
}

// Individual members are centred on 40; Medicare ages are right-skewed
// above 60.
func sampleAge(s *sampling.Stream, plan string) int {
	var age float64
	if plan == PlanMedicare {
		age = sampling.Clip(s.Gamma(2, 5)+60, 65, 80)
	} else {
		age = sampling.Clip(s.Normal(40, 10), 25, 64)
	}
	return int(sampling.Round(age))
}
