package demographic

import (
	"math"
	"reflect"
	"testing"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
)

func TestGenerateDeterministic(t *testing.T) {
	for _, seed := range []int64{0, 1, 42, -9} {
		a, err := GenerateSeeded(300, seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		b, err := GenerateSeeded(300, seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("seed %d: two runs differ", seed)
		}
	}
}

func TestGenerateInvalidCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := GenerateSeeded(n, 42)
		if !apperr.IsValidation(err) {
			t.Errorf("n=%d: got %v, want ValidationError", n, err)
		}
	}
}

func TestGenerateFieldRanges(t *testing.T) {
	customers, err := GenerateSeeded(2000, 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(customers) != 2000 {
		t.Fatalf("count: got %d, want 2000", len(customers))
	}

	for i, c := range customers {
		if c.ID != i+1 {
			t.Fatalf("customer %d: id %d", i, c.ID)
		}
		region, ok := RegionOf(c.State)
		if !ok {
			t.Fatalf("customer %d: unserviced state %q", c.ID, c.State)
		}
		if c.Region != region {
			t.Errorf("customer %d: region %q, want %q", c.ID, c.Region, region)
		}
		switch c.PlanType {
		case PlanIndividual:
			if c.Age < 25 || c.Age > 64 {
				t.Errorf("customer %d: individual age %d out of [25,64]", c.ID, c.Age)
			}
		case PlanMedicare:
			if c.Age < 65 || c.Age > 80 {
				t.Errorf("customer %d: medicare age %d out of [65,80]", c.ID, c.Age)
			}
		default:
			t.Errorf("customer %d: plan %q", c.ID, c.PlanType)
		}
		switch c.Gender {
		case "Female", "Male", "Other":
		default:
			t.Errorf("customer %d: gender %q", c.ID, c.Gender)
		}
	}
}

func TestGenerateDistributionShape(t *testing.T) {
	const n = 5000
	customers, err := GenerateSeeded(n, 7)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var medicare, female int
	for _, c := range customers {
		if c.PlanType == PlanMedicare {
			medicare++
		}
		if c.Gender == "Female" {
			female++
		}
	}
	if got := float64(medicare) / n; math.Abs(got-0.3) > 0.03 {
		t.Errorf("medicare share: got %.3f, want 0.30±0.03", got)
	}
	if got := float64(female) / n; math.Abs(got-0.55) > 0.03 {
		t.Errorf("female share: got %.3f, want 0.55±0.03", got)
	}
}

func TestRegionTableTotal(t *testing.T) {
	states := States()
	if len(states) != 17 {
		t.Fatalf("states: got %d, want 17", len(states))
	}
	regions := map[string]bool{}
	for _, s := range states {
		r, ok := RegionOf(s)
		if !ok {
			t.Errorf("state %q has no region", s)
		}
		regions[r] = true
	}
	if len(regions) != 4 {
		t.Errorf("regions: got %d distinct, want 4", len(regions))
	}
	if _, ok := RegionOf("Alaska"); ok {
		t.Error("Alaska should not be serviced")
	}
}

func TestStatesReturnsCopy(t *testing.T) {
	s := States()
	s[0] = "Mutated"
	if States()[0] != "Arizona" {
		t.Error("States exposed its backing array")
	}
}
