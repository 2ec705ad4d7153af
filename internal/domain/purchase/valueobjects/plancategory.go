package valueobjects

import (
	"fmt"
	"strings"
)

// PlanCategory classifies a catalog plan by what it grants. The
// license API does not expose a category field, so classification is
// derived from the plan name the same way the billing portal does.
type PlanCategory struct {
	value string
}

const (
	categoryFree    = "free"
	categoryTeam    = "team"
	categoryLicense = "license"
)

func NewPlanCategory(value string) (PlanCategory, error) {
	switch value {
	case categoryFree, categoryTeam, categoryLicense:
		return PlanCategory{value: value}, nil
	}
	return PlanCategory{}, fmt.Errorf("invalid plan category: %s", value)
}

func CategoryFree() PlanCategory { return PlanCategory{value: categoryFree} }
func CategoryTeam() PlanCategory { return PlanCategory{value: categoryTeam} }
func CategoryLicense() PlanCategory { return PlanCategory{value: categoryLicense} }

// DeriveCategory maps a plan name onto a category. Free plans are
// matched first; team plans by the names the catalog actually uses.
func DeriveCategory(planName string, isFree bool) PlanCategory {
	if isFree {
		return CategoryFree()
	}
	name := strings.ToLower(planName)
	if strings.Contains(name, "equipo") || strings.Contains(name, "team") {
		return CategoryTeam()
	}
	return CategoryLicense()
}

func (c PlanCategory) String() string { return c.value }

func (c PlanCategory) IsFree() bool { return c.value == categoryFree }
func (c PlanCategory) IsTeam() bool { return c.value == categoryTeam }
