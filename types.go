package main

import (
	"fmt"
	"strings"
)

// Category identifies a necessity cost bucket
type Category int

const (
	Transport Category = iota
	Food
	Health
	Civic
	Other
	Childcare
	Internet
	Housing // Not sampled like the others: one distribution per bedroom tier
)

// sampledCategories is the fixed order in which category samples are drawn.
// Changing it changes every seeded sample.
var sampledCategories = []Category{Transport, Food, Health, Civic, Other, Childcare, Internet}

// BreakdownCategories is the column order of the breakdown table
var BreakdownCategories = []Category{Housing, Transport, Food, Health, Civic, Other, Childcare, Internet}

func (c Category) String() string {
	switch c {
	case Transport:
		return "transport"
	case Food:
		return "food"
	case Health:
		return "health"
	case Civic:
		return "civic"
	case Other:
		return "other"
	case Childcare:
		return "childcare"
	case Internet:
		return "internet"
	case Housing:
		return "housing"
	default:
		return "unknown"
	}
}

// Title returns the capitalised name used in report headings
func (c Category) Title() string {
	s := c.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseCategory converts a config key to a Category
func ParseCategory(s string) (Category, error) {
	for _, c := range BreakdownCategories {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown cost category %q", s)
}

// FilingStatus selects the standard deduction and bracket schedule
type FilingStatus int

const (
	Single FilingStatus = iota
	Married
	HeadOfHousehold
)

func (f FilingStatus) String() string {
	switch f {
	case Single:
		return "single"
	case Married:
		return "married"
	case HeadOfHousehold:
		return "head_of_household"
	default:
		return "unknown"
	}
}

// ParseFilingStatus accepts the long names plus the short "hoh" and "mfj" forms
func ParseFilingStatus(s string) (FilingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return Single, nil
	case "married", "mfj", "married_joint":
		return Married, nil
	case "head_of_household", "hoh":
		return HeadOfHousehold, nil
	}
	return 0, fmt.Errorf("unknown filing status %q", s)
}

// FilingMode is either automatic (derived per archetype) or a fixed status for every row
type FilingMode struct {
	Auto   bool
	Status FilingStatus
}

// FilingAuto derives the filing status from each archetype
var FilingAuto = FilingMode{Auto: true}

// FilingAs forces one filing status for every archetype
func FilingAs(status FilingStatus) FilingMode {
	return FilingMode{Status: status}
}

// ParseFilingMode parses "auto" or a filing status name
func ParseFilingMode(s string) (FilingMode, error) {
	if s == "" || strings.EqualFold(s, "auto") {
		return FilingAuto, nil
	}
	status, err := ParseFilingStatus(s)
	if err != nil {
		return FilingMode{}, err
	}
	return FilingAs(status), nil
}

// Resolve returns the status to use for an archetype
func (m FilingMode) Resolve(a Archetype) FilingStatus {
	if m.Auto {
		return a.FilingStatus()
	}
	return m.Status
}

func (m FilingMode) String() string {
	if m.Auto {
		return "auto"
	}
	return m.Status.String()
}
