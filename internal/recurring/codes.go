package recurring

import (
	"fmt"

	"github.com/envelope-zero/forecast/internal/models"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

type Kind string

const (
	// KindBiweekly charges occur on every payday of a biweekly schedule
	// that shares the anchor of the paycheck.
	KindBiweekly Kind = "biweekly"

	// KindMonthly charges occur once a month on a fixed day.
	KindMonthly Kind = "monthly"

	// KindLoan charges pay the linked loan monthly until it is paid off.
	KindLoan Kind = "loan"

	// KindShared charges are paid through the shared expense installments.
	KindShared Kind = "shared"

	// KindPayday charges are emitted by the payday schedule.
	KindPayday Kind = "payday"
)

// Code is the cadence a special day code stands for.
type Code struct {
	Kind Kind   `yaml:"kind" json:"kind"`
	Day  int    `yaml:"day,omitempty" json:"day,omitempty"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// CodeTable maps special day codes to cadences.
type CodeTable map[int]Code

// DefaultCodes returns the default code table.
func DefaultCodes() CodeTable {
	t := CodeTable{
		991: {Kind: KindBiweekly, Name: "Mortgage"},
	}

	for code := 992; code <= 995; code++ {
		t[code] = Code{Kind: KindMonthly, Day: 15}
	}

	for code := 996; code <= models.SpecialCodeMax; code++ {
		t[code] = Code{Kind: KindShared}
	}

	return t
}

// Lookup returns the cadence of a special code.
func (t CodeTable) Lookup(code int) (Code, bool) {
	c, ok := t[code]
	return c, ok
}

// Codes returns all codes in the table in ascending order.
func (t CodeTable) Codes() []int {
	codes := make([]int, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Validate checks that all codes are special codes with a known kind.
func (t CodeTable) Validate() error {
	for _, code := range t.Codes() {
		c := t[code]

		if code < models.SpecialCodeMin || code > models.SpecialCodeMax {
			return fmt.Errorf("code %d is not between %d and %d", code, models.SpecialCodeMin, models.SpecialCodeMax)
		}

		switch c.Kind {
		case KindBiweekly, KindLoan, KindShared, KindPayday:
		case KindMonthly:
			if c.Day < 1 || c.Day > 31 {
				return fmt.Errorf("code %d: monthly cadence needs a day between 1 and 31, got %d", code, c.Day)
			}
		default:
			return fmt.Errorf("code %d: unknown kind '%s'", code, c.Kind)
		}
	}

	return nil
}

// ParseCodes reads a code table from YAML.
//
// The document maps codes to cadences:
//
//	991:
//	  kind: biweekly
//	  name: Mortgage
//	992:
//	  kind: monthly
//	  day: 15
//
// Codes that are not in the document keep their default cadence.
func ParseCodes(data []byte) (CodeTable, error) {
	var overrides CodeTable
	err := yaml.Unmarshal(data, &overrides)
	if err != nil {
		return nil, fmt.Errorf("could not parse special codes: %w", err)
	}

	t := DefaultCodes()
	for code, c := range overrides {
		t[code] = c
	}

	err = t.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid special codes: %w", err)
	}

	return t, nil
}
