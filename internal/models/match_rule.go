package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// MatchRule binds posted transactions to recurring charges by their description.
//
// Match is a glob pattern where "*" matches any sequence of characters.
type MatchRule struct {
	DefaultModel
	RecurringChargeID uuid.UUID       `json:"recurringChargeId" example:"f9e873c2-fb96-4367-bfb6-7ecd9bf4a6b5"`
	RecurringCharge   RecurringCharge `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Priority          uint            `json:"priority" example:"3"`     // The priority of the match rule, lower is matched first
	Match             string          `json:"match" example:"Netflix*"` // The matching applied to the transaction description
}

func (MatchRule) Self() string {
	return "Match Rule"
}

func (r *MatchRule) BeforeSave(_ *gorm.DB) error {
	r.Match = strings.TrimSpace(r.Match)

	if r.Match == "" {
		return ValidationError{"match rule", "match", "must not be empty"}
	}

	return nil
}

// Matches reports if the description matches the rule.
func (r MatchRule) Matches(description string) bool {
	return glob.Glob(r.Match, description)
}

// MatchRecurringCharge returns the ID of the recurring charge of the first
// match rule that matches the description, or nil if none matches.
func MatchRecurringCharge(db *gorm.DB, description string) (*uuid.UUID, error) {
	var rules []MatchRule
	err := db.Order("priority ASC, created_at ASC").Find(&rules).Error
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if rule.Matches(description) {
			id := rule.RecurringChargeID
			return &id, nil
		}
	}

	return nil, nil
}
