package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SplitType string

const (
	SplitHalf   SplitType = "HALF"
	SplitThird  SplitType = "THIRD"
	SplitCustom SplitType = "CUSTOM"
)

// SharedExpense is a monthly expense shared with someone else. The own
// share is paid in installments on each payday.
type SharedExpense struct {
	DefaultModel
	Name              string           `json:"name" example:"Groceries"`
	LinkedRecurringID *uuid.UUID       `json:"linkedRecurringId" example:"null"` // If set, the monthly amount is taken from this charge
	LinkedRecurring   *RecurringCharge `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	MonthlyAmount     decimal.Decimal  `json:"monthlyAmount" gorm:"type:DECIMAL(20,2)" example:"600.00"`
	SplitType         SplitType        `json:"splitType" example:"HALF"`
	CustomSplitRatio  decimal.Decimal  `json:"customSplitRatio" gorm:"type:DECIMAL(10,6)" example:"0.4"` // Own share for the CUSTOM split
}

func (SharedExpense) Self() string {
	return "Shared Expense"
}

func (s *SharedExpense) BeforeSave(_ *gorm.DB) error {
	s.Name = strings.TrimSpace(s.Name)

	if s.SplitType == "" {
		s.SplitType = SplitHalf
	}

	switch s.SplitType {
	case SplitHalf, SplitThird:
	case SplitCustom:
		if !s.CustomSplitRatio.IsPositive() || s.CustomSplitRatio.GreaterThan(decimal.NewFromInt(1)) {
			return ValidationError{"shared expense", "customSplitRatio", "must be greater than 0 and at most 1"}
		}
	default:
		return ValidationError{"shared expense", "splitType", "must be one of HALF, THIRD or CUSTOM"}
	}

	s.MonthlyAmount = s.MonthlyAmount.Round(2)
	return nil
}

// Monthly returns the monthly amount of the expense.
//
// For expenses linked to a recurring charge, this is the absolute amount
// of the charge. If the charge is not in charges, MonthlyAmount is used.
func (s SharedExpense) Monthly(charges map[uuid.UUID]RecurringCharge) decimal.Decimal {
	if s.LinkedRecurringID != nil {
		if c, ok := charges[*s.LinkedRecurringID]; ok {
			return c.Amount.Abs()
		}
	}
	return s.MonthlyAmount
}
