package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/envelope-zero/forecast/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayFrequency string

const (
	PayFrequencyWeekly   PayFrequency = "WEEKLY"
	PayFrequencyBiweekly PayFrequency = "BIWEEKLY"
)

type DeductionType string

const (
	DeductionFixed      DeductionType = "FIXED"
	DeductionPercentage DeductionType = "PERCENTAGE"
)

var (
	weeklyPeriods   = decimal.NewFromInt(52)
	biweeklyPeriods = decimal.NewFromInt(26)
)

// PaycheckConfig describes the salary. Paydays repeat every interval
// starting from the effective date.
type PaycheckConfig struct {
	DefaultModel
	GrossAmount   decimal.Decimal     `json:"grossAmount" gorm:"type:DECIMAL(20,2)" example:"3200.00"`
	Frequency     PayFrequency        `json:"frequency" example:"BIWEEKLY"`
	EffectiveDate time.Time           `json:"effectiveDate" example:"2024-01-05T00:00:00Z"` // A known payday
	PayDayOfWeek  time.Weekday        `json:"payDayOfWeek" example:"5"`                     // Used when no effective date is set
	DepositTo     string              `json:"depositTo" example:"C"`                        // Pay type code of the receiving account, the primary account if empty
	Archived      bool                `json:"archived" example:"false" default:"false"`
	Deductions    []PaycheckDeduction `json:"deductions" gorm:"constraint:OnDelete:CASCADE"`
}

func (PaycheckConfig) Self() string {
	return "Paycheck Configuration"
}

func (p *PaycheckConfig) BeforeSave(_ *gorm.DB) error {
	p.DepositTo = strings.TrimSpace(p.DepositTo)

	if p.Frequency == "" {
		p.Frequency = PayFrequencyBiweekly
	}

	if p.Frequency != PayFrequencyWeekly && p.Frequency != PayFrequencyBiweekly {
		return ValidationError{"paycheck configuration", "frequency", "must be WEEKLY or BIWEEKLY"}
	}

	if p.GrossAmount.IsNegative() {
		return ValidationError{"paycheck configuration", "grossAmount", "must not be negative"}
	}

	if p.PayDayOfWeek < time.Sunday || p.PayDayOfWeek > time.Saturday {
		return ValidationError{"paycheck configuration", "payDayOfWeek", "must be between 0 (Sunday) and 6 (Saturday)"}
	}

	if !p.EffectiveDate.IsZero() {
		p.EffectiveDate = types.Day(p.EffectiveDate)
		p.PayDayOfWeek = p.EffectiveDate.Weekday()
	}

	p.GrossAmount = p.GrossAmount.Round(2)
	return nil
}

func (p *PaycheckConfig) AfterFind(tx *gorm.DB) error {
	p.EffectiveDate = p.EffectiveDate.In(time.UTC)
	return p.DefaultModel.AfterFind(tx)
}

// Interval is the number of days between two paydays.
func (p PaycheckConfig) Interval() int {
	if p.Frequency == PayFrequencyWeekly {
		return 7
	}
	return 14
}

// Anchor returns a payday. If no effective date is configured,
// the first pay day of week on or after from is used.
func (p PaycheckConfig) Anchor(from time.Time) time.Time {
	if !p.EffectiveDate.IsZero() {
		return p.EffectiveDate
	}

	day := types.Day(from)
	offset := (int(p.PayDayOfWeek) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}

// TotalDeductions is the sum of all deductions from one paycheck.
func (p PaycheckConfig) TotalDeductions() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Deductions {
		total = total.Add(d.Amount(p.GrossAmount))
	}
	return total
}

// NetPay is the gross amount minus all deductions.
func (p PaycheckConfig) NetPay() decimal.Decimal {
	return p.GrossAmount.Sub(p.TotalDeductions())
}

func (p PaycheckConfig) periods() decimal.Decimal {
	if p.Frequency == PayFrequencyWeekly {
		return weeklyPeriods
	}
	return biweeklyPeriods
}

// AnnualGross is the gross pay over a year.
func (p PaycheckConfig) AnnualGross() decimal.Decimal {
	return p.GrossAmount.Mul(p.periods())
}

// AnnualNet is the net pay over a year.
func (p PaycheckConfig) AnnualNet() decimal.Decimal {
	return p.NetPay().Mul(p.periods())
}

// MarshalJSON adds the net pay per paycheck and the annual amounts.
func (p PaycheckConfig) MarshalJSON() ([]byte, error) {
	type paycheckConfig PaycheckConfig
	return json.Marshal(struct {
		paycheckConfig
		TotalDeductions decimal.Decimal `json:"totalDeductions"`
		NetPay          decimal.Decimal `json:"netPay"`
		AnnualGross     decimal.Decimal `json:"annualGross"`
		AnnualNet       decimal.Decimal `json:"annualNet"`
	}{
		paycheckConfig:  paycheckConfig(p),
		TotalDeductions: p.TotalDeductions(),
		NetPay:          p.NetPay(),
		AnnualGross:     p.AnnualGross(),
		AnnualNet:       p.AnnualNet(),
	})
}

// PaycheckDeduction is subtracted from the gross amount of every paycheck.
type PaycheckDeduction struct {
	DefaultModel
	PaycheckConfigID uuid.UUID       `json:"paycheckConfigId" example:"1f9b0d61-6a5c-4d7d-9d6b-3b5d1e0f9c11"`
	Name             string          `json:"name" example:"401k"`
	Type             DeductionType   `json:"type" example:"PERCENTAGE"`
	Value            decimal.Decimal `json:"value" gorm:"type:DECIMAL(20,4)" example:"6"` // Amount for FIXED, percent of gross for PERCENTAGE
	Position         int             `json:"position" example:"1"`
}

func (PaycheckDeduction) Self() string {
	return "Paycheck Deduction"
}

func (d *PaycheckDeduction) BeforeSave(_ *gorm.DB) error {
	d.Name = strings.TrimSpace(d.Name)

	if d.Type == "" {
		d.Type = DeductionFixed
	}

	if d.Type != DeductionFixed && d.Type != DeductionPercentage {
		return ValidationError{"paycheck deduction", "type", "must be FIXED or PERCENTAGE"}
	}

	if d.Value.IsNegative() {
		return ValidationError{"paycheck deduction", "value", "must not be negative"}
	}

	return nil
}

// Amount is the deducted amount for a gross paycheck, rounded to cents.
func (d PaycheckDeduction) Amount(gross decimal.Decimal) decimal.Decimal {
	if d.Type == DeductionPercentage {
		return gross.Mul(d.Value).Div(hundred).Round(2)
	}
	return d.Value.Round(2)
}

// CurrentPaycheck returns the active paycheck configuration with its
// deductions in order. It is the one with the latest effective date that
// is not archived.
func CurrentPaycheck(db *gorm.DB) (PaycheckConfig, error) {
	var config PaycheckConfig
	err := db.
		Preload("Deductions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Where("archived = ?", false).
		Order("effective_date DESC, created_at DESC").
		First(&config).Error

	return config, err
}
