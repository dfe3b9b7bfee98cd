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

type RiskLevel string

const (
	RiskExpired RiskLevel = "EXPIRED"
	RiskHigh    RiskLevel = "HIGH"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskLow     RiskLevel = "LOW"
)

const (
	highRiskDays   = 60
	mediumRiskDays = 90
)

var daysPerYear = decimal.NewFromInt(365)

// DeferredPurchase is a purchase on a credit card with a deferred
// interest promotion. If it is not paid off when the promotion ends,
// interest is charged retroactively on the whole purchase amount.
type DeferredPurchase struct {
	DefaultModel
	CreditCardID      uuid.UUID       `json:"creditCardId" example:"a03ffd2e-3f04-4a41-bc39-3b0fe9c4ae66"`
	CreditCard        CreditCard      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Description       string          `json:"description" example:"Sofa"`
	PurchaseAmount    decimal.Decimal `json:"purchaseAmount" gorm:"type:DECIMAL(20,2)" example:"2400.00"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance" gorm:"type:DECIMAL(20,2)" example:"1800.00"`
	PromoAPR          decimal.Decimal `json:"promoApr" gorm:"type:DECIMAL(10,6)" example:"0"`
	StandardAPR       decimal.Decimal `json:"standardApr" gorm:"type:DECIMAL(10,6)" example:"0.2699"`
	PurchaseDate      time.Time       `json:"purchaseDate" example:"2024-01-20T00:00:00Z"`
	PromoEndDate      time.Time       `json:"promoEndDate" example:"2025-01-20T00:00:00Z"`
	MinMonthlyPayment decimal.Decimal `json:"minMonthlyPayment" gorm:"type:DECIMAL(20,2)" example:"50.00"`
}

func (DeferredPurchase) Self() string {
	return "Deferred Purchase"
}

func (p *DeferredPurchase) BeforeSave(_ *gorm.DB) error {
	p.Description = strings.TrimSpace(p.Description)

	if p.PromoEndDate.IsZero() {
		return ValidationError{"deferred purchase", "promoEndDate", "must be set"}
	}

	if p.PurchaseAmount.IsNegative() || p.RemainingBalance.IsNegative() {
		return ValidationError{"deferred purchase", "amount", "must not be negative"}
	}

	p.PurchaseDate = types.Day(p.PurchaseDate)
	p.PromoEndDate = types.Day(p.PromoEndDate)
	p.PurchaseAmount = p.PurchaseAmount.Round(2)
	p.RemainingBalance = p.RemainingBalance.Round(2)
	p.MinMonthlyPayment = p.MinMonthlyPayment.Round(2)

	return nil
}

func (p *DeferredPurchase) AfterFind(tx *gorm.DB) error {
	p.PurchaseDate = p.PurchaseDate.In(time.UTC)
	p.PromoEndDate = p.PromoEndDate.In(time.UTC)
	return p.DefaultModel.AfterFind(tx)
}

// MarshalJSON adds the risk assessment as of today.
func (p DeferredPurchase) MarshalJSON() ([]byte, error) {
	type deferredPurchase DeferredPurchase
	now := time.Now()

	return json.Marshal(struct {
		deferredPurchase
		DaysUntilExpiry      int             `json:"daysUntilExpiry"`
		RiskLevel            RiskLevel       `json:"riskLevel"`
		AtRisk               bool            `json:"atRisk"`
		MonthlyPaymentNeeded decimal.Decimal `json:"monthlyPaymentNeeded"`
		PotentialInterest    decimal.Decimal `json:"potentialInterest"`
	}{
		deferredPurchase:     deferredPurchase(p),
		DaysUntilExpiry:      p.DaysUntilExpiry(now),
		RiskLevel:            p.RiskLevel(now),
		AtRisk:               p.AtRisk(now),
		MonthlyPaymentNeeded: p.MonthlyPaymentNeeded(now),
		PotentialInterest:    p.PotentialInterest(),
	})
}

// DaysUntilExpiry is the number of days from asOf until the promotion ends.
// It is negative after the end.
func (p DeferredPurchase) DaysUntilExpiry(asOf time.Time) int {
	return types.DaysBetween(types.Day(asOf), p.PromoEndDate)
}

// Expired reports if the promotion has ended.
func (p DeferredPurchase) Expired(asOf time.Time) bool {
	return p.DaysUntilExpiry(asOf) < 0
}

// MonthlyPaymentNeeded is the monthly payment that pays off the remaining
// balance before the promotion ends. Expired purchases need the whole
// remaining balance.
func (p DeferredPurchase) MonthlyPaymentNeeded(asOf time.Time) decimal.Decimal {
	days := p.DaysUntilExpiry(asOf)
	if days < 0 {
		return p.RemainingBalance
	}

	months := days / 30
	if months < 1 {
		months = 1
	}

	return p.RemainingBalance.Div(decimal.NewFromInt(int64(months))).RoundUp(2)
}

// AtRisk reports if the minimum payments do not pay the purchase off in time.
func (p DeferredPurchase) AtRisk(asOf time.Time) bool {
	if !p.RemainingBalance.IsPositive() {
		return false
	}

	return p.Expired(asOf) || p.MinMonthlyPayment.LessThan(p.MonthlyPaymentNeeded(asOf))
}

// RiskLevel classifies how close the promotion is to its end.
func (p DeferredPurchase) RiskLevel(asOf time.Time) RiskLevel {
	days := p.DaysUntilExpiry(asOf)

	switch {
	case days < 0:
		return RiskExpired
	case days < highRiskDays:
		return RiskHigh
	case days < mediumRiskDays:
		return RiskMedium
	}

	return RiskLow
}

// PotentialInterest is the interest charged retroactively on the purchase
// amount if the balance is not paid off when the promotion ends.
func (p DeferredPurchase) PotentialInterest() decimal.Decimal {
	days := types.DaysBetween(p.PurchaseDate, p.PromoEndDate)
	if days <= 0 {
		return decimal.Zero
	}

	return p.PurchaseAmount.Mul(p.StandardAPR).Div(daysPerYear).Mul(decimal.NewFromInt(int64(days))).Round(2)
}
