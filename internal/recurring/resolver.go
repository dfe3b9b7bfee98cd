package recurring

import (
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Occurrence is a single transaction that a schedule produces.
type Occurrence struct {
	ChargeID      *uuid.UUID
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	PaymentMethod string
}

// Transaction returns the unposted transaction for the occurrence.
func (o Occurrence) Transaction() models.Transaction {
	return models.Transaction{
		Date:              o.Date,
		Description:       o.Description,
		Amount:            o.Amount,
		PaymentMethod:     o.PaymentMethod,
		RecurringChargeID: o.ChargeID,
	}
}

// Outcome is the result of resolving a charge for a month.
type Outcome int

const (
	// OutcomeEmit means the occurrence must be generated.
	OutcomeEmit Outcome = iota

	// OutcomeSpecial means the charge has a special cadence and is
	// generated by its schedule, not per month.
	OutcomeSpecial

	// OutcomeShared means the charge is paid through a shared expense.
	OutcomeShared

	// OutcomePosted means the occurrence has already been posted.
	OutcomePosted

	// OutcomePaused means the charge is paused.
	OutcomePaused
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmit:
		return "emit"
	case OutcomeSpecial:
		return "special"
	case OutcomeShared:
		return "shared"
	case OutcomePosted:
		return "posted"
	case OutcomePaused:
		return "paused"
	}
	return "unknown"
}

// Snapshot is the state that charges are resolved against.
type Snapshot struct {
	Ledger models.Ledger

	// Shared contains the IDs of all charges linked to a shared expense.
	Shared map[uuid.UUID]bool

	Posted PostedKeys
}

// Resolve computes the occurrence of a charge in a month.
//
// The occurrence is only meaningful for OutcomeEmit and OutcomePosted.
// A charge with an unknown payment method or linked card results in a
// models.ReferenceError. Resolve has no side effects.
func Resolve(charge models.RecurringCharge, month types.Month, snapshot Snapshot) (Occurrence, Outcome, error) {
	if charge.Paused {
		return Occurrence{}, OutcomePaused, nil
	}

	if snapshot.Shared[charge.ID] {
		return Occurrence{}, OutcomeShared, nil
	}

	cadence, err := charge.Cadence()
	if err != nil {
		return Occurrence{}, OutcomeEmit, err
	}

	monthly, ok := cadence.(models.Monthly)
	if !ok {
		return Occurrence{}, OutcomeSpecial, nil
	}

	if !snapshot.Ledger.Knows(charge.PaymentMethod) {
		return Occurrence{}, OutcomeEmit, reference(charge, charge.PaymentMethod)
	}

	amount, err := ResolveAmount(charge, snapshot.Ledger)
	if err != nil {
		return Occurrence{}, OutcomeEmit, err
	}

	id := charge.ID
	occurrence := Occurrence{
		ChargeID:      &id,
		Date:          month.Day(monthly.Day),
		Description:   charge.Name,
		Amount:        amount,
		PaymentMethod: charge.PaymentMethod,
	}

	if snapshot.Posted.Has(occurrence) {
		return occurrence, OutcomePosted, nil
	}

	return occurrence, OutcomeEmit, nil
}

// ResolveAmount returns the amount of one occurrence of a charge.
//
// Charges that pay a card's balance pay the card's current minimum payment.
func ResolveAmount(charge models.RecurringCharge, ledger models.Ledger) (decimal.Decimal, error) {
	switch source := charge.AmountSource().(type) {
	case models.CardMinimum:
		code, ok := ledger.CardCode(source.CardID)
		if !ok {
			return decimal.Zero, reference(charge, source.CardID.String())
		}
		return ledger.Cards[code].MinPayment().Neg(), nil
	case models.FixedAmount:
		return source.Amount, nil
	}

	return charge.Amount, nil
}

func reference(charge models.RecurringCharge, ref string) models.ReferenceError {
	return models.ReferenceError{
		Resource:  "recurring charge",
		ID:        charge.ID,
		Name:      charge.Name,
		Reference: ref,
	}
}
