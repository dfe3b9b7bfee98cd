package recurring

import (
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/google/uuid"
)

type chargeKey struct {
	id   uuid.UUID
	date string
}

type descriptionKey struct {
	description string
	date        string
	method      string
}

// PostedKeys identifies the occurrences that have already been posted.
//
// An occurrence of a recurring charge matches a posted transaction of the
// same charge on the same day. Any occurrence also matches a posted
// transaction with the same description on the same day and with the same
// payment method, which covers manually entered transactions.
type PostedKeys struct {
	charges      map[chargeKey]struct{}
	descriptions map[descriptionKey]struct{}
}

// NewPostedKeys builds the keys of the posted transactions.
// Transactions that are not posted are ignored.
func NewPostedKeys(transactions []models.Transaction) PostedKeys {
	k := PostedKeys{
		charges:      make(map[chargeKey]struct{}),
		descriptions: make(map[descriptionKey]struct{}),
	}

	for _, t := range transactions {
		if t.Posted {
			k.Add(t)
		}
	}

	return k
}

// Add registers a posted transaction.
func (k PostedKeys) Add(t models.Transaction) {
	date := dayKey(t.Date)

	if t.RecurringChargeID != nil {
		k.charges[chargeKey{*t.RecurringChargeID, date}] = struct{}{}
	}
	k.descriptions[descriptionKey{t.Description, date, t.PaymentMethod}] = struct{}{}
}

// Has reports if the occurrence has already been posted.
func (k PostedKeys) Has(o Occurrence) bool {
	date := dayKey(o.Date)

	if o.ChargeID != nil {
		if _, ok := k.charges[chargeKey{*o.ChargeID, date}]; ok {
			return true
		}
	}

	_, ok := k.descriptions[descriptionKey{o.Description, date, o.PaymentMethod}]
	return ok
}

// Len is the number of distinct description keys registered.
func (k PostedKeys) Len() int {
	return len(k.descriptions)
}

func dayKey(t time.Time) string {
	return types.Day(t).Format(types.DateFormat)
}
