package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrGeneral                  = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound         = errors.New("there is no")
	ErrAccountNameNotUnique     = errors.New("the account name must be unique")
	ErrCreditCardNameNotUnique  = errors.New("the credit card name must be unique")
	ErrPayTypeCodeNotUnique     = errors.New("the pay type code is already in use by another account, credit card or loan")
	ErrRecurringChargeNotUnique = errors.New("a recurring charge with the same name, day of month and payment method already exists")
	ErrAlreadyPosted            = errors.New("the transaction has already been posted")
	ErrPostedTransaction        = errors.New("the date, amount and payment method of a posted transaction cannot be changed and it cannot be deleted")
	ErrCardStillReferenced      = errors.New("the credit card is still referenced by recurring charges, use the card deletion to reassign or remove them")
)

// ValidationError is returned when a record is malformed or out of range.
// It is always returned before any state is mutated.
type ValidationError struct {
	Resource string
	Field    string
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Resource, e.Field, e.Reason)
}

// ReferenceError is reported when a record points to an account,
// credit card, loan or special code that does not exist.
//
// Generation and projection skip the offending record and continue.
type ReferenceError struct {
	Resource  string
	ID        uuid.UUID
	Name      string
	Reference string
}

func (e ReferenceError) Error() string {
	return fmt.Sprintf("%s '%s' (%s) references '%s', which does not exist", e.Resource, e.Name, e.ID, e.Reference)
}
