package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EntityKind string

const (
	EntityAccount    EntityKind = "account"
	EntityCreditCard EntityKind = "credit card"
)

// Effect is the change of one balance caused by a transaction.
//
// For accounts, Delta is added to the balance. For credit cards, Delta
// is added to the amount owed.
type Effect struct {
	Kind  EntityKind
	Code  string
	Delta decimal.Decimal
}

// Balances maps pay type codes to balances. Account balances are the
// cash on the account, credit card balances the amount owed.
type Balances map[string]decimal.Decimal

// Clone returns a copy of the balances.
func (b Balances) Clone() Balances {
	c := make(Balances, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

// Apply adds the effects to the balances.
func (b Balances) Apply(effects []Effect) {
	for _, e := range effects {
		b[e.Code] = b[e.Code].Add(e.Delta)
	}
}

// Ledger resolves payment methods to accounts and credit cards.
type Ledger struct {
	Accounts map[string]Account    // by pay type code
	Cards    map[string]CreditCard // by pay type code
	Loans    map[uuid.UUID]Loan

	cardCodes      map[uuid.UUID]string
	linkedByCharge map[uuid.UUID]string
	linkedByName   map[string]string
	loanByCharge   map[uuid.UUID]uuid.UUID
}

// NewLedger indexes the records.
func NewLedger(accounts []Account, cards []CreditCard, loans []Loan, charges []RecurringCharge) Ledger {
	l := Ledger{
		Accounts:       make(map[string]Account, len(accounts)),
		Cards:          make(map[string]CreditCard, len(cards)),
		Loans:          make(map[uuid.UUID]Loan, len(loans)),
		cardCodes:      make(map[uuid.UUID]string, len(cards)),
		linkedByCharge: make(map[uuid.UUID]string),
		linkedByName:   make(map[string]string),
		loanByCharge:   make(map[uuid.UUID]uuid.UUID),
	}

	for _, a := range accounts {
		l.Accounts[a.PayTypeCode] = a
	}

	for _, c := range cards {
		l.Cards[c.PayTypeCode] = c
		l.cardCodes[c.ID] = c.PayTypeCode
	}

	for _, loan := range loans {
		l.Loans[loan.ID] = loan
	}

	for _, c := range charges {
		if c.LinkedCardID != nil {
			if code, ok := l.cardCodes[*c.LinkedCardID]; ok {
				l.linkedByCharge[c.ID] = code
				l.linkedByName[c.Name] = code
			}
		}

		if c.LinkedLoanID != nil {
			l.loanByCharge[c.ID] = *c.LinkedLoanID
		}
	}

	return l
}

// LoadLedger reads all accounts, credit cards, loans and recurring charges.
func LoadLedger(db *gorm.DB) (Ledger, error) {
	var (
		accounts []Account
		cards    []CreditCard
		loans    []Loan
		charges  []RecurringCharge
	)

	for _, dest := range []any{&accounts, &cards, &loans, &charges} {
		err := db.Find(dest).Error
		if err != nil {
			return Ledger{}, err
		}
	}

	return NewLedger(accounts, cards, loans, charges), nil
}

// Knows reports if the code is the pay type code of an account or credit card.
func (l Ledger) Knows(code string) bool {
	_, account := l.Accounts[code]
	_, card := l.Cards[code]
	return account || card
}

// CardCode returns the pay type code of the card with the ID.
func (l Ledger) CardCode(id uuid.UUID) (string, bool) {
	code, ok := l.cardCodes[id]
	return code, ok
}

// PaidCard returns the pay type code of the card the transaction pays, if any.
//
// A transaction pays a card when its recurring charge is linked to the
// card or, for transactions without recurring charge, when its
// description is the name of such a charge.
func (l Ledger) PaidCard(t Transaction) (string, bool) {
	if t.RecurringChargeID != nil {
		if code, ok := l.linkedByCharge[*t.RecurringChargeID]; ok {
			return code, true
		}
	}

	code, ok := l.linkedByName[t.Description]
	return code, ok
}

// LoanFor returns the loan the transaction pays, if any.
func (l Ledger) LoanFor(t Transaction) (Loan, bool) {
	if t.RecurringChargeID == nil {
		return Loan{}, false
	}

	id, ok := l.loanByCharge[*t.RecurringChargeID]
	if !ok {
		return Loan{}, false
	}

	loan, ok := l.Loans[id]
	return loan, ok
}

// Effects returns the balance changes of a transaction.
//
//   - paid from an account: the account changes by the amount
//   - paid with a credit card: the amount owed changes by the negated amount
//   - paying a card with another payment method: the amount owed on the
//     paid card changes by the amount
//
// An unknown payment method yields a ReferenceError and no effects.
func (l Ledger) Effects(t Transaction) ([]Effect, error) {
	var effects []Effect

	if _, ok := l.Accounts[t.PaymentMethod]; ok {
		effects = append(effects, Effect{Kind: EntityAccount, Code: t.PaymentMethod, Delta: t.Amount})
	} else if _, ok := l.Cards[t.PaymentMethod]; ok {
		effects = append(effects, Effect{Kind: EntityCreditCard, Code: t.PaymentMethod, Delta: t.Amount.Neg()})
	} else {
		return nil, ReferenceError{Resource: "transaction", ID: t.ID, Name: t.Description, Reference: t.PaymentMethod}
	}

	if code, ok := l.PaidCard(t); ok && code != t.PaymentMethod {
		effects = append(effects, Effect{Kind: EntityCreditCard, Code: code, Delta: t.Amount})
	}

	return effects, nil
}

// StoredBalances returns the stored balances of all accounts and cards.
func (l Ledger) StoredBalances() Balances {
	b := make(Balances, len(l.Accounts)+len(l.Cards))
	for code, a := range l.Accounts {
		b[code] = a.Balance
	}
	for code, c := range l.Cards {
		b[code] = c.Balance
	}
	return b
}

// InitialBalances returns the opening balances of all accounts and cards.
func (l Ledger) InitialBalances() Balances {
	b := make(Balances, len(l.Accounts)+len(l.Cards))
	for code, a := range l.Accounts {
		b[code] = a.InitialBalance
	}
	for code, c := range l.Cards {
		b[code] = c.InitialBalance
	}
	return b
}
