package types

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formats amounts in the currency of a locale.
type Money struct {
	printer *message.Printer
	symbol  string
}

// NewMoney returns the formatter for the locale, e.g. "en-US" or "de-DE".
func NewMoney(locale string) (Money, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return Money{}, fmt.Errorf("'%s' is not a valid locale: %w", locale, err)
	}

	unit, confidence := currency.FromTag(tag)
	if confidence == language.No {
		return Money{}, fmt.Errorf("no currency is known for locale '%s'", locale)
	}

	p := message.NewPrinter(tag)
	return Money{
		printer: p,
		symbol:  p.Sprintf("%s", currency.Symbol(unit)),
	}, nil
}

// Symbol is the currency symbol.
func (m Money) Symbol() string {
	return m.symbol
}

// Format formats the amount with two decimal places and the currency symbol.
func (m Money) Format(amount decimal.Decimal) string {
	if m.printer == nil {
		return amount.StringFixed(2)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}

	return sign + m.symbol + m.printer.Sprintf("%.2f", amount.Abs().InexactFloat64())
}
