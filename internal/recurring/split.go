package recurring

import (
	"github.com/envelope-zero/forecast/internal/models"
	"github.com/shopspring/decimal"
)

var three = decimal.NewFromInt(3)

// Split divides the own share of a monthly shared expense into one
// installment per payday of the month.
//
// HALF and CUSTOM spread the share over all paydays, CUSTOM paying only
// the ratio of the monthly amount. THIRD pays a third of the monthly
// amount on every payday.
//
// Every installment is truncated to cents and the remainder is added to
// the final installment, so that the installments sum up exactly to the
// share rounded to cents.
func Split(monthly decimal.Decimal, count int, split models.SplitType, ratio decimal.Decimal) []decimal.Decimal {
	if count <= 0 {
		return nil
	}

	share := monthly
	divisor := decimal.NewFromInt(int64(count))

	switch split {
	case models.SplitCustom:
		share = monthly.Mul(ratio)
	case models.SplitThird:
		divisor = three
	}

	n := decimal.NewFromInt(int64(count))
	installment := share.Div(divisor).Truncate(2)
	total := share.Mul(n).Div(divisor).Round(2)

	installments := make([]decimal.Decimal, count)
	for i := range installments {
		installments[i] = installment
	}
	installments[count-1] = total.Sub(installment.Mul(decimal.NewFromInt(int64(count - 1))))

	return installments
}
