package v1

import (
	"fmt"
	"strconv"
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	ez_uuid "github.com/envelope-zero/forecast/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// contains filters for the column containing the value.
func contains(q *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return q
	}
	return q.Where(fmt.Sprintf("%s LIKE ?", column), fmt.Sprintf("%%%s%%", value))
}

type AccountQueryFilter struct {
	Name        string             `form:"name" filterField:"false"` // Fuzzy filter for the account name
	Type        models.AccountType `form:"type"`                     // Exact type
	PayTypeCode string             `form:"payTypeCode"`              // Exact payment method code
	Page
}

func (f AccountQueryFilter) model() models.Account {
	return models.Account{
		Type:        f.Type,
		PayTypeCode: f.PayTypeCode,
	}
}

func (f AccountQueryFilter) apply(q *gorm.DB) *gorm.DB {
	return contains(q, "name", f.Name)
}

type CreditCardQueryFilter struct {
	Name        string `form:"name" filterField:"false"`
	PayTypeCode string `form:"payTypeCode"`
	Page
}

func (f CreditCardQueryFilter) model() models.CreditCard {
	return models.CreditCard{PayTypeCode: f.PayTypeCode}
}

func (f CreditCardQueryFilter) apply(q *gorm.DB) *gorm.DB {
	return contains(q, "name", f.Name)
}

type LoanQueryFilter struct {
	Name        string `form:"name" filterField:"false"`
	PayTypeCode string `form:"payTypeCode"`
	Page
}

func (f LoanQueryFilter) model() models.Loan {
	return models.Loan{PayTypeCode: f.PayTypeCode}
}

func (f LoanQueryFilter) apply(q *gorm.DB) *gorm.DB {
	return contains(q, "name", f.Name)
}

type RecurringChargeQueryFilter struct {
	Name          string            `form:"name" filterField:"false"`
	DayOfMonth    int               `form:"dayOfMonth"`
	PaymentMethod string            `form:"paymentMethod"`
	AmountType    models.AmountType `form:"amountType"`
	LinkedCardID  ez_uuid.UUID      `form:"linkedCard"` // An empty value filters for charges without linked card
	LinkedLoanID  ez_uuid.UUID      `form:"linkedLoan"` // An empty value filters for charges without linked loan
	Paused        bool              `form:"paused"`
	Page
}

func (f RecurringChargeQueryFilter) model() models.RecurringCharge {
	return models.RecurringCharge{
		DayOfMonth:    f.DayOfMonth,
		PaymentMethod: f.PaymentMethod,
		AmountType:    f.AmountType,
		LinkedCardID:  f.LinkedCardID.Ptr(),
		LinkedLoanID:  f.LinkedLoanID.Ptr(),
		Paused:        f.Paused,
	}
}

func (f RecurringChargeQueryFilter) apply(q *gorm.DB) *gorm.DB {
	return contains(q, "name", f.Name)
}

type PaycheckConfigQueryFilter struct {
	Frequency models.PayFrequency `form:"frequency"`
	DepositTo string              `form:"depositTo"`
	Archived  bool                `form:"archived"`
	Page
}

func (f PaycheckConfigQueryFilter) model() models.PaycheckConfig {
	return models.PaycheckConfig{
		Frequency: f.Frequency,
		DepositTo: f.DepositTo,
		Archived:  f.Archived,
	}
}

type SharedExpenseQueryFilter struct {
	Name              string           `form:"name" filterField:"false"`
	SplitType         models.SplitType `form:"splitType"`
	LinkedRecurringID ez_uuid.UUID     `form:"linkedRecurring"`
	Page
}

func (f SharedExpenseQueryFilter) model() models.SharedExpense {
	return models.SharedExpense{
		SplitType:         f.SplitType,
		LinkedRecurringID: f.LinkedRecurringID.Ptr(),
	}
}

func (f SharedExpenseQueryFilter) apply(q *gorm.DB) *gorm.DB {
	return contains(q, "name", f.Name)
}

type TransactionQueryFilter struct {
	Description       string       `form:"description" filterField:"false"`                        // Fuzzy filter for the description
	PaymentMethod     string       `form:"paymentMethod"`                                          // Exact payment method code
	RecurringChargeID ez_uuid.UUID `form:"recurringCharge"`                                        // An empty value filters for transactions without recurring charge
	Posted            bool         `form:"posted"`                                                 // Posted or pending transactions
	FromDate          time.Time    `form:"fromDate" time_format:"2006-01-02" filterField:"false"`  // Transactions at and after this date
	UntilDate         time.Time    `form:"untilDate" time_format:"2006-01-02" filterField:"false"` // Transactions before and at this date
	Page
}

func (f TransactionQueryFilter) model() models.Transaction {
	return models.Transaction{
		PaymentMethod:     f.PaymentMethod,
		RecurringChargeID: f.RecurringChargeID.Ptr(),
		Posted:            f.Posted,
	}
}

func (f TransactionQueryFilter) apply(q *gorm.DB) *gorm.DB {
	q = contains(q, "description", f.Description)

	if !f.FromDate.IsZero() {
		q = q.Where("date >= ?", types.Day(f.FromDate))
	}

	if !f.UntilDate.IsZero() {
		q = q.Where("date <= ?", types.Day(f.UntilDate))
	}

	return q
}

type MatchRuleQueryFilter struct {
	Match             string       `form:"match" filterField:"false"`
	Priority          uint         `form:"priority"`
	RecurringChargeID ez_uuid.UUID `form:"recurringCharge"`
	Page
}

func (f MatchRuleQueryFilter) model() models.MatchRule {
	return models.MatchRule{
		Priority:          f.Priority,
		RecurringChargeID: f.RecurringChargeID.UUID,
	}
}

func (f MatchRuleQueryFilter) apply(q *gorm.DB) *gorm.DB {
	return contains(q, "match", f.Match)
}

type DeferredPurchaseQueryFilter struct {
	Description  string       `form:"description" filterField:"false"`
	CreditCardID ez_uuid.UUID `form:"creditCard"`
	Page
}

func (f DeferredPurchaseQueryFilter) model() models.DeferredPurchase {
	return models.DeferredPurchase{CreditCardID: f.CreditCardID.UUID}
}

func (f DeferredPurchaseQueryFilter) apply(q *gorm.DB) *gorm.DB {
	return contains(q, "description", f.Description)
}

// syncLinkedCharges keeps recurring charges that pay a card aligned
// with the card after it has been updated.
func syncLinkedCharges(tx *gorm.DB, card *models.CreditCard) error {
	n, err := models.SyncLinkedCharges(tx, *card)
	if err != nil {
		return err
	}

	log.Debug().Str("card", card.Name).Int64("charges", n).Msg("synchronised linked charges")
	return nil
}

// deleteCreditCard deletes the card.
//
// With the query parameter reassignTo set to a card ID, recurring charges
// and transactions are moved to that card. deleteTransactions=true removes
// the transactions nevertheless.
func deleteCreditCard(c *gin.Context, card *models.CreditCard) error {
	var opts models.CardDeletion

	if s := c.Query("reassignTo"); s != "" {
		var target ez_uuid.UUID
		err := target.UnmarshalParam(s)
		if err != nil {
			return models.ValidationError{Resource: "credit card deletion", Field: "reassignTo", Reason: "must be a valid UUID"}
		}
		opts.ReassignTo = target.Ptr()
	}

	if s := c.Query("deleteTransactions"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return models.ValidationError{Resource: "credit card deletion", Field: "deleteTransactions", Reason: "must be true or false"}
		}
		opts.DeleteTransactions = v
	}

	return models.DeleteCreditCard(models.DB, card.ID, opts)
}

func validateTransaction(t *models.Transaction) error {
	return models.CheckNewTransaction(*t)
}

func checkTransactionUpdate(stored, updated *models.Transaction) error {
	return models.CheckTransactionUpdate(*stored, *updated)
}

// deleteTransaction deletes unposted transactions. Posted transactions
// are part of the stored balances and are kept.
func deleteTransaction(_ *gin.Context, t *models.Transaction) error {
	if t.Posted {
		return models.ErrPostedTransaction
	}
	return models.DB.Delete(t).Error
}

func registerResources(r *gin.RouterGroup) {
	resource[models.Account, *models.Account, AccountQueryFilter]{
		order: "name ASC",
	}.register(r.Group("/accounts"))

	resource[models.CreditCard, *models.CreditCard, CreditCardQueryFilter]{
		order:       "name ASC",
		afterUpdate: syncLinkedCharges,
		remove:      deleteCreditCard,
	}.register(r.Group("/credit-cards"))

	resource[models.Loan, *models.Loan, LoanQueryFilter]{
		order: "name ASC",
	}.register(r.Group("/loans"))

	resource[models.RecurringCharge, *models.RecurringCharge, RecurringChargeQueryFilter]{
		order: "day_of_month ASC, name ASC",
	}.register(r.Group("/recurring-charges"))

	// Deductions are set when the configuration is created. A new
	// configuration is created for changed deductions.
	resource[models.PaycheckConfig, *models.PaycheckConfig, PaycheckConfigQueryFilter]{
		order:   "effective_date DESC, created_at DESC",
		preload: []string{"Deductions"},
		omit:    []string{clause.Associations},
	}.register(r.Group("/paycheck-configs"))

	resource[models.SharedExpense, *models.SharedExpense, SharedExpenseQueryFilter]{
		order: "name ASC",
	}.register(r.Group("/shared-expenses"))

	transactions := r.Group("/transactions")
	resource[models.Transaction, *models.Transaction, TransactionQueryFilter]{
		order:       models.TransactionOrder,
		validate:    validateTransaction,
		checkUpdate: checkTransactionUpdate,
		remove:      deleteTransaction,
	}.register(transactions)
	{
		transactions.OPTIONS("/:id/post", OptionsPostTransaction)
		transactions.POST("/:id/post", PostTransaction)
	}

	resource[models.MatchRule, *models.MatchRule, MatchRuleQueryFilter]{
		order: "priority ASC, match ASC",
	}.register(r.Group("/match-rules"))

	resource[models.DeferredPurchase, *models.DeferredPurchase, DeferredPurchaseQueryFilter]{
		order: "promo_end_date ASC",
	}.register(r.Group("/deferred-purchases"))
}
