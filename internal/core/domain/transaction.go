package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes the source document variants that share the
// transactions table.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindPayment TransactionKind = "payment"
)

// TransactionStatus is the lifecycle state of a source transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusPaid      TransactionStatus = "paid"
	StatusCancelled TransactionStatus = "cancelled"
)

// CanTransitionTo reports whether a status change is allowed.
// Cancelled is terminal. Paid can move back to pending (un-paying reverses the
// posted entry) or on to cancelled.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCancelled
	case StatusPaid:
		return next == StatusPending || next == StatusCancelled
	case StatusCancelled:
		return false
	}
	return false
}

// PaymentMethod is how a transaction settles.
type PaymentMethod string

const (
	MethodCash          PaymentMethod = "cash"
	MethodBankTransfer  PaymentMethod = "bank_transfer"
	MethodCheque        PaymentMethod = "cheque"
	MethodMobileBanking PaymentMethod = "mobile_banking"
	MethodCard          PaymentMethod = "card"
)

// CalculationMethod names which of exchangeRate/functionalAmount is the
// independent input on a foreign-currency transaction. The other field is
// always derived and recomputed when the input changes.
type CalculationMethod string

const (
	// AmountDrivesFunctional: the rate is the input (supplied or resolved from
	// the rate store); functionalAmount = amount * rate.
	AmountDrivesFunctional CalculationMethod = "amount_drives_functional"
	// FunctionalDrivesRate: the functional amount is the input; the rate is
	// derived as functionalAmount / amount.
	FunctionalDrivesRate CalculationMethod = "functional_drives_rate"
)

// Transaction is a source document (expense or payment) whose state changes
// drive journal posting. ExchangeRate, FunctionalAmount and JournalEntryID are
// denormalized posting results except for whichever of rate/functional the
// CalculationMethod marks as the caller's input.
type Transaction struct {
	TransactionID     string            `json:"transactionID"`     // Primary Key (e.g., UUID)
	TransactionNumber string            `json:"transactionNumber"` // e.g., EXP-2024-0001
	Kind              TransactionKind   `json:"kind"`
	TransactionDate   time.Time         `json:"transactionDate"`
	Amount            decimal.Decimal   `json:"amount"` // Positive, original currency
	CurrencyCode      string            `json:"currencyCode"`
	Category          string            `json:"category"` // Free text, resolved via the account catalog
	PaymentMethod     PaymentMethod     `json:"paymentMethod"`
	BankAccountID     *string           `json:"bankAccountID,omitempty"` // Nullable FK -> bank_accounts
	Status            TransactionStatus `json:"status"`
	Description       string            `json:"description"`
	ExchangeRate      *decimal.Decimal  `json:"exchangeRate,omitempty"`     // Nullable until posted
	FunctionalAmount  *decimal.Decimal  `json:"functionalAmount,omitempty"` // Nullable until posted
	CalculationMethod CalculationMethod `json:"calculationMethod"`
	RateSource        RateSource        `json:"rateSource,omitempty"` // Provenance of the applied rate
	JournalEntryID    *string           `json:"journalEntryID,omitempty"`
	AuditFields
}

// IsForeign reports whether the transaction needs FX conversion against the
// configured functional currency.
func (t *Transaction) IsForeign(functionalCurrency string) bool {
	return t.CurrencyCode != functionalCurrency
}

// PostingInputsChanged reports whether any field that feeds the posted journal
// amounts differs from the prior version: amount, currency, the calculation
// method, or the method's independent input.
func (t *Transaction) PostingInputsChanged(prior *Transaction) bool {
	if prior == nil {
		return true
	}
	if !t.Amount.Equal(prior.Amount) || t.CurrencyCode != prior.CurrencyCode {
		return true
	}
	if t.CalculationMethod != prior.CalculationMethod {
		return true
	}
	switch t.CalculationMethod {
	case FunctionalDrivesRate:
		return !decimalPtrEqual(t.FunctionalAmount, prior.FunctionalAmount)
	default:
		// The rate is the input only when the caller supplied one explicitly.
		if t.RateSource == RateSourceDocument || prior.RateSource == RateSourceDocument {
			return !decimalPtrEqual(t.ExchangeRate, prior.ExchangeRate)
		}
	}
	return false
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
