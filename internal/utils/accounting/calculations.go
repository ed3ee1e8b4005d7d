package accounting

import (
	"fmt"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FunctionalPrecision is the ledger's minor-unit precision. All functional
// amounts are rounded to this many decimal places, half up.
const FunctionalPrecision = 2

// RoundFunctional rounds an amount to the ledger's minor-unit precision using
// round-half-up. Ledger amounts are always positive, so half away from zero and
// half up coincide.
func RoundFunctional(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(FunctionalPrecision)
}

// ConvertToFunctional translates an original-currency amount into the
// functional currency at the given rate: amount * rate, rounded half-up to the
// minor unit.
func ConvertToFunctional(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundFunctional(amount.Mul(rate))
}

// DeriveRate computes the implied exchange rate from a caller-supplied
// functional amount: functionalAmount / amount, at rate precision.
func DeriveRate(functionalAmount, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, fmt.Errorf("cannot derive rate: original amount is zero")
	}
	return functionalAmount.Div(amount).Round(domain.RatePrecision), nil
}

// FormatEntryNumber renders a per-year sequence as a document number, e.g.
// ("JE", 2024, 7) -> "JE-2024-0007".
func FormatEntryNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// SumLines returns the debit and credit totals of a set of entry lines.
func SumLines(lines []domain.JournalEntryLine) (totalDebit, totalCredit decimal.Decimal) {
	totalDebit = decimal.Zero
	totalCredit = decimal.Zero
	for _, line := range lines {
		totalDebit = totalDebit.Add(line.DebitAmount)
		totalCredit = totalCredit.Add(line.CreditAmount)
	}
	return totalDebit, totalCredit
}

// ValidateEntryBalance checks that entry lines balance within the rounding
// tolerance and that each line uses exactly one side.
func ValidateEntryBalance(lines []domain.JournalEntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal entry must have at least two lines")
	}

	for _, line := range lines {
		debitSet := line.DebitAmount.IsPositive()
		creditSet := line.CreditAmount.IsPositive()
		if debitSet == creditSet {
			return fmt.Errorf("line %d must have exactly one of debit/credit set", line.LineNo)
		}
		if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
			return fmt.Errorf("line %d has a negative amount", line.LineNo)
		}
	}

	totalDebit, totalCredit := SumLines(lines)
	if totalDebit.Sub(totalCredit).Abs().GreaterThan(domain.BalanceTolerance) {
		return fmt.Errorf("debits %s and credits %s differ beyond tolerance", totalDebit.String(), totalCredit.String())
	}
	return nil
}
