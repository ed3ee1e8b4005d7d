package services

import (
	"fmt"
	"time"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/hishab-app/hishab_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryLeg is one side of an entry under construction. Functional is the leg
// amount in the functional currency, already rounded to the minor unit.
type EntryLeg struct {
	Account     domain.Account
	Debit       bool
	Functional  decimal.Decimal
	Description string
}

// BuildEntryInput carries everything EntryBuilder needs to assemble one entry.
// All legs share the transaction's original currency, amount and applied rate
// so each line stays traceable back to the source values.
type BuildEntryInput struct {
	EntryNumber    string
	EntryDate      time.Time
	Description    string
	Reference      string
	SourceType     string
	SourceID       string
	CurrencyCode   string
	OriginalAmount decimal.Decimal
	Rate           decimal.Decimal
	Legs           []EntryLeg
	ActorID        string
	Now            time.Time
}

// EntryBuilder assembles balanced journal entries. It is deterministic apart
// from id generation and performs no I/O; persistence and numbering belong to
// the posting pipeline.
type EntryBuilder struct{}

// NewEntryBuilder creates a new entry builder.
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{}
}

// Build assembles a posted entry from legs. Rounding drift between debit and
// credit totals, up to the balance tolerance, is absorbed by adjusting the
// last leg; anything larger fails with apperrors.ErrImbalancedEntry rather
// than forcing balance.
func (b *EntryBuilder) Build(in BuildEntryInput) (*domain.JournalEntry, error) {
	if len(in.Legs) < 2 {
		return nil, fmt.Errorf("%w: entry needs at least two legs", apperrors.ErrImbalancedEntry)
	}

	hasDebit, hasCredit := false, false
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, leg := range in.Legs {
		if leg.Functional.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: leg for account %s has non-positive amount %s", apperrors.ErrImbalancedEntry, leg.Account.Code, leg.Functional.String())
		}
		if leg.Debit {
			hasDebit = true
			totalDebit = totalDebit.Add(leg.Functional)
		} else {
			hasCredit = true
			totalCredit = totalCredit.Add(leg.Functional)
		}
	}
	if !hasDebit || !hasCredit {
		return nil, fmt.Errorf("%w: entry needs at least one debit and one credit leg", apperrors.ErrImbalancedEntry)
	}

	diff := totalDebit.Sub(totalCredit)
	if diff.Abs().GreaterThan(domain.BalanceTolerance) {
		return nil, fmt.Errorf("%w: debits %s and credits %s differ by %s", apperrors.ErrImbalancedEntry, totalDebit.String(), totalCredit.String(), diff.String())
	}

	legs := make([]EntryLeg, len(in.Legs))
	copy(legs, in.Legs)
	if !diff.IsZero() {
		last := &legs[len(legs)-1]
		if last.Debit {
			last.Functional = last.Functional.Sub(diff)
			totalDebit = totalDebit.Sub(diff)
		} else {
			last.Functional = last.Functional.Add(diff)
			totalCredit = totalCredit.Add(diff)
		}
	}

	entryID := uuid.NewString()
	lines := make([]domain.JournalEntryLine, len(legs))
	for i, leg := range legs {
		line := domain.JournalEntryLine{
			LineID:           uuid.NewString(),
			EntryID:          entryID,
			LineNo:           i + 1,
			AccountCode:      leg.Account.Code,
			AccountName:      leg.Account.Name,
			AccountType:      leg.Account.AccountType,
			OriginalCurrency: in.CurrencyCode,
			OriginalAmount:   in.OriginalAmount,
			FxRateUsed:       in.Rate,
			Description:      leg.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     in.Now,
				CreatedBy:     in.ActorID,
				LastUpdatedAt: in.Now,
				LastUpdatedBy: in.ActorID,
			},
		}
		if leg.Debit {
			line.DebitAmount = leg.Functional
			line.FunctionalDebit = leg.Functional
		} else {
			line.CreditAmount = leg.Functional
			line.FunctionalCredit = leg.Functional
		}
		lines[i] = line
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImbalancedEntry, err)
	}

	entry := &domain.JournalEntry{
		EntryID:         entryID,
		EntryNumber:     in.EntryNumber,
		EntryDate:       in.EntryDate,
		Description:     in.Description,
		Reference:       in.Reference,
		TotalDebit:      totalDebit,
		TotalCredit:     totalCredit,
		Status:          domain.EntryPosted,
		SourceType:      in.SourceType,
		SourceID:        in.SourceID,
		IsAutoGenerated: true,
		IsReversal:      false,
		AuditFields: domain.AuditFields{
			CreatedAt:     in.Now,
			CreatedBy:     in.ActorID,
			LastUpdatedAt: in.Now,
			LastUpdatedBy: in.ActorID,
		},
		Lines: lines,
	}
	return entry, nil
}

// BuildReversal assembles the mirror of a posted entry: identical accounts
// and functional amounts with debit and credit swapped on every line. The
// mirror keeps the original's entry date so the pair nets to zero in the same
// period, and references the original by id and number.
func (b *EntryBuilder) BuildReversal(original *domain.JournalEntry, originalLines []domain.JournalEntryLine, entryNumber string, description string, actorID string, now time.Time) (*domain.JournalEntry, error) {
	if len(originalLines) < 2 {
		return nil, fmt.Errorf("%w: original entry %s has %d lines", apperrors.ErrImbalancedEntry, original.EntryID, len(originalLines))
	}

	entryID := uuid.NewString()
	lines := make([]domain.JournalEntryLine, len(originalLines))
	for i, orig := range originalLines {
		lines[i] = domain.JournalEntryLine{
			LineID:           uuid.NewString(),
			EntryID:          entryID,
			LineNo:           orig.LineNo,
			AccountCode:      orig.AccountCode,
			AccountName:      orig.AccountName,
			AccountType:      orig.AccountType,
			DebitAmount:      orig.CreditAmount,
			CreditAmount:     orig.DebitAmount,
			FunctionalDebit:  orig.FunctionalCredit,
			FunctionalCredit: orig.FunctionalDebit,
			OriginalCurrency: orig.OriginalCurrency,
			OriginalAmount:   orig.OriginalAmount,
			FxRateUsed:       orig.FxRateUsed,
			Description:      orig.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImbalancedEntry, err)
	}

	entry := &domain.JournalEntry{
		EntryID:         entryID,
		EntryNumber:     entryNumber,
		EntryDate:       original.EntryDate,
		Description:     description,
		Reference:       original.EntryNumber,
		TotalDebit:      original.TotalCredit,
		TotalCredit:     original.TotalDebit,
		Status:          domain.EntryPosted,
		SourceType:      original.SourceType,
		SourceID:        original.SourceID,
		IsAutoGenerated: true,
		IsReversal:      true,
		ReversesEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
		Lines: lines,
	}
	return entry, nil
}
