package services

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/hishab-app/hishab_backend/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries. Entries are
// written exclusively by the posting pipeline; there is no manual entry
// creation or edit surface.
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetEntryBySource retrieves the currently active entry for a source
	// document, or apperrors.ErrNotFound when the source has none (never
	// posted, or its newest link is a reversal).
	GetEntryBySource(ctx context.Context, sourceTable, sourceID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
}
