package repositories

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// JournalEntryReader defines read operations for journal entry data
type JournalEntryReader interface {
	// FindEntryByID retrieves a specific entry header by its identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves an entry's lines ordered by line number.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error)

	// ListEntries retrieves a paginated list of entries using token-based
	// pagination, newest first. includeReversals=false hides reversal entries.
	ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)

	// FindNewestLinkBySource retrieves the most recent auto-journal link for a
	// source document. The caller decides whether an active entry exists by
	// inspecting IsReversal. Returns apperrors.ErrNotFound when the source was
	// never posted.
	FindNewestLinkBySource(ctx context.Context, sourceTable, sourceID string) (*domain.AutoJournalLink, error)
}

// JournalEntryWriter defines write operations for journal entry data. Entries
// are insert-only; there is no update path.
type JournalEntryWriter interface {
	// SaveEntryInTx inserts the entry header and its lines inside an existing
	// database transaction.
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalEntryLine) error

	// SaveLinkInTx appends an auto-journal link inside an existing database
	// transaction.
	SaveLinkInTx(ctx context.Context, tx pgx.Tx, link domain.AutoJournalLink) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
