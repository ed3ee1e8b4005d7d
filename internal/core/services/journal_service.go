package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/dto"
)

// journalService provides read access to the auto-generated ledger. Entries
// are written exclusively by the posting pipeline, so this service carries no
// create or edit operations.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade) portssvc.JournalSvcFacade {
	return &journalService{journalRepo: journalRepo}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry %s: %w", entryID, err)
	}
	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lines for journal entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

func (s *journalService) GetEntryBySource(ctx context.Context, sourceTable, sourceID string) (*domain.JournalEntry, error) {
	link, err := s.journalRepo.FindNewestLinkBySource(ctx, sourceTable, sourceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active journal entry for %s/%s", apperrors.ErrNotFound, sourceTable, sourceID)
		}
		return nil, fmt.Errorf("failed to look up journal link for %s/%s: %w", sourceTable, sourceID, err)
	}
	// A reversal as the newest link means the source currently has no active
	// posting.
	if link.IsReversal {
		return nil, fmt.Errorf("%w: no active journal entry for %s/%s", apperrors.ErrNotFound, sourceTable, sourceID)
	}
	return s.GetEntryByID(ctx, link.EntryID)
}

func (s *journalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToListJournalEntryResponse(entries),
		NextToken: nextToken,
	}, nil
}
