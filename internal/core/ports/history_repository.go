package ports

import (
	"context"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

// HistoryRepository handles the append-only case audit trail.
type HistoryRepository interface {
	// Insert appends one entry. Entries are never updated or deleted.
	Insert(ctx context.Context, e *domain.HistoryEntry) error
	// ListByCase returns up to limit entries for a case, newest-first.
	ListByCase(ctx context.Context, caseID string, limit int) ([]*domain.HistoryEntry, error)
}
