package ports

import (
	"context"
	"time"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

// ListCasesFilter carries all query parameters for listing cases.
// Scoping fields are always set by the service layer from the actor's role.
type ListCasesFilter struct {
	DoctorID         string                  // non-empty = scoped to submitting doctor
	AssignedToID     string                  // non-empty = scoped to assigned technician
	Status           domain.CaseStatus       // optional
	AssignmentStatus domain.AssignmentStatus // optional
	OldestFirst      bool                    // default is newest-first
	Page             int                     // 1-based; 0 disables pagination
	Limit            int                     // max rows per page (capped at 100 by service)
}

// CaseRepository defines persistence operations for cases. The conditional
// mutations (Claim, Complete, AttachReportPDF) re-check their precondition
// state inside a single atomic update and return domain.ErrCaseNotFound when
// no document matched; the service disambiguates missing vs. stale state.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	FindByID(ctx context.Context, id string) (*domain.Case, error)
	// FindByIdempotencyKey retrieves the case a doctor previously created
	// with the given key.
	FindByIdempotencyKey(ctx context.Context, doctorID, key string) (*domain.Case, error)
	// List returns a page of cases matching filter and the total count.
	List(ctx context.Context, filter ListCasesFilter) ([]*domain.Case, int64, error)

	// Claim assigns the case to the technician iff it is still pending and
	// unassigned, returning the updated case.
	Claim(ctx context.Context, caseID, techID, techName string, at time.Time) (*domain.Case, error)
	// Complete attaches the report and moves status and assignment status to
	// completed in one write, iff the case is still pending.
	Complete(ctx context.Context, caseID string, report *domain.Report) (*domain.Case, error)
	// AttachReportPDF sets the report PDF fields iff the case is completed
	// and no PDF is attached yet.
	AttachReportPDF(ctx context.Context, caseID, pdfFile string, at time.Time) (*domain.Case, error)

	// PendingCountsByTechnician returns, per technician ID, the number of
	// pending cases currently assigned to them. Technicians with no pending
	// cases are absent from the map.
	PendingCountsByTechnician(ctx context.Context, techIDs []string) (map[string]int64, error)
	// CountByDoctor counts a doctor's cases, optionally filtered by status
	// (empty status counts all).
	CountByDoctor(ctx context.Context, doctorID string, status domain.CaseStatus) (int64, error)
	// CountByTechnician counts cases assigned to a technician, optionally
	// filtered by status.
	CountByTechnician(ctx context.Context, techID string, status domain.CaseStatus) (int64, error)
}
