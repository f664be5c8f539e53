package ports

import (
	"context"
	"io"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

// FileUpload carries one uploaded file from the transport layer.
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// SubmitCaseInput carries all data needed to submit a new case.
// Enum-valued fields arrive as wire codes already checked by the transport
// layer's validator.
type SubmitCaseInput struct {
	Actor          domain.Actor
	CentreName     string
	PatientRef     string
	Eye            string
	Sample         string
	DurationValue  int
	DurationUnit   string
	OnMedication   bool
	MedsCategory   string
	MedsCustom     string
	Impression     string
	Stains         []string
	Image          *FileUpload // required slide image
	ExplicitTechID string      // optional explicit technician choice
	IdempotencyKey string
}

// SubmitCaseResult is returned by the service after submitting a case.
type SubmitCaseResult struct {
	Case *domain.Case
	// AutoAssigned is false when the submitter chose the technician.
	AutoAssigned bool
	// AlreadyExisted is true when the Idempotency-Key matched an existing case.
	AlreadyExisted bool
}

// CompleteReportInput carries the laboratory interpretation for a case.
type CompleteReportInput struct {
	RCCode            string
	LabID             string
	Quality           string
	SampleSuitable    bool
	SuitabilityReason string
	Findings          string
	Comments          string
	AuthorizedBy      string
	PDF               *FileUpload // optional microbiology PDF
}

// ListCasesInput carries all parameters for the list endpoint. Scope is
// derived from the actor's role: doctors see their own submissions,
// technicians see cases assigned to them.
type ListCasesInput struct {
	Actor            domain.Actor
	Status           string
	AssignmentStatus string
	Page             int
	Limit            int
}

// ListCasesResult is returned by List.
type ListCasesResult struct {
	Items      []*domain.Case
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DashboardStats is the per-actor case summary shown on the portal toolbar.
type DashboardStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

// CaseService defines the use-case operations of the portal core.
//
// Every state-changing operation takes the acting user explicitly and emits
// one history entry on success; history writes are best-effort and never
// fail the primary operation.
type CaseService interface {
	Submit(ctx context.Context, in SubmitCaseInput) (*SubmitCaseResult, error)
	Claim(ctx context.Context, caseID string, actor domain.Actor) (*domain.Case, error)
	CompleteWithReport(ctx context.Context, caseID string, in CompleteReportInput, actor domain.Actor) (*domain.Case, error)
	AttachReportPDF(ctx context.Context, caseID string, pdf FileUpload, actor domain.Actor) (*domain.Case, error)

	Get(ctx context.Context, caseID string, actor domain.Actor) (*domain.Case, error)
	List(ctx context.Context, in ListCasesInput) (*ListCasesResult, error)
	// ListForExport returns the actor's full case set, newest-first,
	// without pagination.
	ListForExport(ctx context.Context, actor domain.Actor) ([]*domain.Case, error)
	History(ctx context.Context, caseID string, actor domain.Actor) ([]*domain.HistoryEntry, error)
	Stats(ctx context.Context, actor domain.Actor) (*DashboardStats, error)

	// OpenImage streams the stored slide image for a case the actor may see.
	OpenImage(ctx context.Context, caseID string, actor domain.Actor) (io.ReadCloser, *domain.Case, error)
	// OpenReportPDF streams the technician-uploaded microbiology PDF.
	OpenReportPDF(ctx context.Context, caseID string, actor domain.Actor) (io.ReadCloser, *domain.Case, error)
}
