package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"github.com/oculab/microbio-portal/internal/core/domain"
	"github.com/oculab/microbio-portal/internal/core/ports"
	"github.com/oculab/microbio-portal/internal/metrics"
)

// historyDisplayLimit caps the audit entries returned per case.
const historyDisplayLimit = 20

// CaseService implements the portal's case workflow: submission with
// technician allocation, claiming, report completion, and the read paths
// behind the dashboards and exports.
type CaseService struct {
	cases   ports.CaseRepository
	users   ports.UserRepository
	history ports.HistoryRepository
	files   ports.FileStore
	logger  zerolog.Logger
}

func NewCaseService(
	cases ports.CaseRepository,
	users ports.UserRepository,
	history ports.HistoryRepository,
	files ports.FileStore,
	logger zerolog.Logger,
) *CaseService {
	return &CaseService{
		cases:   cases,
		users:   users,
		history: history,
		files:   files,
		logger:  logger,
	}
}

// Submit creates a new case and assigns it to a technician. If an
// idempotency key is provided and already seen for this doctor, the
// previously created case is returned without side effects. With no active
// technicians the submission is refused and nothing is persisted.
func (s *CaseService) Submit(ctx context.Context, in ports.SubmitCaseInput) (*ports.SubmitCaseResult, error) {
	if in.Actor.Role != domain.RoleDoctor {
		return nil, domain.ErrForbidden
	}
	if in.Image == nil || in.Image.Content == nil {
		return nil, domain.ErrMissingSlideImage
	}

	if in.IdempotencyKey != "" {
		existing, err := s.cases.FindByIdempotencyKey(ctx, in.Actor.ID, in.IdempotencyKey)
		if err == nil && existing != nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("case_number", existing.CaseNumber).Msg("idempotent replay")
			return &ports.SubmitCaseResult{Case: existing, AlreadyExisted: true}, nil
		}
	}

	techs, err := s.users.ListTechnicians(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("submit case: list technicians: %w", err)
	}

	var explicit *domain.User
	if in.ExplicitTechID != "" {
		explicit, err = s.users.FindByID(ctx, in.ExplicitTechID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrTechnicianNotFound
			}
			return nil, fmt.Errorf("submit case: resolve technician: %w", err)
		}
		if explicit.Role != domain.RoleLabTech {
			return nil, domain.ErrTechnicianNotFound
		}
	}

	loads, err := s.technicianLoads(ctx, techs)
	if err != nil {
		return nil, fmt.Errorf("submit case: pending counts: %w", err)
	}

	decision, err := decideAssignment(explicit, loads)
	if err != nil {
		metrics.SubmissionsRejectedTotal.WithLabelValues("no_technicians").Inc()
		return nil, err
	}

	imagePath, err := s.files.Save(ctx, ports.FileCategorySlides, in.Image.Filename, in.Image.Content)
	if err != nil {
		return nil, fmt.Errorf("submit case: store slide image: %w", err)
	}

	now := time.Now().UTC()
	assignedAt := now
	newCase := &domain.Case{
		CaseNumber:       generateCaseNumber(),
		DoctorID:         in.Actor.ID,
		DoctorName:       in.Actor.FullName,
		CentreName:       in.CentreName,
		PatientRef:       in.PatientRef,
		Eye:              domain.Eye(in.Eye),
		Sample:           domain.SampleType(in.Sample),
		DurationValue:    in.DurationValue,
		DurationUnit:     domain.DurationUnit(in.DurationUnit),
		OnMedication:     in.OnMedication,
		Impression:       domain.Impression(in.Impression),
		Stains:           in.Stains,
		ImageFile:        imagePath,
		Status:           domain.CaseStatusPending,
		AssignmentStatus: domain.AssignmentAssigned,
		AssignedToID:     decision.tech.ID,
		AssignedToName:   decision.tech.FullName,
		SubmittedAt:      now,
		AssignedAt:       &assignedAt,
		IdempotencyKey:   in.IdempotencyKey,
	}
	if in.OnMedication {
		newCase.MedsCategory = domain.MedsCategory(in.MedsCategory)
		newCase.MedsCustom = in.MedsCustom
	}

	if err := s.cases.Create(ctx, newCase); err != nil {
		_ = s.files.Remove(ctx, imagePath)
		// A concurrent submit with the same key won the insert: hand back
		// the winner instead of surfacing the collision.
		if errors.Is(err, domain.ErrDuplicateSubmission) && in.IdempotencyKey != "" {
			if existing, findErr := s.cases.FindByIdempotencyKey(ctx, in.Actor.ID, in.IdempotencyKey); findErr == nil {
				return &ports.SubmitCaseResult{Case: existing, AlreadyExisted: true}, nil
			}
		}
		return nil, fmt.Errorf("submit case: %w", err)
	}

	assignmentMsg := fmt.Sprintf("assigned to %s", decision.tech.FullName)
	mode := "explicit"
	if decision.auto {
		assignmentMsg = fmt.Sprintf("auto-assigned to %s (least busy)", decision.tech.FullName)
		mode = "auto"
	}
	s.recordHistory(ctx, newCase.ID, &in.Actor, domain.ActionSubmitted,
		fmt.Sprintf("Submitted by Dr. %s and %s", in.Actor.FullName, assignmentMsg))

	metrics.CasesSubmittedTotal.WithLabelValues(mode).Inc()
	s.logger.Info().
		Str("case_number", newCase.CaseNumber).
		Str("patient_ref", newCase.PatientRef).
		Str("assigned_to", decision.tech.Username).
		Bool("auto", decision.auto).
		Msg("case submitted")

	return &ports.SubmitCaseResult{Case: newCase, AutoAssigned: decision.auto}, nil
}

// Claim self-assigns an unassigned pending case to the acting technician.
// The precondition is re-checked inside the repository's atomic update; a
// case that was claimed or completed in the meantime fails closed.
func (s *CaseService) Claim(ctx context.Context, caseID string, actor domain.Actor) (*domain.Case, error) {
	if actor.Role != domain.RoleLabTech {
		return nil, domain.ErrForbidden
	}

	updated, err := s.cases.Claim(ctx, caseID, actor.ID, actor.FullName, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrCaseNotFound) {
			// No document matched the precondition: distinguish a missing
			// case from a stale claim.
			if _, findErr := s.cases.FindByID(ctx, caseID); findErr == nil {
				metrics.TransitionErrorsTotal.WithLabelValues("invalid_transition").Inc()
				return nil, domain.ErrInvalidStateTransition
			}
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("claim case: %w", err)
	}

	s.recordHistory(ctx, updated.ID, &actor, domain.ActionAssigned,
		fmt.Sprintf("Assigned to %s", actor.FullName))

	metrics.CasesClaimedTotal.Inc()
	s.logger.Info().
		Str("case_number", updated.CaseNumber).
		Str("technician", actor.Username).
		Msg("case claimed")

	return updated, nil
}

// CompleteWithReport attaches the laboratory report and closes the case.
// Report persistence and both status moves commit as one write against a
// still-pending case; any other state fails closed with no report attached.
func (s *CaseService) CompleteWithReport(ctx context.Context, caseID string, in ports.CompleteReportInput, actor domain.Actor) (*domain.Case, error) {
	if actor.Role != domain.RoleLabTech {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	report := &domain.Report{
		RCCode:            in.RCCode,
		LabID:             in.LabID,
		Quality:           domain.Quality(in.Quality),
		SampleSuitable:    in.SampleSuitable,
		SuitabilityReason: in.SuitabilityReason,
		Findings:          in.Findings,
		Comments:          in.Comments,
		AuthorizedBy:      in.AuthorizedBy,
		CreatedAt:         now,
	}
	if report.AuthorizedBy == "" {
		report.AuthorizedBy = actor.FullName
	}

	if in.PDF != nil && in.PDF.Content != nil {
		path, err := s.files.Save(ctx, ports.FileCategoryReports, in.PDF.Filename, in.PDF.Content)
		if err != nil {
			return nil, fmt.Errorf("complete case: store pdf: %w", err)
		}
		report.PDFFile = path
		uploaded := now
		report.PDFUploadedAt = &uploaded
	}

	updated, err := s.cases.Complete(ctx, caseID, report)
	if err != nil {
		if report.PDFFile != "" {
			_ = s.files.Remove(ctx, report.PDFFile)
		}
		if errors.Is(err, domain.ErrCaseNotFound) {
			if _, findErr := s.cases.FindByID(ctx, caseID); findErr == nil {
				metrics.TransitionErrorsTotal.WithLabelValues("not_eligible").Inc()
				return nil, domain.ErrCaseNotEligible
			}
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("complete case: %w", err)
	}

	note := fmt.Sprintf("Report authored by %s", report.AuthorizedBy)
	if report.HasPDF() {
		note += " (with PDF)"
	}
	s.recordHistory(ctx, updated.ID, &actor, domain.ActionReportCompleted, note)

	pdfLabel := "no"
	if report.HasPDF() {
		pdfLabel = "yes"
	}
	metrics.CasesCompletedTotal.WithLabelValues(pdfLabel).Inc()
	s.logger.Info().
		Str("case_number", updated.CaseNumber).
		Str("technician", actor.Username).
		Bool("pdf", report.HasPDF()).
		Msg("case completed")

	return updated, nil
}

// AttachReportPDF attaches a microbiology PDF to a completed case that has
// none yet. Reports are otherwise immutable, so a second attachment is
// refused.
func (s *CaseService) AttachReportPDF(ctx context.Context, caseID string, pdf ports.FileUpload, actor domain.Actor) (*domain.Case, error) {
	if actor.Role != domain.RoleLabTech {
		return nil, domain.ErrForbidden
	}

	path, err := s.files.Save(ctx, ports.FileCategoryReports, pdf.Filename, pdf.Content)
	if err != nil {
		return nil, fmt.Errorf("attach report pdf: store pdf: %w", err)
	}

	updated, err := s.cases.AttachReportPDF(ctx, caseID, path, time.Now().UTC())
	if err != nil {
		_ = s.files.Remove(ctx, path)
		if errors.Is(err, domain.ErrCaseNotFound) {
			if existing, findErr := s.cases.FindByID(ctx, caseID); findErr == nil {
				if existing.Report.HasPDF() {
					return nil, domain.ErrReportPDFExists
				}
				return nil, domain.ErrCaseNotEligible
			}
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("attach report pdf: %w", err)
	}

	s.recordHistory(ctx, updated.ID, &actor, domain.ActionPDFAttached,
		fmt.Sprintf("Microbiology PDF attached by %s", actor.FullName))

	s.logger.Info().
		Str("case_number", updated.CaseNumber).
		Str("technician", actor.Username).
		Msg("report pdf attached")

	return updated, nil
}

// Get retrieves a single case the actor is allowed to see.
func (s *CaseService) Get(ctx context.Context, caseID string, actor domain.Actor) (*domain.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := actorMaySee(actor, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns a page of cases scoped to the actor: doctors see their own
// submissions, technicians see cases assigned to them. The technician
// pending queue drains oldest-first; every other view reads newest-first.
func (s *CaseService) List(ctx context.Context, in ports.ListCasesInput) (*ports.ListCasesResult, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := in.Page
	if page <= 0 {
		page = 1
	}

	filter := ports.ListCasesFilter{
		Status:           domain.CaseStatus(in.Status),
		AssignmentStatus: domain.AssignmentStatus(in.AssignmentStatus),
		Page:             page,
		Limit:            limit,
	}
	switch in.Actor.Role {
	case domain.RoleDoctor:
		filter.DoctorID = in.Actor.ID
	case domain.RoleLabTech:
		filter.AssignedToID = in.Actor.ID
		if filter.Status == domain.CaseStatusPending {
			filter.OldestFirst = true
		}
	default:
		return nil, domain.ErrForbidden
	}

	items, total, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListCasesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// ListForExport returns the actor's complete case set, newest-first.
func (s *CaseService) ListForExport(ctx context.Context, actor domain.Actor) ([]*domain.Case, error) {
	var filter ports.ListCasesFilter
	switch actor.Role {
	case domain.RoleDoctor:
		filter.DoctorID = actor.ID
	case domain.RoleLabTech:
		filter.AssignedToID = actor.ID
	default:
		return nil, domain.ErrForbidden
	}

	items, _, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cases for export: %w", err)
	}
	return items, nil
}

// History returns the newest-first audit trail for a case the actor may see.
func (s *CaseService) History(ctx context.Context, caseID string, actor domain.Actor) ([]*domain.HistoryEntry, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := actorMaySee(actor, c); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByCase(ctx, c.ID, historyDisplayLimit)
	if err != nil {
		return nil, fmt.Errorf("case history: %w", err)
	}
	return entries, nil
}

// Stats returns the actor's dashboard counters.
func (s *CaseService) Stats(ctx context.Context, actor domain.Actor) (*ports.DashboardStats, error) {
	count := s.cases.CountByDoctor
	if actor.Role == domain.RoleLabTech {
		count = s.cases.CountByTechnician
	} else if actor.Role != domain.RoleDoctor {
		return nil, domain.ErrForbidden
	}

	total, err := count(ctx, actor.ID, "")
	if err != nil {
		return nil, fmt.Errorf("case stats: %w", err)
	}
	pending, err := count(ctx, actor.ID, domain.CaseStatusPending)
	if err != nil {
		return nil, fmt.Errorf("case stats: %w", err)
	}
	completed, err := count(ctx, actor.ID, domain.CaseStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("case stats: %w", err)
	}

	return &ports.DashboardStats{Total: total, Pending: pending, Completed: completed}, nil
}

// OpenImage streams the stored slide image for a case the actor may see.
func (s *CaseService) OpenImage(ctx context.Context, caseID string, actor domain.Actor) (io.ReadCloser, *domain.Case, error) {
	c, err := s.Get(ctx, caseID, actor)
	if err != nil {
		return nil, nil, err
	}
	if c.ImageFile == "" {
		return nil, nil, fmt.Errorf("open slide image: %w", fs.ErrNotExist)
	}
	rc, err := s.files.Open(ctx, c.ImageFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open slide image: %w", err)
	}
	return rc, c, nil
}

// OpenReportPDF streams the technician-uploaded microbiology PDF to the
// owning doctor.
func (s *CaseService) OpenReportPDF(ctx context.Context, caseID string, actor domain.Actor) (io.ReadCloser, *domain.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role != domain.RoleDoctor || c.DoctorID != actor.ID {
		return nil, nil, domain.ErrCaseNotFound
	}
	if !c.Completed() || !c.Report.HasPDF() {
		return nil, nil, domain.ErrReportPDFMissing
	}
	rc, err := s.files.Open(ctx, c.Report.PDFFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open report pdf: %w", err)
	}
	return rc, c, nil
}

// actorMaySee enforces read scoping: doctors see their own submissions,
// technicians see any case (the claim flow requires reading unassigned
// work). Denied access reads as not-found so case IDs do not leak.
func actorMaySee(actor domain.Actor, c *domain.Case) error {
	switch actor.Role {
	case domain.RoleLabTech:
		return nil
	case domain.RoleDoctor:
		if c.DoctorID == actor.ID {
			return nil
		}
	}
	return domain.ErrCaseNotFound
}

// technicianLoads pairs each active technician with their pending-case count
// and publishes the observed queue depths.
func (s *CaseService) technicianLoads(ctx context.Context, techs []*domain.User) ([]technicianLoad, error) {
	if len(techs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(techs))
	for i, t := range techs {
		ids[i] = t.ID
	}
	counts, err := s.cases.PendingCountsByTechnician(ctx, ids)
	if err != nil {
		return nil, err
	}

	loads := make([]technicianLoad, len(techs))
	for i, t := range techs {
		loads[i] = technicianLoad{tech: t, pending: counts[t.ID]}
		metrics.PendingQueueDepth.WithLabelValues(t.Username).Set(float64(counts[t.ID]))
	}
	return loads, nil
}

// recordHistory appends one audit entry. The trail is a non-transactional
// side channel: failures are counted and logged, never surfaced.
func (s *CaseService) recordHistory(ctx context.Context, caseID string, actor *domain.Actor, action, note string) {
	entry := &domain.HistoryEntry{
		CaseID:    caseID,
		ActorName: domain.SystemActorName,
		Action:    action,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	if actor != nil {
		entry.ActorID = actor.ID
		entry.ActorName = actor.FullName
	}

	if err := s.history.Insert(ctx, entry); err != nil {
		metrics.HistoryWriteFailuresTotal.Inc()
		s.logger.Warn().Err(err).Str("case_id", caseID).Str("action", action).Msg("failed to record case history")
	}
}

// generateCaseNumber returns a unique case number in the format OMC-XXXXXXXX.
func generateCaseNumber() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("OMC-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("OMC-%08X", b)
}
