package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

func completedCase() *domain.Case {
	kase := sampleCase()
	kase.Status = domain.CaseStatusCompleted
	kase.AssignmentStatus = domain.AssignmentCompleted
	kase.Report = &domain.Report{
		RCCode:         "RC-77",
		LabID:          "LAB-0042",
		Quality:        domain.QualityGood,
		SampleSuitable: true,
		Findings:       "Septate fungal filaments seen.",
		AuthorizedBy:   "Ravi Kumar",
		CreatedAt:      time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC),
	}
	return kase
}

// ---------------------------------------------------------------------------
// CSV export
// ---------------------------------------------------------------------------

func TestExportHandler_CasesCSV_DoctorLayout(t *testing.T) {
	stub := &stubCaseService{
		exportFn: func(ctx context.Context, actor domain.Actor) ([]*domain.Case, error) {
			return []*domain.Case{completedCase()}, nil
		},
	}
	handler := NewExportHandler(stub)

	c, rec := newCaseContext(t, http.MethodGet, "/v1/exports/cases.csv", nil, "")
	asDoctor(c)

	if err := handler.CasesCSV(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "doctor_cases_") {
		t.Errorf("content disposition = %q", cd)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Lab ID") || !strings.Contains(body, "PAT-0042") {
		t.Errorf("doctor layout missing expected columns:\n%s", body)
	}
}

func TestExportHandler_CasesCSV_LabLayout(t *testing.T) {
	stub := &stubCaseService{
		exportFn: func(ctx context.Context, actor domain.Actor) ([]*domain.Case, error) {
			if actor.Role != domain.RoleLabTech {
				t.Fatalf("actor role = %q", actor.Role)
			}
			return []*domain.Case{sampleCase()}, nil
		},
	}
	handler := NewExportHandler(stub)

	c, rec := newCaseContext(t, http.MethodGet, "/v1/exports/cases.csv", nil, "")
	asTechnician(c)

	if err := handler.CasesCSV(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "lab_cases_") {
		t.Errorf("content disposition = %q", cd)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Assignment Status") {
		t.Errorf("lab layout missing expected columns:\n%s", body)
	}
}

// ---------------------------------------------------------------------------
// Rendered report PDF
// ---------------------------------------------------------------------------

func TestExportHandler_CaseReportPDF_RendersCompletedCase(t *testing.T) {
	stub := &stubCaseService{
		getFn: func(ctx context.Context, caseID string, actor domain.Actor) (*domain.Case, error) {
			return completedCase(), nil
		},
		// Image reads can fail without failing the render.
		openImageFn: func(ctx context.Context, caseID string, actor domain.Actor) (io.ReadCloser, *domain.Case, error) {
			return nil, nil, fs.ErrNotExist
		},
	}
	handler := NewExportHandler(stub)

	c, rec := newCaseContext(t, http.MethodGet, "/v1/cases/case_1/report.pdf", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("case_1")
	asDoctor(c)

	if err := handler.CaseReportPDF(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "application/pdf") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "Microbio_Report_PAT-0042") {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("body does not look like a PDF: %q", rec.Body.Bytes()[:8])
	}
}

func TestExportHandler_CaseReportPDF_RejectsPendingCase(t *testing.T) {
	stub := &stubCaseService{
		getFn: func(ctx context.Context, caseID string, actor domain.Actor) (*domain.Case, error) {
			return sampleCase(), nil
		},
	}
	handler := NewExportHandler(stub)

	c, _ := newCaseContext(t, http.MethodGet, "/v1/cases/case_1/report.pdf", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("case_1")
	asDoctor(c)

	if err := handler.CaseReportPDF(c); !errors.Is(err, domain.ErrCaseNotEligible) {
		t.Fatalf("err = %v, want ErrCaseNotEligible", err)
	}
}

// ---------------------------------------------------------------------------
// Stored uploads
// ---------------------------------------------------------------------------

func TestExportHandler_DownloadReportPDF_StreamsUpload(t *testing.T) {
	stub := &stubCaseService{
		openPDFFn: func(ctx context.Context, caseID string, actor domain.Actor) (io.ReadCloser, *domain.Case, error) {
			return io.NopCloser(strings.NewReader("signed-pdf-bytes")), completedCase(), nil
		},
	}
	handler := NewExportHandler(stub)

	c, rec := newCaseContext(t, http.MethodGet, "/v1/cases/case_1/report/pdf", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("case_1")
	asDoctor(c)

	if err := handler.DownloadReportPDF(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "signed-pdf-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "microbio_report_PAT-0042.pdf") {
		t.Errorf("content disposition = %q", cd)
	}
}

func TestExportHandler_DownloadReportPDF_MissingPassesThrough(t *testing.T) {
	stub := &stubCaseService{
		openPDFFn: func(ctx context.Context, caseID string, actor domain.Actor) (io.ReadCloser, *domain.Case, error) {
			return nil, nil, domain.ErrReportPDFMissing
		},
	}
	handler := NewExportHandler(stub)

	c, _ := newCaseContext(t, http.MethodGet, "/v1/cases/case_1/report/pdf", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("case_1")
	asDoctor(c)

	if err := handler.DownloadReportPDF(c); !errors.Is(err, domain.ErrReportPDFMissing) {
		t.Fatalf("err = %v, want ErrReportPDFMissing", err)
	}
}

func TestExportHandler_CaseImage_ContentTypeFromExtension(t *testing.T) {
	stub := &stubCaseService{
		openImageFn: func(ctx context.Context, caseID string, actor domain.Actor) (io.ReadCloser, *domain.Case, error) {
			return io.NopCloser(strings.NewReader("png-bytes")), sampleCase(), nil
		},
	}
	handler := NewExportHandler(stub)

	c, rec := newCaseContext(t, http.MethodGet, "/v1/cases/case_1/image", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("case_1")
	asDoctor(c)

	if err := handler.CaseImage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "image/png") {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "png-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
