package handler

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oculab/microbio-portal/internal/core/domain"
	"github.com/oculab/microbio-portal/internal/core/ports"
	"github.com/oculab/microbio-portal/internal/export"
	"github.com/oculab/microbio-portal/internal/metrics"
)

// ExportHandler serves the generated documents: CSV dumps, rendered
// laboratory report PDFs, and stored uploads (slide images, signed PDFs).
type ExportHandler struct {
	service ports.CaseService
}

func NewExportHandler(service ports.CaseService) *ExportHandler {
	return &ExportHandler{service: service}
}

// CasesCSV handles GET /v1/exports/cases.csv: the caller's full case set as
// CSV. Doctors and technicians get different column layouts.
//
// @Summary      Export the caller's cases as CSV
// @Tags         exports
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string  "CSV document"
// @Router       /v1/exports/cases.csv [get]
func (h *ExportHandler) CasesCSV(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	cases, err := h.service.ListForExport(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	var filename string
	if actor.Role == domain.RoleLabTech {
		err = export.LabCSV(&buf, cases)
		filename = export.LabCSVFilename(time.Now().UTC())
	} else {
		err = export.DoctorCSV(&buf, cases)
		filename = export.DoctorCSVFilename(time.Now().UTC())
	}
	if err != nil {
		return err
	}

	metrics.ExportsGeneratedTotal.WithLabelValues("csv").Inc()

	setAttachment(c, filename)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// CaseReportPDF handles GET /v1/cases/:id/report.pdf and renders the laboratory
// report document for a completed case.
//
// @Summary      Download the rendered laboratory report PDF
// @Tags         exports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {file}    file
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/cases/{id}/report.pdf [get]
func (h *ExportHandler) CaseReportPDF(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	kase, err := h.service.Get(ctx, c.Param("id"), actor)
	if err != nil {
		return err
	}
	if !kase.Completed() {
		return domain.ErrCaseNotEligible
	}

	// The slide image is embedded when it can be read; the report renders
	// without it otherwise.
	var buf bytes.Buffer
	img, _, imgErr := h.service.OpenImage(ctx, kase.ID, actor)
	if imgErr == nil {
		defer img.Close()
		err = export.ReportPDF(&buf, kase, img)
	} else {
		err = export.ReportPDF(&buf, kase, nil)
	}
	if err != nil {
		return err
	}

	metrics.ExportsGeneratedTotal.WithLabelValues("pdf").Inc()

	setAttachment(c, export.ReportPDFFilename(kase))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

// DownloadReportPDF handles GET /v1/cases/:id/report/pdf, streaming the signed
// microbiology PDF the technician uploaded. Only the submitting doctor may
// fetch it.
//
// @Summary      Download the technician-uploaded microbiology PDF
// @Tags         exports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {file}    file
// @Failure      404  {object}  errorResponse
// @Router       /v1/cases/{id}/report/pdf [get]
func (h *ExportHandler) DownloadReportPDF(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	rc, kase, err := h.service.OpenReportPDF(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	defer rc.Close()

	setAttachment(c, export.UploadedPDFFilename(kase))
	return c.Stream(http.StatusOK, "application/pdf", rc)
}

// CaseImage handles GET /v1/cases/:id/image, streaming the stored slide image.
//
// @Summary      Download the slide image of a case
// @Tags         exports
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {file}    file
// @Failure      404  {object}  errorResponse
// @Router       /v1/cases/{id}/image [get]
func (h *ExportHandler) CaseImage(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	rc, kase, err := h.service.OpenImage(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(kase.ImageFile))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, contentType, rc)
}

func setAttachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", filename))
}
