package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oculab/microbio-portal/internal/core/ports"
)

// CaseHandler handles HTTP requests for case operations.
type CaseHandler struct {
	service ports.CaseService
}

func NewCaseHandler(service ports.CaseService) *CaseHandler {
	return &CaseHandler{service: service}
}

// Submit handles POST /v1/cases: a doctor submits a sample with its slide image.
//
// @Summary      Submit a new case
// @Tags         cases
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string  false  "Idempotency key to prevent duplicate submissions"
// @Param        centre_name      formData  string  true   "Submitting centre"
// @Param        patient_ref      formData  string  true   "De-identified patient reference"
// @Param        eye              formData  string  true   "OD, OS, OU or NA"
// @Param        sample           formData  string  true   "Sample type code"
// @Param        duration_value   formData  int     true   "Symptom duration value"
// @Param        duration_unit    formData  string  true   "days, weeks, months or years"
// @Param        impression       formData  string  true   "Clinical impression code"
// @Param        image            formData  file    true   "Slide image"
// @Success      201  {object}  submitCaseResponse
// @Success      200  {object}  submitCaseResponse  "Idempotent replay of an earlier submission"
// @Failure      400  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/cases [post]
func (h *CaseHandler) Submit(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req submitCaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	image, closer, err := formFileUpload(c, "image")
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	result, err := h.service.Submit(c.Request().Context(), toSubmitInput(
		req, actor, image, c.Request().Header.Get("Idempotency-Key"),
	))
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, submitCaseResponse{
		Case:         toCaseResponse(result.Case),
		AutoAssigned: result.AutoAssigned,
	})
}

// Get handles GET /v1/cases/:id.
//
// @Summary      Get a case by ID
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  caseResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/cases/{id} [get]
func (h *CaseHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	kase, err := h.service.Get(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCaseResponse(kase))
}

// List handles GET /v1/cases, the role-scoped case listing.
//
// @Summary      List cases visible to the caller
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        status             query     string  false  "Filter by case status"
// @Param        assignment_status  query     string  false  "Filter by assignment status"
// @Param        page               query     int     false  "Page number (1-based)"
// @Param        limit              query     int     false  "Page size (max 100)"
// @Success      200  {object}  listCasesResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/cases [get]
func (h *CaseHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req listCasesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.List(c.Request().Context(), ports.ListCasesInput{
		Actor:            actor,
		Status:           req.Status,
		AssignmentStatus: req.AssignmentStatus,
		Page:             req.Page,
		Limit:            req.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(result))
}

// History handles GET /v1/cases/:id/history.
//
// @Summary      Get the audit trail of a case
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  caseHistoryResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/cases/{id}/history [get]
func (h *CaseHandler) History(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	caseID := c.Param("id")
	entries, err := h.service.History(c.Request().Context(), caseID, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toHistoryResponse(caseID, entries))
}

// Stats handles GET /v1/stats, the caller's dashboard counters.
//
// @Summary      Case counters for the caller
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.DashboardStats
// @Router       /v1/stats [get]
func (h *CaseHandler) Stats(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Claim handles POST /v1/cases/:id/claim: a technician self-assigns a case.
//
// @Summary      Claim an unassigned case
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  caseResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/cases/{id}/claim [post]
func (h *CaseHandler) Claim(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	kase, err := h.service.Claim(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCaseResponse(kase))
}

// CompleteReport handles POST /v1/cases/:id/report: a technician authors the
// laboratory report, closing the case.
//
// @Summary      Complete a case with its laboratory report
// @Tags         cases
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true   "Case ID"
// @Param        rc_code   formData  string  true   "Reading centre code"
// @Param        lab_id    formData  string  true   "Laboratory sample ID"
// @Param        quality   formData  string  true   "good, moderate or bad"
// @Param        findings  formData  string  true   "Microbiology report text"
// @Param        pdf       formData  file    false  "Signed microbiology PDF"
// @Success      200  {object}  caseResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/cases/{id}/report [post]
func (h *CaseHandler) CompleteReport(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req completeReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	pdf, closer, err := formFileUpload(c, "pdf")
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	kase, err := h.service.CompleteWithReport(c.Request().Context(), c.Param("id"), toReportInput(req, pdf), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCaseResponse(kase))
}

// AttachReportPDF handles PUT /v1/cases/:id/report/pdf to attach the signed
// microbiology PDF to an already-completed case, once.
//
// @Summary      Attach the microbiology PDF to a completed case
// @Tags         cases
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Param        pdf  formData  file    true  "Signed microbiology PDF"
// @Success      200  {object}  caseResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/cases/{id}/report/pdf [put]
func (h *CaseHandler) AttachReportPDF(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	pdf, closer, err := formFileUpload(c, "pdf")
	if err != nil {
		return err
	}
	if pdf == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "pdf file is required")
	}
	defer closer.Close()

	kase, err := h.service.AttachReportPDF(c.Request().Context(), c.Param("id"), *pdf, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCaseResponse(kase))
}
