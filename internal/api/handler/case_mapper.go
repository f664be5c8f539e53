package handler

import (
	"github.com/oculab/microbio-portal/internal/core/domain"
	"github.com/oculab/microbio-portal/internal/core/ports"
)

// --- Request → Service input ---

func toSubmitInput(req submitCaseRequest, actor domain.Actor, image *ports.FileUpload, idempotencyKey string) ports.SubmitCaseInput {
	return ports.SubmitCaseInput{
		Actor:          actor,
		CentreName:     req.CentreName,
		PatientRef:     req.PatientRef,
		Eye:            req.Eye,
		Sample:         req.Sample,
		DurationValue:  req.DurationValue,
		DurationUnit:   req.DurationUnit,
		OnMedication:   req.OnMedication,
		MedsCategory:   req.MedsCategory,
		MedsCustom:     req.MedsCustom,
		Impression:     req.Impression,
		Stains:         req.Stains,
		Image:          image,
		ExplicitTechID: req.AssignedTo,
		IdempotencyKey: idempotencyKey,
	}
}

func toReportInput(req completeReportRequest, pdf *ports.FileUpload) ports.CompleteReportInput {
	return ports.CompleteReportInput{
		RCCode:            req.RCCode,
		LabID:             req.LabID,
		Quality:           req.Quality,
		SampleSuitable:    req.SampleSuitable,
		SuitabilityReason: req.SuitabilityReason,
		Findings:          req.Findings,
		Comments:          req.Comments,
		AuthorizedBy:      req.AuthorizedBy,
		PDF:               pdf,
	}
}

// --- Service result → HTTP response ---

func caseLinksFor(c *domain.Case) caseLinks {
	return caseLinks{
		Self:    "/v1/cases/" + c.ID,
		History: "/v1/cases/" + c.ID + "/history",
		Image:   "/v1/cases/" + c.ID + "/image",
	}
}

func toCaseResponse(c *domain.Case) caseResponse {
	resp := caseResponse{
		ID:               c.ID,
		CaseNumber:       c.CaseNumber,
		DoctorName:       c.DoctorName,
		CentreName:       c.CentreName,
		PatientRef:       c.PatientRef,
		Eye:              string(c.Eye),
		Sample:           string(c.Sample),
		DurationValue:    c.DurationValue,
		DurationUnit:     string(c.DurationUnit),
		OnMedication:     c.OnMedication,
		MedsCategory:     string(c.MedsCategory),
		MedsCustom:       c.MedsCustom,
		Impression:       string(c.Impression),
		Stains:           c.Stains,
		Status:           string(c.Status),
		AssignmentStatus: string(c.AssignmentStatus),
		AssignedToName:   c.AssignedToName,
		SubmittedAt:      c.SubmittedAt.UTC(),
		AssignedAt:       c.AssignedAt,
		Links:            caseLinksFor(c),
	}
	if c.Report != nil {
		resp.Report = &reportResponse{
			RCCode:            c.Report.RCCode,
			LabID:             c.Report.LabID,
			Quality:           string(c.Report.Quality),
			SampleSuitable:    c.Report.SampleSuitable,
			SuitabilityReason: c.Report.SuitabilityReason,
			Findings:          c.Report.Findings,
			Comments:          c.Report.Comments,
			AuthorizedBy:      c.Report.AuthorizedBy,
			HasPDF:            c.Report.HasPDF(),
			CreatedAt:         c.Report.CreatedAt.UTC(),
		}
	}
	return resp
}

func toSummaryResponse(c *domain.Case) caseSummaryResponse {
	return caseSummaryResponse{
		ID:               c.ID,
		CaseNumber:       c.CaseNumber,
		DoctorName:       c.DoctorName,
		PatientRef:       c.PatientRef,
		Eye:              string(c.Eye),
		Sample:           string(c.Sample),
		Impression:       string(c.Impression),
		Status:           string(c.Status),
		AssignmentStatus: string(c.AssignmentStatus),
		AssignedToName:   c.AssignedToName,
		SubmittedAt:      c.SubmittedAt.UTC(),
		Links:            caseLinksFor(c),
	}
}

func toListResponse(r *ports.ListCasesResult) listCasesResponse {
	items := make([]caseSummaryResponse, len(r.Items))
	for i, c := range r.Items {
		items[i] = toSummaryResponse(c)
	}
	return listCasesResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toHistoryResponse(caseID string, entries []*domain.HistoryEntry) caseHistoryResponse {
	items := make([]historyEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = historyEntryResponse{
			ActorName: e.ActorName,
			Action:    e.Action,
			Note:      e.Note,
			CreatedAt: e.CreatedAt.UTC(),
		}
	}
	return caseHistoryResponse{CaseID: caseID, Entries: items}
}
