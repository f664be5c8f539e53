package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

// submitCaseRequest is the multipart form a doctor posts when submitting a
// sample. The slide image arrives as the "image" file part and is handled
// separately from the bound fields.
type submitCaseRequest struct {
	CentreName    string   `form:"centre_name"    validate:"required"`
	PatientRef    string   `form:"patient_ref"    validate:"required"`
	Eye           string   `form:"eye"            validate:"required,oneof=OD OS OU NA"`
	Sample        string   `form:"sample"         validate:"required,oneof=corneal_scraping conjunctival_swab tear_film contact_lens eyelid other"`
	DurationValue int      `form:"duration_value" validate:"required,gt=0"`
	DurationUnit  string   `form:"duration_unit"  validate:"required,oneof=days weeks months years"`
	OnMedication  bool     `form:"on_medication"`
	MedsCategory  string   `form:"meds_category"  validate:"omitempty,oneof=antibiotics antifungals antiviral steroid others"`
	MedsCustom    string   `form:"meds_custom"`
	Impression    string   `form:"impression"     validate:"required,oneof=bacterial fungal acanthamoeba pythium viral others"`
	Stains        []string `form:"stains"`
	AssignedTo    string   `form:"assigned_to"`
}

// completeReportRequest is the multipart form a technician posts to close a
// case. The optional microbiology PDF arrives as the "pdf" file part.
type completeReportRequest struct {
	RCCode            string `form:"rc_code"            validate:"required"`
	LabID             string `form:"lab_id"             validate:"required"`
	Quality           string `form:"quality"            validate:"required,oneof=good moderate bad"`
	SampleSuitable    bool   `form:"sample_suitable"`
	SuitabilityReason string `form:"suitability_reason" validate:"required_if=SampleSuitable false"`
	Findings          string `form:"findings"           validate:"required"`
	Comments          string `form:"comments"`
	AuthorizedBy      string `form:"authorized_by"`
}

type listCasesRequest struct {
	Status           string `query:"status"            validate:"omitempty,oneof=pending completed"`
	AssignmentStatus string `query:"assignment_status" validate:"omitempty,oneof=unassigned assigned in_progress completed"`
	Page             int    `query:"page"              validate:"omitempty,min=1"`
	Limit            int    `query:"limit"             validate:"omitempty,min=1,max=100"`
}

// --- Response types ---
// Response-only types owned by the transport layer, intentionally separate
// from domain types so the JSON contract is not coupled to internal changes.

type caseLinks struct {
	Self    string `json:"self"`
	History string `json:"history"`
	Image   string `json:"image"`
}

type reportResponse struct {
	RCCode            string    `json:"rc_code"`
	LabID             string    `json:"lab_id"`
	Quality           string    `json:"quality"`
	SampleSuitable    bool      `json:"sample_suitable"`
	SuitabilityReason string    `json:"suitability_reason,omitempty"`
	Findings          string    `json:"findings"`
	Comments          string    `json:"comments,omitempty"`
	AuthorizedBy      string    `json:"authorized_by"`
	HasPDF            bool      `json:"has_pdf"`
	CreatedAt         time.Time `json:"created_at"`
}

type caseResponse struct {
	ID               string          `json:"id"`
	CaseNumber       string          `json:"case_number"`
	DoctorName       string          `json:"doctor_name"`
	CentreName       string          `json:"centre_name"`
	PatientRef       string          `json:"patient_ref"`
	Eye              string          `json:"eye"`
	Sample           string          `json:"sample"`
	DurationValue    int             `json:"duration_value"`
	DurationUnit     string          `json:"duration_unit"`
	OnMedication     bool            `json:"on_medication"`
	MedsCategory     string          `json:"meds_category,omitempty"`
	MedsCustom       string          `json:"meds_custom,omitempty"`
	Impression       string          `json:"impression"`
	Stains           []string        `json:"stains"`
	Status           string          `json:"status"`
	AssignmentStatus string          `json:"assignment_status"`
	AssignedToName   string          `json:"assigned_to_name,omitempty"`
	SubmittedAt      time.Time       `json:"submitted_at"`
	AssignedAt       *time.Time      `json:"assigned_at,omitempty"`
	Report           *reportResponse `json:"report,omitempty"`
	Links            caseLinks       `json:"_links"`
}

type submitCaseResponse struct {
	Case caseResponse `json:"case"`
	// AutoAssigned is false when the submitter chose the technician.
	AutoAssigned bool `json:"auto_assigned"`
}

// caseSummaryResponse is the lightweight item used in list responses.
// It intentionally omits report detail to keep payloads small.
type caseSummaryResponse struct {
	ID               string    `json:"id"`
	CaseNumber       string    `json:"case_number"`
	DoctorName       string    `json:"doctor_name"`
	PatientRef       string    `json:"patient_ref"`
	Eye              string    `json:"eye"`
	Sample           string    `json:"sample"`
	Impression       string    `json:"impression"`
	Status           string    `json:"status"`
	AssignmentStatus string    `json:"assignment_status"`
	AssignedToName   string    `json:"assigned_to_name,omitempty"`
	SubmittedAt      time.Time `json:"submitted_at"`
	Links            caseLinks `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listCasesResponse struct {
	Data       []caseSummaryResponse `json:"data"`
	Pagination paginationResponse    `json:"pagination"`
}

type historyEntryResponse struct {
	ActorName string    `json:"actor_name"`
	Action    string    `json:"action"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type caseHistoryResponse struct {
	CaseID  string                 `json:"case_id"`
	Entries []historyEntryResponse `json:"entries"`
}
