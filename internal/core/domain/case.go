package domain

import (
	"time"
)

// CaseStatus represents the analysis lifecycle of a case.
type CaseStatus string

const (
	CaseStatusPending   CaseStatus = "pending"
	CaseStatusCompleted CaseStatus = "completed"
)

// AssignmentStatus tracks assignment progress independently of the analysis
// status. InProgress is reserved for a future workbench flow; no operation
// currently drives a case into it.
type AssignmentStatus string

const (
	AssignmentUnassigned AssignmentStatus = "unassigned"
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
)

// validAssignmentTransitions defines the allowed state machine transitions.
var validAssignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentUnassigned: {AssignmentAssigned},
	AssignmentAssigned:   {AssignmentInProgress, AssignmentCompleted},
	AssignmentInProgress: {AssignmentCompleted},
}

// CanTransitionTo reports whether a transition from the current assignment
// status to next is valid.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	for _, allowed := range validAssignmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Label returns the display form used in exports.
func (s CaseStatus) Label() string {
	switch s {
	case CaseStatusPending:
		return "Pending"
	case CaseStatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Label returns the display form used in exports.
func (s AssignmentStatus) Label() string {
	switch s {
	case AssignmentUnassigned:
		return "Unassigned"
	case AssignmentAssigned:
		return "Assigned"
	case AssignmentInProgress:
		return "In Progress"
	case AssignmentCompleted:
		return "Completed"
	}
	return string(s)
}

// Case is the core aggregate: one submitted sample request and, once
// completed, its laboratory report. The report is embedded so completion
// (report + both statuses) commits as a single document write.
type Case struct {
	ID               string           `json:"id" bson:"_id,omitempty"`
	CaseNumber       string           `json:"case_number" bson:"case_number"`
	DoctorID         string           `json:"doctor_id" bson:"doctor_id"`
	DoctorName       string           `json:"doctor_name" bson:"doctor_name"`
	CentreName       string           `json:"centre_name" bson:"centre_name"`
	PatientRef       string           `json:"patient_ref" bson:"patient_ref"`
	Eye              Eye              `json:"eye" bson:"eye"`
	Sample           SampleType       `json:"sample" bson:"sample"`
	DurationValue    int              `json:"duration_value" bson:"duration_value"`
	DurationUnit     DurationUnit     `json:"duration_unit" bson:"duration_unit"`
	OnMedication     bool             `json:"on_medication" bson:"on_medication"`
	MedsCategory     MedsCategory     `json:"meds_category,omitempty" bson:"meds_category,omitempty"`
	MedsCustom       string           `json:"meds_custom,omitempty" bson:"meds_custom,omitempty"`
	Impression       Impression       `json:"impression" bson:"impression"`
	Stains           []string         `json:"stains" bson:"stains"`
	ImageFile        string           `json:"image_file" bson:"image_file"`
	Status           CaseStatus       `json:"status" bson:"status"`
	AssignmentStatus AssignmentStatus `json:"assignment_status" bson:"assignment_status"`
	AssignedToID     string           `json:"assigned_to_id,omitempty" bson:"assigned_to_id,omitempty"`
	AssignedToName   string           `json:"assigned_to_name,omitempty" bson:"assigned_to_name,omitempty"`
	SubmittedAt      time.Time        `json:"submitted_at" bson:"submitted_at"`
	AssignedAt       *time.Time       `json:"assigned_at,omitempty" bson:"assigned_at,omitempty"`
	Report           *Report          `json:"report,omitempty" bson:"report,omitempty"`
	IdempotencyKey   string           `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
}

// Claimable reports whether a technician may self-assign this case.
func (c *Case) Claimable() bool {
	return c.Status == CaseStatusPending && c.AssignmentStatus == AssignmentUnassigned
}

// ReportEligible reports whether a report may still be authored for this case.
func (c *Case) ReportEligible() bool {
	return c.Status == CaseStatusPending
}

// Completed reports whether the case has been closed out with a report.
func (c *Case) Completed() bool {
	return c.Status == CaseStatusCompleted
}
