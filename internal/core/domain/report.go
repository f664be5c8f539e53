package domain

import "time"

// Quality grades the received slide.
type Quality string

const (
	QualityGood     Quality = "good"
	QualityModerate Quality = "moderate"
	QualityBad      Quality = "bad"
)

// Label returns the display form used in exports.
func (q Quality) Label() string {
	switch q {
	case QualityGood:
		return "Good"
	case QualityModerate:
		return "Moderate"
	case QualityBad:
		return "Bad"
	}
	return string(q)
}

// Report holds the laboratory interpretation for a completed case. Exactly
// one exists per completed case, written once at completion; only the PDF
// attachment fields may be set afterwards, and only while still empty.
type Report struct {
	RCCode            string     `json:"rc_code" bson:"rc_code"`
	LabID             string     `json:"lab_id" bson:"lab_id"`
	Quality           Quality    `json:"quality" bson:"quality"`
	SampleSuitable    bool       `json:"sample_suitable" bson:"sample_suitable"`
	SuitabilityReason string     `json:"suitability_reason,omitempty" bson:"suitability_reason,omitempty"`
	Findings          string     `json:"findings" bson:"findings"`
	Comments          string     `json:"comments,omitempty" bson:"comments,omitempty"`
	AuthorizedBy      string     `json:"authorized_by" bson:"authorized_by"`
	PDFFile           string     `json:"pdf_file,omitempty" bson:"pdf_file,omitempty"`
	PDFUploadedAt     *time.Time `json:"pdf_uploaded_at,omitempty" bson:"pdf_uploaded_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
}

// HasPDF reports whether a microbiology PDF has been attached.
func (r *Report) HasPDF() bool {
	return r != nil && r.PDFFile != ""
}
