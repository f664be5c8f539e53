package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

func sampleCase(completed bool) *domain.Case {
	submitted := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	assigned := submitted.Add(15 * time.Minute)
	c := &domain.Case{
		ID:               "case_1",
		CaseNumber:       "OMC-00ABCDEF",
		DoctorID:         "u_doc1",
		DoctorName:       "Asha Menon",
		CentreName:       "Aurolab Reading Centre",
		PatientRef:       "PAT-0042",
		Eye:              domain.EyeOD,
		Sample:           domain.SampleCornealScraping,
		DurationValue:    3,
		DurationUnit:     domain.DurationDays,
		OnMedication:     true,
		MedsCategory:     domain.MedsAntibiotics,
		Impression:       domain.ImpressionFungal,
		Stains:           []string{"Grams", "KOH-CFW"},
		ImageFile:        "slides/2026/03/14/x.png",
		Status:           domain.CaseStatusPending,
		AssignmentStatus: domain.AssignmentAssigned,
		AssignedToID:     "t1",
		AssignedToName:   "Ravi Kumar",
		SubmittedAt:      submitted,
		AssignedAt:       &assigned,
	}
	if completed {
		c.Status = domain.CaseStatusCompleted
		c.AssignmentStatus = domain.AssignmentCompleted
		c.Report = &domain.Report{
			RCCode:         "RC-77",
			LabID:          "LAB-0042",
			Quality:        domain.QualityGood,
			SampleSuitable: true,
			Findings:       "Septate fungal filaments seen in the smear.",
			Comments:       "Correlate clinically.",
			AuthorizedBy:   "Dr. Kalpana Iyer",
			CreatedAt:      submitted.Add(2 * time.Hour),
		}
	}
	return c
}

func parseCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return rows
}

func TestDoctorCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := DoctorCSV(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := parseCSV(t, &buf)
	want := []string{
		"Patient ID", "Centre", "Eye", "Sample Type", "Duration", "Impression", "Stain",
		"Status", "Assigned Lab Tech", "Lab ID", "RC Code", "Quality", "Suitability",
		"Report Text", "Authorized By", "Submitted Date",
	}
	if len(rows) != 1 || !reflect.DeepEqual(rows[0], want) {
		t.Errorf("header mismatch:\n want %v\n got  %v", want, rows)
	}
}

func TestDoctorCSV_PendingRowUsesFallbacks(t *testing.T) {
	var buf bytes.Buffer
	if err := DoctorCSV(&buf, []*domain.Case{sampleCase(false)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := parseCSV(t, &buf)
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	want := []string{
		"PAT-0042", "Aurolab Reading Centre", "Right Eye (OD)", "Corneal Scraping",
		"3 Days", "Fungal", "Grams, KOH-CFW", "Pending", "Ravi Kumar",
		"N/A", "N/A", "N/A", "N/A", "N/A", "N/A", "2026-03-14 09:30:00",
	}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row mismatch:\n want %v\n got  %v", want, rows[1])
	}
}

func TestDoctorCSV_CompletedRowCarriesLabDetails(t *testing.T) {
	var buf bytes.Buffer
	if err := DoctorCSV(&buf, []*domain.Case{sampleCase(true)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := parseCSV(t, &buf)
	row := rows[1]
	if row[7] != "Completed" {
		t.Errorf("status: want Completed, got %q", row[7])
	}
	if row[9] != "LAB-0042" || row[10] != "RC-77" {
		t.Errorf("lab identifiers wrong: %q / %q", row[9], row[10])
	}
	if row[11] != "Good" {
		t.Errorf("quality: want Good, got %q", row[11])
	}
	if row[12] != "Yes" {
		t.Errorf("suitability: want Yes, got %q", row[12])
	}
	if row[13] != "Septate fungal filaments seen in the smear." {
		t.Errorf("report text wrong: %q", row[13])
	}
	if row[14] != "Dr. Kalpana Iyer" {
		t.Errorf("authorized by wrong: %q", row[14])
	}
}

func TestDoctorCSV_ReportTextTruncated(t *testing.T) {
	c := sampleCase(true)
	c.Report.Findings = strings.Repeat("x", 250)

	var buf bytes.Buffer
	if err := DoctorCSV(&buf, []*domain.Case{c}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := parseCSV(t, &buf)
	if got := len([]rune(rows[1][13])); got != 200 {
		t.Errorf("report text must be capped at 200 runes, got %d", got)
	}
}

func TestDoctorCSV_UnassignedFallback(t *testing.T) {
	c := sampleCase(false)
	c.AssignedToID = ""
	c.AssignedToName = ""
	c.AssignmentStatus = domain.AssignmentUnassigned
	c.Stains = nil

	var buf bytes.Buffer
	if err := DoctorCSV(&buf, []*domain.Case{c}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := parseCSV(t, &buf)
	if rows[1][8] != "Unassigned" {
		t.Errorf("assigned tech: want Unassigned, got %q", rows[1][8])
	}
	if rows[1][6] != "N/A" {
		t.Errorf("empty stains must export N/A, got %q", rows[1][6])
	}
}

func TestLabCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := LabCSV(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := parseCSV(t, &buf)
	want := []string{
		"Patient ID", "Doctor", "Centre", "Eye", "Sample Type", "Duration", "Impression",
		"Stain", "Status", "Assigned Date", "Assignment Status",
	}
	if len(rows) != 1 || !reflect.DeepEqual(rows[0], want) {
		t.Errorf("header mismatch:\n want %v\n got  %v", want, rows)
	}
}

func TestLabCSV_Row(t *testing.T) {
	var buf bytes.Buffer
	if err := LabCSV(&buf, []*domain.Case{sampleCase(false)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := parseCSV(t, &buf)
	want := []string{
		"PAT-0042", "Asha Menon", "Aurolab Reading Centre", "Right Eye (OD)",
		"Corneal Scraping", "3 Days", "Fungal", "Grams, KOH-CFW", "Pending",
		"2026-03-14 09:45:00", "Assigned",
	}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row mismatch:\n want %v\n got  %v", want, rows[1])
	}
}

func TestLabCSV_Fallbacks(t *testing.T) {
	c := sampleCase(false)
	c.DoctorName = ""
	c.AssignedAt = nil
	c.AssignmentStatus = domain.AssignmentUnassigned

	var buf bytes.Buffer
	if err := LabCSV(&buf, []*domain.Case{c}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := parseCSV(t, &buf)
	if rows[1][1] != "Unknown" {
		t.Errorf("doctor: want Unknown, got %q", rows[1][1])
	}
	if rows[1][9] != "N/A" {
		t.Errorf("assigned date: want N/A, got %q", rows[1][9])
	}
	if rows[1][10] != "Unassigned" {
		t.Errorf("assignment status: want Unassigned, got %q", rows[1][10])
	}
}

func TestCSVFilenames(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 45, 0, time.UTC)
	if got := DoctorCSVFilename(at); got != "doctor_cases_20260314_093045.csv" {
		t.Errorf("doctor filename wrong: %q", got)
	}
	if got := LabCSVFilename(at); got != "lab_cases_20260314_093045.csv" {
		t.Errorf("lab filename wrong: %q", got)
	}
}
