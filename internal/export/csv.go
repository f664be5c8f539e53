// Package export renders case data into the download formats offered by the
// portal: CSV listings for either role and the printable laboratory report.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// reportTextPreview caps the findings excerpt carried in the doctor CSV.
const reportTextPreview = 200

// DoctorCSV writes the doctor-facing export: every submitted case with the
// laboratory interpretation columns filled in once a report exists.
func DoctorCSV(w io.Writer, cases []*domain.Case) error {
	cw := csv.NewWriter(w)

	header := []string{
		"Patient ID", "Centre", "Eye", "Sample Type", "Duration", "Impression", "Stain",
		"Status", "Assigned Lab Tech", "Lab ID", "RC Code", "Quality", "Suitability",
		"Report Text", "Authorized By", "Submitted Date",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write doctor csv header: %w", err)
	}

	for _, c := range cases {
		labID, rcCode, quality, suitability, reportText, authBy := "N/A", "N/A", "N/A", "N/A", "N/A", "N/A"
		if c.Report != nil {
			labID = c.Report.LabID
			rcCode = c.Report.RCCode
			quality = c.Report.Quality.Label()
			suitability = "No"
			if c.Report.SampleSuitable {
				suitability = "Yes"
			}
			reportText = truncate(c.Report.Findings, reportTextPreview)
			authBy = c.Report.AuthorizedBy
		}

		assignedTech := c.AssignedToName
		if assignedTech == "" {
			assignedTech = "Unassigned"
		}

		row := []string{
			c.PatientRef,
			c.CentreName,
			c.Eye.Label(),
			c.Sample.Label(),
			durationDisplay(c),
			c.Impression.Label(),
			domain.StainList(c.Stains),
			c.Status.Label(),
			assignedTech,
			labID,
			rcCode,
			quality,
			suitability,
			reportText,
			authBy,
			c.SubmittedAt.Format(timestampLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write doctor csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// LabCSV writes the technician-facing export: every case assigned to the
// technician with its workflow state.
func LabCSV(w io.Writer, cases []*domain.Case) error {
	cw := csv.NewWriter(w)

	header := []string{
		"Patient ID", "Doctor", "Centre", "Eye", "Sample Type", "Duration", "Impression",
		"Stain", "Status", "Assigned Date", "Assignment Status",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write lab csv header: %w", err)
	}

	for _, c := range cases {
		doctorName := c.DoctorName
		if doctorName == "" {
			doctorName = "Unknown"
		}
		assignedDate := "N/A"
		if c.AssignedAt != nil {
			assignedDate = c.AssignedAt.Format(timestampLayout)
		}

		row := []string{
			c.PatientRef,
			doctorName,
			c.CentreName,
			c.Eye.Label(),
			c.Sample.Label(),
			durationDisplay(c),
			c.Impression.Label(),
			domain.StainList(c.Stains),
			c.Status.Label(),
			assignedDate,
			c.AssignmentStatus.Label(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write lab csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// DoctorCSVFilename names the doctor export download.
func DoctorCSVFilename(at time.Time) string {
	return "doctor_cases_" + at.Format("20060102_150405") + ".csv"
}

// LabCSVFilename names the technician export download.
func LabCSVFilename(at time.Time) string {
	return "lab_cases_" + at.Format("20060102_150405") + ".csv"
}

func durationDisplay(c *domain.Case) string {
	return fmt.Sprintf("%d %s", c.DurationValue, c.DurationUnit.Label())
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
