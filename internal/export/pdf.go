package export

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/oculab/microbio-portal/internal/core/domain"
	"github.com/oculab/microbio-portal/internal/metrics"
)

// Letter page measured in inches, matching the lab's print templates.
const (
	pdfMarginX   = 0.5
	pdfMarginTop = 0.75
	pdfRowH      = 0.24
	pdfLineH     = 0.20
	pdfTableW    = 6.5
	pdfImageBox  = 5.0
)

const disclaimerText = "DISCLAIMER: This report is generated based on the images provided by the clinician " +
	"and may be subject to change on review of the entire slide at the reading centre. This report acts " +
	"solely as a guide to a clinician for clinical correlation. The reading centre is not responsible for " +
	"any complications that may arise during the treatment of the patient."

const generatedByLine = "Generated electronically by Microbiology Portal - Ocular Microbiology Reading Centre"

// ReportPDF renders the printable laboratory report for a completed case.
// img optionally supplies the slide image bytes; nil omits the clinical
// image section.
func ReportPDF(w io.Writer, c *domain.Case, img io.Reader) error {
	if c.Report == nil {
		return domain.ErrCaseNotEligible
	}
	start := time.Now()
	defer func() {
		metrics.ReportPDFRenderDuration.Observe(time.Since(start).Seconds())
	}()

	doc := &reportDoc{pdf: fpdf.New("P", "in", "Letter", "")}
	doc.pdf.SetMargins(pdfMarginX, pdfMarginTop, pdfMarginX)
	doc.pdf.SetAutoPageBreak(true, pdfMarginTop)
	doc.pdf.AddPage()

	doc.title("Ocular Microbiology Laboratory Report")

	doc.sectionHeader("Patient & Clinical Details")
	doc.kvRow("Patient ID:", c.PatientRef, "Centre:", c.CentreName)
	doc.kvRow("Eye:", c.Eye.Label(), "Date Submitted:", c.SubmittedAt.Format("2006-01-02 15:04"))
	doc.kvRow("Sample:", c.Sample.Label(), "Duration:", durationDisplay(c))
	doc.kvRow("Medications:", medicationsDisplay(c), "Stain Used:", domain.StainList(c.Stains))
	doc.kvRow("Clinical Impression:", c.Impression.Label(), "", "")
	doc.pdf.Ln(0.25)

	r := c.Report
	quality := "N/A"
	if r.Quality != "" {
		quality = r.Quality.Label()
	}
	suitability := "No (Specify reason below)"
	if r.SampleSuitable {
		suitability = "Yes"
	}
	reason := "N/A"
	if !r.SampleSuitable && r.SuitabilityReason != "" {
		reason = r.SuitabilityReason
	}

	doc.sectionHeader("Laboratory Interpretation")
	doc.kvRow("Lab ID:", r.LabID, "RC Code:", r.RCCode)
	doc.kvRow("Sample Suitability:", suitability, "Quality:", quality)
	doc.kvRow("Suitability Reason:", reason, "", "")
	doc.pdf.Ln(0.25)

	comments := r.Comments
	if comments == "" {
		comments = "None"
	}
	doc.textRow("Microbiology Report:", r.Findings)
	doc.textRow("Additional Comments:", comments)
	doc.pdf.Ln(0.25)

	if img != nil {
		doc.clinicalImage(c.CaseNumber, img)
	}

	doc.pdf.SetFont("Helvetica", "B", 10)
	doc.pdf.CellFormat(0, pdfRowH, fmt.Sprintf("Authorized By: %s", r.AuthorizedBy), "", 1, "R", false, 0, "")
	doc.pdf.Ln(0.5)

	doc.disclaimer()

	return doc.pdf.Output(w)
}

// ReportPDFFilename names the generated report download.
func ReportPDFFilename(c *domain.Case) string {
	return fmt.Sprintf("Microbio_Report_%s_%s.pdf", c.PatientRef, c.ID)
}

// UploadedPDFFilename names the technician-uploaded report download.
func UploadedPDFFilename(c *domain.Case) string {
	return fmt.Sprintf("microbio_report_%s.pdf", c.PatientRef)
}

func medicationsDisplay(c *domain.Case) string {
	if !c.OnMedication {
		return "No medications"
	}
	if c.MedsCategory == domain.MedsOthers {
		return c.MedsCustom
	}
	return c.MedsCategory.Label()
}

type reportDoc struct {
	pdf *fpdf.Fpdf
}

func (d *reportDoc) title(text string) {
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.CellFormat(0, 0.35, text, "", 1, "C", false, 0, "")
	d.pdf.Ln(0.2)
}

func (d *reportDoc) sectionHeader(text string) {
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetFillColor(211, 211, 211)
	d.pdf.CellFormat(pdfTableW, pdfRowH, text, "1", 1, "L", true, 0, "")
}

// kvRow draws one grid row of the 4-column tables: two bold labels, each
// followed by its value.
func (d *reportDoc) kvRow(label1, value1, label2, value2 string) {
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.CellFormat(1.3, pdfRowH, label1, "1", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 9)
	d.pdf.CellFormat(2.2, pdfRowH, value1, "1", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.CellFormat(1.3, pdfRowH, label2, "1", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 9)
	d.pdf.CellFormat(1.7, pdfRowH, value2, "1", 1, "L", false, 0, "")
}

// textRow draws a bold label beside a wrapping text block.
func (d *reportDoc) textRow(label, text string) {
	const labelW, textW = 1.5, 4.5
	d.pdf.SetFont("Helvetica", "", 9)
	lines := d.pdf.SplitText(text, textW-0.15)
	h := float64(len(lines)) * pdfLineH
	if h < pdfLineH {
		h = pdfLineH
	}
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.CellFormat(labelW, h, label, "1", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 9)
	d.pdf.MultiCell(textW, pdfLineH, text, "1", "L", false)
}

func (d *reportDoc) clinicalImage(name string, img io.Reader) {
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.CellFormat(0, pdfRowH, "Clinical Image:", "", 1, "L", false, 0, "")
	d.pdf.Ln(0.1)

	data, err := io.ReadAll(img)
	if err != nil {
		d.imageNote()
		return
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		d.imageNote()
		return
	}
	var imgType string
	switch format {
	case "png":
		imgType = "PNG"
	case "jpeg":
		imgType = "JPG"
	case "gif":
		imgType = "GIF"
	default:
		d.imageNote()
		return
	}

	// Fit proportionally inside the 5x5 inch box.
	iw, ih := float64(cfg.Width), float64(cfg.Height)
	tw, th := pdfImageBox, pdfImageBox*ih/iw
	if ih > iw {
		tw, th = pdfImageBox*iw/ih, pdfImageBox
	}

	opts := fpdf.ImageOptions{ImageType: imgType}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	d.pdf.ImageOptions(name, -1, 0, tw, th, true, opts, 0, "")
	d.pdf.Ln(0.25)
}

func (d *reportDoc) imageNote() {
	d.pdf.SetFont("Helvetica", "I", 9)
	d.pdf.CellFormat(0, pdfRowH, "Note: Image could not be loaded", "", 1, "L", false, 0, "")
	d.pdf.Ln(0.25)
}

func (d *reportDoc) disclaimer() {
	d.pdf.SetFont("Helvetica", "", 8)
	d.pdf.MultiCell(0, 0.16, disclaimerText, "", "L", false)
	d.pdf.Ln(0.1)
	d.pdf.SetFont("Helvetica", "I", 8)
	d.pdf.MultiCell(0, 0.16, generatedByLine, "", "L", false)
}
