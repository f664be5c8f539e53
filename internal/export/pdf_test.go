package export

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

func TestReportPDF_ProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := ReportPDF(&buf, sampleCase(true), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
	if buf.Len() < 1000 {
		t.Errorf("suspiciously small document: %d bytes", buf.Len())
	}
}

func TestReportPDF_RequiresReport(t *testing.T) {
	var buf bytes.Buffer
	err := ReportPDF(&buf, sampleCase(false), nil)
	if !errors.Is(err, domain.ErrCaseNotEligible) {
		t.Fatalf("expected ErrCaseNotEligible, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("no bytes must be written for an ineligible case")
	}
}

func TestReportPDF_EmbedsSlideImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}

	var bare, withImage bytes.Buffer
	if err := ReportPDF(&bare, sampleCase(true), nil); err != nil {
		t.Fatalf("render without image: %v", err)
	}
	if err := ReportPDF(&withImage, sampleCase(true), bytes.NewReader(pngBuf.Bytes())); err != nil {
		t.Fatalf("render with image: %v", err)
	}
	if withImage.Len() <= bare.Len() {
		t.Errorf("image must grow the document: %d <= %d", withImage.Len(), bare.Len())
	}
}

func TestReportPDF_UnreadableImageStillRenders(t *testing.T) {
	var buf bytes.Buffer
	err := ReportPDF(&buf, sampleCase(true), strings.NewReader("not an image"))
	if err != nil {
		t.Fatalf("a bad image must not fail the report: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestReportPDF_UnsuitableSampleReason(t *testing.T) {
	c := sampleCase(true)
	c.Report.SampleSuitable = false
	c.Report.SuitabilityReason = "Insufficient material on slide"

	var buf bytes.Buffer
	if err := ReportPDF(&buf, c, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPDFFilenames(t *testing.T) {
	c := sampleCase(true)
	if got := ReportPDFFilename(c); got != "Microbio_Report_PAT-0042_case_1.pdf" {
		t.Errorf("report filename wrong: %q", got)
	}
	if got := UploadedPDFFilename(c); got != "microbio_report_PAT-0042.pdf" {
		t.Errorf("uploaded filename wrong: %q", got)
	}
}

func TestMedicationsDisplay(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*domain.Case)
		want   string
	}{
		{"no medication", func(c *domain.Case) { c.OnMedication = false }, "No medications"},
		{"category label", func(c *domain.Case) { c.MedsCategory = domain.MedsAntifungals }, "Antifungals"},
		{"custom text for others", func(c *domain.Case) {
			c.MedsCategory = domain.MedsOthers
			c.MedsCustom = "Natamycin 5% drops"
		}, "Natamycin 5% drops"},
	}

	for _, tc := range cases {
		c := sampleCase(false)
		tc.modify(c)
		if got := medicationsDisplay(c); got != tc.want {
			t.Errorf("%s: want %q, got %q", tc.name, tc.want, got)
		}
	}
}
