package certs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const pdfMimeType = "application/pdf"

// A4 landscape in millimetres.
const (
	pageWidth  = 297.0
	pageHeight = 210.0
)

// PDFRenderer renders certificates as single-page A4 landscape PDFs.
// Construction takes no ambient state; everything comes from the input
// snapshot, so identical inputs produce identical bytes.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF for the selected template. Data errors surface
// as ErrData, encoding/output errors as transient ErrRender.
func (r *PDFRenderer) Render(data CertificateData, template Template) (*Artifact, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	doc := fpdf.New("L", "mm", "A4", "")
	// Pin the PDF creation date to the snapshot's issue timestamp so a
	// regeneration reproduces the artifact byte for byte.
	doc.SetCreationDate(data.IssuedAt)
	doc.SetTitle(fmt.Sprintf("Certificate of Completion - %s", data.CourseName), true)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	switch template {
	case TemplateStandard:
		r.layoutStandard(doc, data)
	case TemplatePremium:
		r.layoutPremium(doc, data)
	case TemplateCustom:
		r.layoutCustom(doc, data)
	default:
		return nil, fmt.Errorf("%w: unknown template %q", ErrData, template)
	}

	if err := r.drawVerificationBlock(doc, data); err != nil {
		return nil, err
	}
	r.drawFooter(doc, data)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: pdf output: %v", ErrRender, err)
	}

	return &Artifact{
		Bytes:    buf.Bytes(),
		MimeType: pdfMimeType,
		Size:     int64(buf.Len()),
	}, nil
}

// layoutStandard is the default layout: plain border, centered blocks.
func (r *PDFRenderer) layoutStandard(doc *fpdf.Fpdf, data CertificateData) {
	doc.SetDrawColor(0, 0, 77)
	doc.SetLineWidth(1.2)
	doc.Rect(8, 8, pageWidth-16, pageHeight-16, "D")

	r.drawTitle(doc, data, 30, 0, 0, 77)
	r.drawRecipient(doc, data, 70)
	r.drawCourse(doc, data, 100)
	r.drawIssuingMeta(doc, data, 125)
}

// layoutPremium adds a header band and gold accents.
func (r *PDFRenderer) layoutPremium(doc *fpdf.Fpdf, data CertificateData) {
	doc.SetFillColor(0, 0, 77)
	doc.Rect(0, 0, pageWidth, 42, "F")

	doc.SetDrawColor(215, 181, 109)
	doc.SetLineWidth(1.6)
	doc.Rect(6, 6, pageWidth-12, pageHeight-12, "D")
	doc.SetLineWidth(0.4)
	doc.Rect(10, 10, pageWidth-20, pageHeight-20, "D")

	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 30)
	doc.SetXY(0, 14)
	doc.CellFormat(pageWidth, 14, "CERTIFICATE OF COMPLETION", "", 0, "C", false, 0, "")

	r.drawRecipient(doc, data, 68)
	r.drawCourse(doc, data, 98)
	r.drawIssuingMeta(doc, data, 124)
}

// layoutCustom is the minimalist left-aligned variant used for partner
// branded courses.
func (r *PDFRenderer) layoutCustom(doc *fpdf.Fpdf, data CertificateData) {
	doc.SetDrawColor(60, 60, 60)
	doc.SetLineWidth(0.8)
	doc.Line(20, 48, pageWidth-20, 48)

	doc.SetTextColor(60, 60, 60)
	doc.SetFont("Helvetica", "B", 26)
	doc.SetXY(20, 24)
	doc.CellFormat(0, 12, "Certificate of Completion", "", 0, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 13)
	doc.SetTextColor(90, 90, 90)
	doc.SetXY(20, 58)
	doc.CellFormat(0, 8, "This certifies that", "", 0, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 30)
	doc.SetTextColor(0, 0, 0)
	doc.SetXY(20, 70)
	doc.CellFormat(0, 14, data.StudentName, "", 0, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 13)
	doc.SetTextColor(90, 90, 90)
	doc.SetXY(20, 90)
	doc.CellFormat(0, 8, "has successfully completed", "", 0, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(0, 0, 0)
	doc.SetXY(20, 100)
	doc.CellFormat(0, 10, data.CourseName, "", 0, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(90, 90, 90)
	doc.SetXY(20, 118)
	doc.CellFormat(0, 6, r.metaLine(data), "", 0, "L", false, 0, "")
}

func (r *PDFRenderer) drawTitle(doc *fpdf.Fpdf, data CertificateData, y float64, cr, cg, cb int) {
	doc.SetTextColor(cr, cg, cb)
	doc.SetFont("Helvetica", "B", 34)
	doc.SetXY(0, y)
	doc.CellFormat(pageWidth, 16, "CERTIFICATE OF COMPLETION", "", 0, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 13)
	doc.SetTextColor(110, 110, 110)
	doc.SetXY(0, y+20)
	doc.CellFormat(pageWidth, 8, "This certificate is proudly presented to", "", 0, "C", false, 0, "")
}

func (r *PDFRenderer) drawRecipient(doc *fpdf.Fpdf, data CertificateData, y float64) {
	doc.SetFont("Helvetica", "B", 32)
	doc.SetTextColor(0, 0, 0)
	doc.SetXY(0, y)
	doc.CellFormat(pageWidth, 16, data.StudentName, "", 0, "C", false, 0, "")
}

func (r *PDFRenderer) drawCourse(doc *fpdf.Fpdf, data CertificateData, y float64) {
	doc.SetFont("Helvetica", "", 13)
	doc.SetTextColor(110, 110, 110)
	doc.SetXY(0, y)
	doc.CellFormat(pageWidth, 8, "for successfully completing the course", "", 0, "C", false, 0, "")

	doc.SetFont("Helvetica", "B", 22)
	doc.SetTextColor(0, 0, 77)
	doc.SetXY(0, y+10)
	doc.CellFormat(pageWidth, 12, data.CourseName, "", 0, "C", false, 0, "")
}

func (r *PDFRenderer) drawIssuingMeta(doc *fpdf.Fpdf, data CertificateData, y float64) {
	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(70, 70, 70)
	doc.SetXY(0, y)
	doc.CellFormat(pageWidth, 7, r.metaLine(data), "", 0, "C", false, 0, "")
}

// metaLine assembles the issuing metadata region: instructor, completion
// date and score when present.
func (r *PDFRenderer) metaLine(data CertificateData) string {
	parts := []string{}
	if data.InstructorName != "" {
		parts = append(parts, fmt.Sprintf("Instructor: %s", data.InstructorName))
	}
	if !data.CompletionDate.IsZero() {
		parts = append(parts, fmt.Sprintf("Completed on %s", data.CompletionDate.Format("January 2, 2006")))
	}
	if data.FinalScore != nil {
		parts = append(parts, fmt.Sprintf("Final Score: %.0f%%", *data.FinalScore))
	}
	return strings.Join(parts, "   |   ")
}

// drawVerificationBlock embeds the QR code pointing at the verification URL
// plus the human-readable code. Required on every template.
func (r *PDFRenderer) drawVerificationBlock(doc *fpdf.Fpdf, data CertificateData) error {
	png, err := qrcode.Encode(data.VerificationURL, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("%w: qr encode: %v", ErrRender, err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("verify-qr", opts, bytes.NewReader(png))
	doc.ImageOptions("verify-qr", pageWidth-46, pageHeight-52, 28, 28, false, opts, 0, "")

	doc.SetFont("Helvetica", "B", 10)
	doc.SetTextColor(70, 70, 70)
	doc.SetXY(pageWidth-56, pageHeight-22)
	doc.CellFormat(48, 5, data.Code, "", 0, "C", false, 0, "")
	return nil
}

// drawFooter prints the human-readable verification URL.
func (r *PDFRenderer) drawFooter(doc *fpdf.Fpdf, data CertificateData) {
	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(130, 130, 130)
	doc.SetXY(0, pageHeight-16)
	doc.CellFormat(pageWidth, 5, fmt.Sprintf("Verify this certificate at %s", data.VerificationURL), "", 0, "C", false, 0, "")
}
