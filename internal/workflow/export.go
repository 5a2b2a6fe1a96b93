package workflow

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"feedback-backend/internal/models"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

const exportContentType = "application/pdf"

// ExportFeedback renders a feedback entry as a PDF report. When an archiver
// is configured a copy is stored; failing to archive does not fail the export.
func (s *Service) ExportFeedback(ctx context.Context, actor Actor, id bson.ObjectID) (*Export, error) {
	fb, err := s.loadViewable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	view, err := s.feedbackView(ctx, fb)
	if err != nil {
		return nil, err
	}
	body, err := renderReport(view)
	if err != nil {
		return nil, fmt.Errorf("render feedback report: %w", err)
	}

	exp := &Export{
		Filename:    fmt.Sprintf("feedback_%s.pdf", fb.ID.Hex()),
		ContentType: exportContentType,
		Body:        body,
	}
	if s.archiver != nil {
		name := fmt.Sprintf("exports/%s/%s.pdf", fb.ID.Hex(), uuid.New().String())
		if err := s.archiver.Archive(ctx, name, exp.ContentType, exp.Body); err != nil {
			log.Printf("⚠️  Failed to archive export %s: %v", name, err)
		}
	}
	return exp, nil
}

// renderReport lays out one A4 page: title, people and date, then the
// strengths and improvements sections. Page streams are left uncompressed.
func renderReport(v *FeedbackView) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetTitle("Feedback Report", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	line := func(txt, align string) {
		pdf.CellFormat(190, 10, tr(txt), "", 1, align, false, 0, "")
	}
	heading := func(txt string) {
		pdf.SetFont("Arial", "B", 12)
		line(txt, "")
		pdf.SetFont("Arial", "", 12)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	line("Feedback Report", "C")
	pdf.Ln(10)

	line("Employee: "+v.EmployeeName, "")
	line("Manager: "+v.ManagerName, "")
	line("Date: "+v.CreatedAt.Format("2006-01-02"), "")
	line("Sentiment: "+sentimentLabel(v.Sentiment), "")
	if v.Acknowledged {
		line("Status: Acknowledged", "")
	} else {
		line("Status: Pending acknowledgement", "")
	}
	if len(v.Tags) > 0 {
		names := make([]string, 0, len(v.Tags))
		for _, t := range v.Tags {
			names = append(names, t.TagName)
		}
		line("Tags: "+strings.Join(names, ", "), "")
	}
	pdf.Ln(10)

	heading("Strengths")
	pdf.MultiCell(0, 10, tr(v.Strengths), "", "", false)
	pdf.Ln(5)

	heading("Areas for Improvement")
	pdf.MultiCell(0, 10, tr(v.Improvements), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sentimentLabel(s models.Sentiment) string {
	str := string(s)
	if str == "" {
		return str
	}
	return strings.ToUpper(str[:1]) + str[1:]
}
