package minutes

import (
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin  = 25.4 // 1 inch
	pdfLabelW  = 50.8
	pdfValueW  = 101.6
	pdfSpacing = 4.0
)

// writePDF renders doc as a Letter sized PDF at outputPath.
func writePDF(doc *Document, font string, size float64, now time.Time, outputPath string) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("meeting minutes generator", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lineH := size * 0.5

	footer := "Generated on " + now.Format(footerLayout)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font, "I", size-3)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(footer), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	width, _ := pdf.GetPageSize()
	bodyW := width - 2*pdfMargin

	pdf.SetFont(font, "B", 18)
	pdf.SetTextColor(26, 26, 26)
	pdf.MultiCell(0, 9, tr(doc.Title), "", "C", false)
	pdf.Ln(8)

	paragraph := func(style, text string) {
		pdf.SetFont(font, style, size)
		pdf.MultiCell(bodyW, lineH, tr(text), "", "L", false)
	}

	for _, s := range doc.Sections {
		pdf.SetFont(font, "B", size+3)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, lineH+1, tr(s.Heading), "", "L", false)
		pdf.Ln(pdfSpacing)

		switch s.Kind {
		case KindInfo:
			pdf.SetFillColor(240, 240, 240)
			pdf.SetDrawColor(128, 128, 128)
			for _, kv := range s.Info {
				pdf.SetFont(font, "", size-1)
				n := len(pdf.SplitLines([]byte(tr(kv.Value)), pdfValueW-2))
				if n == 0 {
					n = 1
				}
				rowH := float64(n)*lineH + 2

				pdf.SetFont(font, "B", size-1)
				pdf.CellFormat(pdfLabelW, rowH, tr(kv.Label), "1", 0, "L", true, 0, "")
				// value lines share the row height so both cells line up
				pdf.SetFont(font, "", size-1)
				pdf.MultiCell(pdfValueW, rowH/float64(n), tr(kv.Value), "1", "L", false)
			}

		case KindList:
			for _, item := range s.Items {
				paragraph("", "• "+item)
			}

		case KindText:
			paragraph("", s.Text)

		case KindActionItems, KindActionDashboard:
			for _, item := range s.Actions {
				paragraph("B", actionDescription(item))
				lines := []string{
					"Owner: " + actionOwner(item),
					"Due: " + actionDue(item),
					"Priority: " + actionPriority(item),
				}
				if s.Kind == KindActionDashboard {
					lines = append(lines, "Status: "+actionStatus(item))
				}
				paragraph("", strings.Join(lines, "\n"))
				pdf.Ln(pdfSpacing)
			}

		case KindDecisions:
			for _, d := range s.Decisions {
				paragraph("B", or(d.Decision, "N/A"))
				var lines []string
				if d.Rationale != "" {
					lines = append(lines, "Rationale: "+d.Rationale)
				}
				if len(d.Stakeholders) > 0 {
					lines = append(lines, "Stakeholders: "+strings.Join(d.Stakeholders, ", "))
				}
				if len(lines) > 0 {
					paragraph("", strings.Join(lines, "\n"))
				}
				pdf.Ln(pdfSpacing)
			}

		case KindTopics:
			for _, t := range s.Topics {
				paragraph("B", or(t.Topic, "N/A"))
				paragraph("", or(t.Summary, "N/A"))
				pdf.Ln(pdfSpacing)
			}

		case KindQuestions:
			for _, q := range s.Questions {
				paragraph("", "Q: "+or(q.Question, "N/A"))
				if q.WhoNeedsToAnswer != "" {
					paragraph("", "Owner: "+q.WhoNeedsToAnswer)
				}
				pdf.Ln(pdfSpacing)
			}
		}

		pdf.Ln(pdfSpacing * 2)
	}

	return pdf.OutputFileAndClose(outputPath)
}
