package pdf

import (
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskorganizer/internal/models"
)

// Generator renders task reports (interface kept small for test fakes).
type Generator interface {
	TasksReport(w io.Writer, userName string, tasks []models.Task) error
}

type ReportGenerator struct{}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

// TasksReport writes a one-page-per-40-rows PDF listing of the given tasks.
func (g *ReportGenerator) TasksReport(w io.Writer, userName string, tasks []models.Task) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Tasks Report", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Tasks Report")
	doc.Ln(8)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 8, "User: "+userName)
	doc.Ln(6)
	doc.Cell(0, 8, "Generated: "+time.Now().Format("2006-01-02 15:04"))
	doc.Ln(10)

	colWidths := []float64{70, 25, 28, 32, 35}
	headers := []string{"Title", "Priority", "Status", "Due", "Reminder"}

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(230, 230, 230)
	for i, h := range headers {
		doc.CellFormat(colWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	for _, t := range tasks {
		title := t.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		due := "-"
		if t.DueAt != nil {
			due = t.DueAt.Format("2006-01-02 15:04")
		}
		remind := "-"
		if t.RemindAt != nil {
			remind = t.RemindAt.Format("2006-01-02 15:04")
		}

		doc.CellFormat(colWidths[0], 6, title, "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[1], 6, string(t.Priority), "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[2], 6, string(t.Status), "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[3], 6, due, "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[4], 6, remind, "1", 0, "L", false, 0, "")
		doc.Ln(-1)
	}

	if len(tasks) == 0 {
		doc.Cell(0, 8, "No tasks.")
	}

	return doc.Output(w)
}
