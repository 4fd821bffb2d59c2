package services

import (
	"bytes"
	"fmt"
	"time"
	"vayro/budget"
	"vayro/itinerary"

	"github.com/jung-kurt/gofpdf"
)

type PDFData struct {
	TravelerName string
	Destination  string
	Itinerary    itinerary.Itinerary
	Summary      *budget.Summary // nil when no budget estimate is available
	Generated    time.Time
}

// GeneratePDFBytes renders a trip plan and its budget as a PDF.
func GeneratePDFBytes(data PDFData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	// Core fonts are cp1252; the translator keeps en-dashes and accents readable.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8,
			"Generated by Vayro - estimates are based on price ranges and are not quotes",
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "Vayro", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, tr("Trip plan for "+data.Destination), "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, tr(value), "", 1, "L", false, 0, "")
	}

	// ── Traveler Info ─────────────────────────────────────────
	sectionHeader("Traveler")
	name := data.TravelerName
	if name == "" {
		name = "Guest Traveler"
	}
	generated := data.Generated
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	row("Name", name)
	row("Generated", generated.Format("02 Jan 2006, 15:04 UTC"))
	row("Days", fmt.Sprintf("%d", len(data.Itinerary)))
	pdf.Ln(4)

	// ── Budget ────────────────────────────────────────────────
	sectionHeader("Budget Estimate")
	if data.Summary == nil {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(170, 7, "Budget summary unavailable.", "", 1, "L", false, 0, "")
	} else {
		for _, d := range data.Summary.Days {
			row(d.Label, budgetLine(d.BudgetEntry))
		}
		pdf.SetFillColor(212, 168, 67)
		pdf.SetTextColor(13, 24, 37)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 9, "TRIP TOTAL", "", 0, "L", true, 0, "")
		pdf.CellFormat(115, 9, tr(budgetLine(data.Summary.Total)), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	// ── Days ──────────────────────────────────────────────────
	for _, day := range data.Itinerary {
		sectionHeader(day.Day)
		if len(day.Schedule) == 0 {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.CellFormat(170, 7, "Nothing scheduled.", "", 1, "L", false, 0, "")
		}
		for _, slot := range day.Schedule {
			if len(slot.Options) == 0 {
				row(slot.Time, "Free time")
				continue
			}
			top := slot.Options[0]
			row(slot.Time, fmt.Sprintf("%s  (%s)", top.Name, top.Tier()))
			if top.Address != "" && top.Address != "N/A" {
				pdf.SetFont("Helvetica", "", 8)
				pdf.SetTextColor(120, 120, 120)
				pdf.SetX(75)
				pdf.MultiCell(115, 4, tr(top.Address), "", "L", false)
			}
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func budgetLine(e budget.BudgetEntry) string {
	verdict := "within budget"
	if !e.Within {
		verdict = fmt.Sprintf("over by $%.2f", e.Overage)
	}
	return fmt.Sprintf("$%.0f of $%.2f, %s", e.Estimated, e.Budget, verdict)
}
