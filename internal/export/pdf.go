// Package export provides functionality for exporting cutting-stock
// results to various file formats.
package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/RollCut/internal/model"
)

// cutColor represents an RGB color for a drawn cut segment.
type cutColor struct {
	R, G, B int
}

// cutColors cycles through distinct fills so adjacent pieces of
// different lengths are easy to tell apart on the shop floor.
var cutColors = []cutColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	barHeight    = 22.0
	barGap       = 14.0
	drawAreaTop  = marginTop + headerHeight + 8.0
)

// ExportPDF generates a PDF report of a solve: roll diagrams for every
// pattern, then a summary page with totals and the algorithm trace.
func ExportPDF(path string, result model.Result, rollLength int) error {
	if len(result.Patterns) == 0 {
		return fmt.Errorf("no patterns to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPatternPages(pdf, result, rollLength)

	pdf.AddPage()
	renderSummaryPage(pdf, result, rollLength)

	return pdf.OutputFileAndClose(path)
}

// renderPatternPages draws one horizontal roll bar per pattern, flowing
// onto additional pages as needed.
func renderPatternPages(pdf *fpdf.Fpdf, result model.Result, rollLength int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Cutting Plan - %d rolls of %dmm", result.TotalRolls, rollLength)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	y := drawAreaTop
	for i, p := range result.Patterns {
		if y+barHeight+barGap > pageHeight-marginBottom {
			pdf.AddPage()
			y = marginTop
		}
		renderRollBar(pdf, p, rollLength, y, i)
		y += barHeight + barGap
	}
}

// renderRollBar draws one pattern as a scaled 1-D bar: colored segments
// for the cuts, gray tail for the waste.
func renderRollBar(pdf *fpdf.Fpdf, p model.PatternUsage, rollLength int, y float64, index int) {
	drawWidth := pageWidth - marginLeft - marginRight
	scale := drawWidth / float64(rollLength)

	// Caption above the bar
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft, y-5)
	caption := fmt.Sprintf("Pattern %s - %d roll(s), waste %dmm", p.ID, p.RollsUsed, p.Waste)
	pdf.CellFormat(drawWidth, 4, caption, "", 0, "L", false, 0, "")

	// Roll outline
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(marginLeft, y, drawWidth, barHeight, "D")

	// Cut segments
	x := marginLeft
	colorIdx := index
	pdf.SetFont("Helvetica", "", 8)
	for _, c := range p.Cuts {
		for n := 0; n < c.Quantity; n++ {
			w := float64(c.Length) * scale
			col := cutColors[colorIdx%len(cutColors)]
			pdf.SetFillColor(col.R, col.G, col.B)
			pdf.SetDrawColor(30, 30, 30)
			pdf.SetLineWidth(0.2)
			pdf.Rect(x, y, w, barHeight, "FD")

			label := fmt.Sprintf("%d", c.Length)
			if pdf.GetStringWidth(label) < w-1 {
				pdf.SetTextColor(255, 255, 255)
				pdf.SetXY(x, y+barHeight/2-2)
				pdf.CellFormat(w, 4, label, "", 0, "C", false, 0, "")
			}
			x += w
		}
		colorIdx++
	}

	// Waste tail
	if p.Waste > 0 {
		w := float64(p.Waste) * scale
		pdf.SetFillColor(220, 220, 220)
		pdf.SetDrawColor(150, 150, 150)
		pdf.Rect(x, y, w, barHeight, "FD")
	}
	pdf.SetTextColor(0, 0, 0)
}

// renderSummaryPage prints the headline numbers, the instruction list,
// and the algorithm trace.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.Result, rollLength int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Master roll length: %dmm", rollLength),
		fmt.Sprintf("Total rolls: %d", result.TotalRolls),
		fmt.Sprintf("Efficiency: %.2f%%", result.Efficiency),
		fmt.Sprintf("Waste: %dmm (%.2f%%)", result.TotalWaste, result.WastePercentage),
		fmt.Sprintf("Cost savings vs FFD: %.2f", result.CostSavings),
		fmt.Sprintf("Convergence: %s after %d iterations, %d patterns evaluated",
			result.Performance.Convergence, result.Performance.Iterations, result.Performance.PatternsEvaluated),
	}
	y := marginTop + headerHeight + 4
	for _, line := range lines {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, line, "", 1, "L", false, 0, "")
		y += 6
	}

	y += 4
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(0, 5, "Cutting instructions", "", 1, "L", false, 0, "")
	y += 7
	pdf.SetFont("Helvetica", "", 9)
	for _, ins := range result.CuttingInstructions {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(0, 4.5, fmt.Sprintf("%d. %s  |  %s", ins.Step, ins.Description, ins.Pattern), "", 1, "L", false, 0, "")
		y += 5
	}

	y += 4
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(0, 5, "Algorithm trace", "", 1, "L", false, 0, "")
	y += 7
	pdf.SetFont("Helvetica", "", 9)
	for _, step := range result.AlgorithmSteps {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(0, 4.5, fmt.Sprintf("%d. %s [%s] %.3fs - %s", step.Step, step.Name, step.Status, step.Duration, step.Description), "", 1, "L", false, 0, "")
		y += 5
	}
}
