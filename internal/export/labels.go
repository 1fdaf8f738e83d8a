package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/RollCut/internal/model"
)

// LabelInfo holds the data encoded into each roll batch label's QR code.
type LabelInfo struct {
	PatternID  string      `json:"pattern"`
	Cuts       []model.Cut `json:"cuts"`
	RollLength int         `json:"roll_length_mm"`
	Waste      int         `json:"waste_mm"`
	RollsUsed  int         `json:"rolls"`
	Step       int         `json:"step"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns,
// 10 rows per page, roughly 66.7mm x 25.4mm per cell on US Letter).
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per pattern
// batch, so each stack of identically cut rolls can be tagged and
// scanned back into inventory.
func ExportLabels(path string, result model.Result, rollLength int) error {
	if len(result.Patterns) == 0 {
		return fmt.Errorf("no patterns to generate labels for")
	}

	labels := CollectLabelInfos(result, rollLength)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for pattern %s: %w", label.PatternID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.PatternID, info.Step)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("Pattern %s", shortID(info.PatternID)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, cutSummary(info.Cuts), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	meta := fmt.Sprintf("%d roll(s) of %dmm, waste %dmm", info.RollsUsed, info.RollLength, info.Waste)
	pdf.CellFormat(textW, 3, meta, "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// shortID truncates a pattern hash for the human-readable line; the QR
// payload keeps the full id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func cutSummary(cuts []model.Cut) string {
	s := ""
	for i, c := range cuts {
		if i > 0 {
			s += " + "
		}
		s += fmt.Sprintf("%dx%d", c.Quantity, c.Length)
	}
	return s
}

// CollectLabelInfos extracts label data from a result for rendering or
// for alternative export formats.
func CollectLabelInfos(result model.Result, rollLength int) []LabelInfo {
	labels := make([]LabelInfo, 0, len(result.Patterns))
	for i, p := range result.Patterns {
		labels = append(labels, LabelInfo{
			PatternID:  p.ID,
			Cuts:       p.Cuts,
			RollLength: rollLength,
			Waste:      p.Waste,
			RollsUsed:  p.RollsUsed,
			Step:       i + 1,
		})
	}
	return labels
}
