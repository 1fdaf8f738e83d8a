package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/RollCut/internal/model"
)

// Drawing layout: rolls are stacked vertically, drawn at 1 unit per mm.
const (
	dxfRollHeight = 60.0
	dxfRollGap    = 40.0
)

// ExportDXF draws the cutting plan as a DXF file: one rectangle per
// pattern (a representative roll) with a vertical stop line at every
// cut boundary. CAD-driven saws consume this directly.
func ExportDXF(path string, result model.Result, rollLength int) error {
	if len(result.Patterns) == 0 {
		return fmt.Errorf("no patterns to export")
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer("ROLLS", dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}

	y := 0.0
	for _, p := range result.Patterns {
		if err := drawRoll(d, p, rollLength, y); err != nil {
			return err
		}
		y -= dxfRollHeight + dxfRollGap
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

// drawRoll draws one pattern's outline and its interior cut stops.
func drawRoll(d *drawing.Drawing, p model.PatternUsage, rollLength int, y float64) error {
	w := float64(rollLength)
	corners := [][4]float64{
		{0, y, w, y}, // bottom
		{0, y + dxfRollHeight, w, y + dxfRollHeight}, // top
		{0, y, 0, y + dxfRollHeight},                 // left
		{w, y, w, y + dxfRollHeight},                 // right
	}
	for _, c := range corners {
		if _, err := d.Line(c[0], c[1], 0, c[2], c[3], 0); err != nil {
			return fmt.Errorf("failed to draw roll outline: %w", err)
		}
	}

	// Cut stop lines at each piece boundary.
	x := 0.0
	for _, c := range p.Cuts {
		for n := 0; n < c.Quantity; n++ {
			x += float64(c.Length)
			if x >= w {
				break
			}
			if _, err := d.Line(x, y, 0, x, y+dxfRollHeight, 0); err != nil {
				return fmt.Errorf("failed to draw cut line: %w", err)
			}
		}
	}
	return nil
}
