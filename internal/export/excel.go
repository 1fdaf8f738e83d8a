package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/RollCut/internal/model"
)

// ExportExcel writes a solve result as an XLSX workbook with Summary,
// Patterns, and Instructions sheets.
func ExportExcel(path string, result model.Result, rollLength int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	summaryRows := [][]any{
		{"Master roll length (mm)", rollLength},
		{"Total rolls", result.TotalRolls},
		{"Efficiency (%)", result.Efficiency},
		{"Waste (%)", result.WastePercentage},
		{"Total waste (mm)", result.TotalWaste},
		{"Cost savings vs FFD", result.CostSavings},
		{"Convergence", string(result.Performance.Convergence)},
		{"Iterations", result.Performance.Iterations},
		{"Patterns evaluated", result.Performance.PatternsEvaluated},
		{"Execution time (s)", result.Performance.ExecutionTime},
	}
	if err := writeRows(f, "Summary", summaryRows); err != nil {
		return err
	}

	if _, err := f.NewSheet("Patterns"); err != nil {
		return fmt.Errorf("failed to create Patterns sheet: %w", err)
	}
	patternRows := [][]any{{"Pattern ID", "Cuts", "Total length (mm)", "Waste (mm)", "Rolls used"}}
	for _, p := range result.Patterns {
		patternRows = append(patternRows, []any{p.ID, cutSummary(p.Cuts), p.TotalLength, p.Waste, p.RollsUsed})
	}
	if err := writeRows(f, "Patterns", patternRows); err != nil {
		return err
	}

	if _, err := f.NewSheet("Instructions"); err != nil {
		return fmt.Errorf("failed to create Instructions sheet: %w", err)
	}
	instructionRows := [][]any{{"Step", "Description", "Pattern", "Rolls"}}
	for _, ins := range result.CuttingInstructions {
		instructionRows = append(instructionRows, []any{ins.Step, ins.Description, ins.Pattern, ins.RollsCount})
	}
	if err := writeRows(f, "Instructions", instructionRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeRows fills a sheet row by row starting at A1.
func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
