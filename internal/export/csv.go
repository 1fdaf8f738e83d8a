package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/piwi3910/RollCut/internal/model"
)

// ExportCSV writes the patterns and cutting instructions of a result as
// a two-section CSV file, the format shop spreadsheets expect.
func ExportCSV(path string, result model.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	records := [][]string{
		{"pattern_id", "cuts", "total_length", "waste", "rolls_used"},
	}
	for _, p := range result.Patterns {
		records = append(records, []string{
			p.ID,
			cutSummary(p.Cuts),
			strconv.Itoa(p.TotalLength),
			strconv.Itoa(p.Waste),
			strconv.Itoa(p.RollsUsed),
		})
	}

	records = append(records, []string{}, []string{"step", "description", "pattern", "rolls_count"})
	for _, ins := range result.CuttingInstructions {
		records = append(records, []string{
			strconv.Itoa(ins.Step),
			ins.Description,
			ins.Pattern,
			strconv.Itoa(ins.RollsCount),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}
	return w.Error()
}
