package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/RollCut/internal/model"
)

// ExportJSON writes a solve result as indented JSON.
func ExportJSON(path string, result model.Result) error {
	return writeJSON(path, result)
}

// ExportRangeJSON writes a range sweep result as indented JSON.
func ExportRangeJSON(path string, result model.RangeResult) error {
	return writeJSON(path, result)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}
