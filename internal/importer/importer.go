// Package importer provides CSV and Excel import functionality for
// demand lists. It supports automatic delimiter detection, flexible
// column mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/RollCut/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Demand   []model.DemandLine
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Length   int
	Quantity int
	Priority int
}

// headerAliases maps canonical column names to their accepted aliases
// (all lowercase).
var headerAliases = map[string][]string{
	"length":   {"length", "len", "l", "size", "piece length", "beam length"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"priority": {"priority", "prio", "urgency", "importance"},
}

// Import reads a demand list from a CSV or XLSX file, dispatching on
// the file extension.
func Import(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}

// ImportCSV reads a demand list from a CSV file with delimiter
// auto-detection. Invalid rows are reported as row-scoped errors while
// the remaining rows survive.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read file: %v", err))
		return result
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = DetectCSVDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse CSV: %v", err))
		return result
	}
	return parseRows(rows)
}

// ImportExcel reads a demand list from the first sheet of an XLSX file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open workbook: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Workbook has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read sheet %q: %v", sheets[0], err))
		return result
	}
	return parseRows(rows)
}

// parseRows converts raw tabular data into demand lines.
func parseRows(rows [][]string) ImportResult {
	result := ImportResult{}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File contains no rows")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
	}
	if mapping.Length < 0 || mapping.Quantity < 0 {
		result.Errors = append(result.Errors, "Could not locate length and quantity columns")
		return result
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("Row %d", i+1)
		line, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Demand = append(result.Demand, line)
	}

	if len(result.Demand) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "File contains no demand rows")
	}
	return result
}

// DetectCSVDelimiter determines the most likely delimiter by trying
// comma, semicolon, tab, and pipe, and scoring each by the consistency
// of column counts it produces.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Score: count how many rows have the same column count as the
		// first row. Only consider delimiters that produce more than 1
		// column.
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}
	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping using
// case-insensitive alias matching. When no header is recognized it
// falls back to the positional mapping length, quantity, priority and
// reports false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Length: -1, Quantity: -1, Priority: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "length":
					if mapping.Length == -1 {
						mapping.Length = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				case "priority":
					if mapping.Priority == -1 {
						mapping.Priority = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Length: 0, Quantity: 1, Priority: 2}, false
	}
	return mapping, true
}

// getCell safely retrieves a trimmed cell value by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRow extracts one demand line from a row. It returns the line,
// an error message, and a warning message; an empty error means the
// row is usable.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.DemandLine, string, string) {
	lengthStr := getCell(row, mapping.Length)
	if lengthStr == "" {
		return model.DemandLine{}, fmt.Sprintf("%s: Missing length value", rowLabel), ""
	}
	length, err := strconv.Atoi(lengthStr)
	if err != nil || length <= 0 {
		return model.DemandLine{}, fmt.Sprintf("%s: Invalid length %q", rowLabel, lengthStr), ""
	}

	qtyStr := getCell(row, mapping.Quantity)
	if qtyStr == "" {
		return model.DemandLine{}, fmt.Sprintf("%s: Missing quantity value", rowLabel), ""
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty <= 0 {
		return model.DemandLine{}, fmt.Sprintf("%s: Invalid quantity %q", rowLabel, qtyStr), ""
	}

	warning := ""
	prioStr := strings.ToLower(getCell(row, mapping.Priority))
	switch prioStr {
	case "", "low", "normal", "high":
	default:
		warning = fmt.Sprintf("%s: Unknown priority %q, using normal", rowLabel, prioStr)
	}

	return model.DemandLine{
		Length:   length,
		Quantity: qty,
		Priority: model.ParsePriority(prioStr),
	}, "", warning
}
