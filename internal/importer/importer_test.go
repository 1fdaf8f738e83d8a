package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/RollCut/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportCSV_WithHeader(t *testing.T) {
	path := writeTemp(t, "demand.csv", "length,quantity,priority\n1200,4,high\n800,10,normal\n450,2,low\n")

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Demand, 3)
	assert.Equal(t, model.DemandLine{Length: 1200, Quantity: 4, Priority: model.PriorityHigh}, result.Demand[0])
	assert.Equal(t, model.DemandLine{Length: 450, Quantity: 2, Priority: model.PriorityLow}, result.Demand[2])
}

func TestImportCSV_HeaderAliases(t *testing.T) {
	path := writeTemp(t, "demand.csv", "Len,Qty,Prio\n100,2,high\n")

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Demand, 1)
	assert.Equal(t, model.DemandLine{Length: 100, Quantity: 2, Priority: model.PriorityHigh}, result.Demand[0])
}

func TestImportCSV_SemicolonDelimiter(t *testing.T) {
	path := writeTemp(t, "demand.csv", "length;quantity\n100;2\n200;3\n")

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Demand, 2)
	assert.Equal(t, 200, result.Demand[1].Length)
}

func TestImportCSV_NoHeaderUsesPositionalMapping(t *testing.T) {
	path := writeTemp(t, "demand.csv", "100,2,high\n200,3,low\n")

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Demand, 2)
	assert.Equal(t, model.PriorityHigh, result.Demand[0].Priority)
}

func TestImportCSV_MissingPriorityDefaultsToNormal(t *testing.T) {
	path := writeTemp(t, "demand.csv", "length,quantity\n100,2\n")

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Demand, 1)
	assert.Equal(t, model.PriorityNormal, result.Demand[0].Priority)
}

func TestImportCSV_InvalidRowsAreCollected(t *testing.T) {
	path := writeTemp(t, "demand.csv", "length,quantity\n100,2\nabc,3\n200,0\n300,4\n")

	result := ImportCSV(path)

	assert.Len(t, result.Errors, 2, "bad rows are reported individually")
	require.Len(t, result.Demand, 2, "good rows survive")
	assert.Equal(t, 100, result.Demand[0].Length)
	assert.Equal(t, 300, result.Demand[1].Length)
}

func TestImportCSV_UnknownPriorityWarns(t *testing.T) {
	path := writeTemp(t, "demand.csv", "length,quantity,priority\n100,2,urgent\n")

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	assert.Len(t, result.Warnings, 1)
	require.Len(t, result.Demand, 1)
	assert.Equal(t, model.PriorityNormal, result.Demand[0].Priority)
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := writeTemp(t, "demand.csv", "")
	result := ImportCSV(path)
	assert.NotEmpty(t, result.Errors)
}

func TestImportCSV_MissingFile(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.NotEmpty(t, result.Errors)
}

func TestImportExcel_ReadsFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demand.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "length"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "quantity"))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "priority"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 1500))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 6))
	require.NoError(t, f.SetCellValue("Sheet1", "C2", "high"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", 900))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", 2))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result := ImportExcel(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Demand, 2)
	assert.Equal(t, model.DemandLine{Length: 1500, Quantity: 6, Priority: model.PriorityHigh}, result.Demand[0])
	assert.Equal(t, model.DemandLine{Length: 900, Quantity: 2, Priority: model.PriorityNormal}, result.Demand[1])
}

func TestImport_DispatchesOnExtension(t *testing.T) {
	csvPath := writeTemp(t, "demand.csv", "length,quantity\n100,1\n")
	result := Import(csvPath)
	require.Empty(t, result.Errors)
	assert.Len(t, result.Demand, 1)
}

func TestDetectCSVDelimiter(t *testing.T) {
	cases := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"tab", "a\tb\tc\n1\t2\t3\n", '\t'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectCSVDelimiter([]byte(tc.data)))
		})
	}
}

func TestDetectColumns(t *testing.T) {
	mapping, ok := DetectColumns([]string{"Quantity", "Piece Length", "Priority"})
	assert.True(t, ok)
	assert.Equal(t, 1, mapping.Length)
	assert.Equal(t, 0, mapping.Quantity)
	assert.Equal(t, 2, mapping.Priority)

	mapping, ok = DetectColumns([]string{"100", "2"})
	assert.False(t, ok)
	assert.Equal(t, ColumnMapping{Length: 0, Quantity: 1, Priority: 2}, mapping)
}
