package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/recipe-cost/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Recipe")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "recipe.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

var want = []model.Ingredient{
	{Name: "chicken breast", Quantity: "500g"},
	{Name: "salt", Quantity: "1 tsp"},
}

func TestReadIngredients_JSONArray(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "list.json", `[{"name":"chicken breast","quantity":"500g"},{"name":"salt","quantity":"1 tsp"}]`)
	got, err := ReadIngredients(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadIngredients_JSONObject(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "list.JSON", `{"ingredients":[{"name":"chicken breast","quantity":"500g"},{"name":"","quantity":""},{"name":"salt","quantity":"1 tsp"}]}`)
	got, err := ReadIngredients(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadIngredients_CSV(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "list.csv", "# weeknight dinner\nQuantity,Name\n500g,chicken breast\n,\n1 tsp, salt\n")
	got, err := ReadIngredients(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadIngredients_XLSX(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t, [][]string{
		{"Ingredient", "Amount", "Notes"},
		{"chicken breast", "500g", "boneless"},
		{"salt", "1 tsp"},
	})
	got, err := ReadIngredients(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadIngredients_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		errMsg string
	}{
		{"unsupported", writeFile(t, "list.txt", "salt"), "unsupported file type"},
		{"bad json", writeFile(t, "list.json", `{"ingredients":`), "parse json"},
		{"missing header", writeFile(t, "list.csv", "item,size\nsalt,1 tsp\n"), "name and quantity"},
		{"missing file", filepath.Join(t.TempDir(), "nope.csv"), "open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadIngredients(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
