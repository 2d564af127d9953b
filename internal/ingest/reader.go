// Package ingest reads ingredient lists from JSON, CSV and XLSX files.
package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/recipe-cost/internal/model"
)

// ReadIngredients reads an ingredient list, choosing the format from the
// file extension.
func ReadIngredients(path string) ([]model.Ingredient, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return readJSON(path)
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, eris.Errorf("ingest: unsupported file type %q", ext)
	}
}

// readJSON accepts a bare array or an object with an "ingredients" array.
func readJSON(path string) ([]model.Ingredient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}

	var list []model.Ingredient
	if err := json.Unmarshal(data, &list); err == nil {
		return compact(list), nil
	}

	var wrapper struct {
		Ingredients []model.Ingredient `json:"ingredients"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "ingest: parse json")
	}
	return compact(wrapper.Ingredients), nil
}

// fromRows maps tabular rows onto ingredients. The first row is a header
// that must name a "name" and a "quantity" column.
func fromRows(rows [][]string) ([]model.Ingredient, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	nameCol, qtyCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "ingredient":
			nameCol = i
		case "quantity", "qty", "amount":
			qtyCol = i
		}
	}
	if nameCol < 0 || qtyCol < 0 {
		return nil, eris.Errorf("ingest: header must contain name and quantity columns, got %v", rows[0])
	}

	out := make([]model.Ingredient, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, model.Ingredient{
			Name:     cell(row, nameCol),
			Quantity: cell(row, qtyCol),
		})
	}
	return compact(out), nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// compact drops fully blank lines.
func compact(list []model.Ingredient) []model.Ingredient {
	out := list[:0]
	for _, ing := range list {
		if strings.TrimSpace(ing.Name) == "" && strings.TrimSpace(ing.Quantity) == "" {
			continue
		}
		out = append(out, ing)
	}
	return out
}
