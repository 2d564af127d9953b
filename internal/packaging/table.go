package packaging

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/recipe-cost/internal/measure"
	"github.com/sells-group/recipe-cost/internal/model"
)

// Package is a static table row.
type Package struct {
	Size  string  `yaml:"size"`
	Price float64 `yaml:"price"`
}

// Table maps normalized ingredient names to the package a store sells.
// It is read-only after construction.
type Table struct {
	packages map[string]Package
}

func defaultPackages() map[string]Package {
	return map[string]Package{
		"chicken breast":  {"500g", 5.99},
		"chicken thigh":   {"500g", 4.99},
		"ground beef":     {"500g", 6.49},
		"bacon":           {"250g", 4.29},
		"salmon fillet":   {"300g", 8.99},
		"tofu":            {"400g", 2.29},
		"eggs":            {"12 piece", 3.49},
		"milk":            {"1l", 1.99},
		"heavy cream":     {"500ml", 3.29},
		"butter":          {"250g", 3.49},
		"cheddar cheese":  {"200g", 3.99},
		"parmesan":        {"150g", 4.49},
		"yogurt":          {"500g", 2.49},
		"flour":           {"1kg", 1.99},
		"sugar":           {"1kg", 2.29},
		"brown sugar":     {"500g", 1.99},
		"rice":            {"1kg", 2.49},
		"pasta":           {"500g", 1.49},
		"spaghetti":       {"500g", 1.49},
		"bread":           {"800g", 2.79},
		"oats":            {"1kg", 2.19},
		"olive oil":       {"500ml", 6.99},
		"vegetable oil":   {"1l", 3.49},
		"vinegar":         {"500ml", 1.49},
		"soy sauce":       {"250ml", 2.29},
		"chicken stock":   {"1l", 2.49},
		"salt":            {"750g", 1.29},
		"black pepper":    {"50g", 2.99},
		"cumin":           {"50g", 2.49},
		"paprika":         {"50g", 2.49},
		"cinnamon":        {"50g", 2.49},
		"baking powder":   {"200g", 1.79},
		"garlic":          {"1 bulb", 0.59},
		"onion":           {"1kg", 1.99},
		"tomato":          {"500g", 2.49},
		"potato":          {"2kg", 2.99},
		"carrot":          {"1kg", 1.29},
		"lemon":           {"4 piece", 1.99},
		"cilantro":        {"1 bunch", 0.99},
		"parsley":         {"1 bunch", 0.99},
		"spinach":         {"200g", 2.29},
		"canned tomatoes": {"400g", 0.99},
	}
}

// DefaultTable returns the built-in package table.
func DefaultTable() *Table {
	return &Table{packages: defaultPackages()}
}

// LoadTable returns the built-in table merged with the YAML file at path.
// File rows override built-in rows of the same name. An empty path yields
// the built-in table.
//
//	packages:
//	  chicken breast: {size: 500g, price: 5.99}
func LoadTable(path string) (*Table, error) {
	t := DefaultTable()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "packaging: read table %s", path)
	}

	var wrapper struct {
		Packages map[string]Package `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "packaging: parse table")
	}

	for name, p := range wrapper.Packages {
		key := normalizeName(name)
		if key == "" {
			return nil, eris.New("packaging: table row with empty name")
		}
		if measure.NormalizeSize(p.Size) == "" {
			return nil, eris.Errorf("packaging: table row %q has invalid size %q", name, p.Size)
		}
		if p.Price <= 0 {
			return nil, eris.Errorf("packaging: table row %q has non-positive price", name)
		}
		t.packages[key] = p
	}
	return t, nil
}

// Lookup returns the hardcoded descriptor for a normalized name.
func (t *Table) Lookup(name string) (model.PackageDescriptor, bool) {
	p, ok := t.packages[name]
	if !ok {
		return model.PackageDescriptor{}, false
	}
	return model.PackageDescriptor{Size: p.Size, Price: p.Price, Source: model.SourceHardcoded}, true
}

// Names returns the table's ingredient names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.packages))
	for k := range t.packages {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.packages)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
