package packaging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recipe-cost/internal/model"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "packages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultTable(t *testing.T) {
	t.Parallel()

	tbl := DefaultTable()
	d, ok := tbl.Lookup("chicken breast")
	require.True(t, ok)
	assert.Equal(t, model.PackageDescriptor{Size: "500g", Price: 5.99, Source: model.SourceHardcoded}, d)

	d, ok = tbl.Lookup("salt")
	require.True(t, ok)
	assert.Equal(t, "750g", d.Size)

	_, ok = tbl.Lookup("dragon fruit")
	assert.False(t, ok)
}

func TestLoadTable_EmptyPath(t *testing.T) {
	t.Parallel()

	tbl, err := LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable().Len(), tbl.Len())
}

func TestLoadTable_MergesOverrides(t *testing.T) {
	t.Parallel()

	path := writeTable(t, `
packages:
  Chicken Breast: {size: 1kg, price: 10.49}
  saffron:
    size: 1g
    price: 7.5
`)
	tbl, err := LoadTable(path)
	require.NoError(t, err)

	d, ok := tbl.Lookup("chicken breast")
	require.True(t, ok)
	assert.Equal(t, "1kg", d.Size)
	assert.InDelta(t, 10.49, d.Price, 1e-9)

	d, ok = tbl.Lookup("saffron")
	require.True(t, ok)
	assert.Equal(t, "1g", d.Size)

	_, ok = tbl.Lookup("salt")
	assert.True(t, ok)
	assert.Equal(t, DefaultTable().Len()+1, tbl.Len())
}

func TestLoadTable_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"malformed yaml", "packages: [", "parse table"},
		{"bad size", "packages:\n  saffron: {size: lots, price: 1}\n", "invalid size"},
		{"bad price", "packages:\n  saffron: {size: 1g, price: 0}\n", "non-positive price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTable(writeTable(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read table")
}

func TestTableNamesSorted(t *testing.T) {
	t.Parallel()

	names := DefaultTable().Names()
	require.NotEmpty(t, names)
	assert.IsNonDecreasing(t, names)
}
