package sheets

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FailsFastWithoutCredentials(t *testing.T) {
	_, err := New(context.Background(), "")
	assert.Error(t, err)

	_, err = New(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestProvider_Catalog(t *testing.T) {
	p := &Provider{}
	assert.Equal(t, "sheets", p.Name())

	names := make(map[string]bool)
	for _, tool := range p.ListTools() {
		names[tool.Name] = true
	}
	for _, want := range []string{"create_spreadsheet", "read_range", "append_row", "update_range"} {
		assert.True(t, names[want])
	}
}

func TestGridValues(t *testing.T) {
	t.Run("Nested", func(t *testing.T) {
		rows, err := gridValues([]interface{}{
			[]interface{}{"a", "b"},
			[]interface{}{"c", "d"},
		})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, []interface{}{"c", "d"}, rows[1])
	})

	t.Run("FlatBecomesSingleRow", func(t *testing.T) {
		rows, err := gridValues([]interface{}{"a", "b", "c"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Len(t, rows[0], 3)
	})

	t.Run("NotAnArray", func(t *testing.T) {
		_, err := gridValues("a,b,c")
		assert.Error(t, err)
	})
}

func TestRowValues(t *testing.T) {
	row, err := rowValues([]interface{}{"x", 1.0})
	require.NoError(t, err)
	assert.Len(t, row, 2)

	_, err = rowValues(42)
	assert.Error(t, err)
}
