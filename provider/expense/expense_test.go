package expense

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/niloybiswas/toolhost/storage"
)

func setupProvider(t *testing.T) *Provider {
	// cache=shared keeps the whole connection pool on one database; a plain
	// :memory: DSN gives every pooled connection its own empty one.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	store, err := storage.NewStore(db)
	require.NoError(t, err)
	return New(store)
}

func TestProvider_Catalog(t *testing.T) {
	p := setupProvider(t)

	names := make(map[string]bool)
	for _, tool := range p.ListTools() {
		names[tool.Name] = true
		assert.Equal(t, "object", tool.InputSchema.Type)
		assert.NotEmpty(t, tool.Description)
	}

	for _, want := range []string{"add_expense", "list_expenses", "update_expense", "delete_expense", "get_summary", "export_expenses"} {
		assert.True(t, names[want], "catalog should contain %s", want)
	}
}

func TestProvider_AddThenSummary(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	res, err := p.Call(ctx, "add_expense", map[string]interface{}{
		"date":     "2025-01-10",
		"amount":   42.50,
		"category": "groceries",
	})
	require.NoError(t, err)
	assert.Equal(t, "recorded", res.(map[string]interface{})["status"])

	summary, err := p.Call(ctx, "get_summary", map[string]interface{}{
		"start_date": "2025-01-01",
		"end_date":   "2025-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"groceries": "42.5"}, summary)
}

func TestProvider_AddValidation(t *testing.T) {
	p := setupProvider(t)

	_, err := p.Call(context.Background(), "add_expense", map[string]interface{}{
		"date":     "2025-01-10",
		"amount":   -5.0,
		"category": "groceries",
	})
	var verr *storage.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestProvider_UpdateAndDelete(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	res, err := p.Call(ctx, "add_expense", map[string]interface{}{
		"date": "2025-01-10", "amount": 10.0, "category": "misc",
	})
	require.NoError(t, err)
	id := res.(map[string]interface{})["id"].(uint)

	updated, err := p.Call(ctx, "update_expense", map[string]interface{}{
		"id": float64(id), "category": "transport",
	})
	require.NoError(t, err)
	assert.Equal(t, "transport", updated.(*storage.Expense).Category)

	deleted, err := p.Call(ctx, "delete_expense", map[string]interface{}{"id": float64(id)})
	require.NoError(t, err)
	assert.Equal(t, true, deleted.(map[string]interface{})["deleted"])

	// Idempotent: a second delete succeeds but reports no record.
	deleted, err = p.Call(ctx, "delete_expense", map[string]interface{}{"id": float64(id)})
	require.NoError(t, err)
	assert.Equal(t, false, deleted.(map[string]interface{})["deleted"])
}

func TestProvider_UpdateMissing(t *testing.T) {
	p := setupProvider(t)

	_, err := p.Call(context.Background(), "update_expense", map[string]interface{}{
		"id": float64(9999), "category": "transport",
	})
	var nferr *storage.NotFoundError
	assert.ErrorAs(t, err, &nferr)
}

func TestProvider_Export(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	_, err := p.Call(ctx, "add_expense", map[string]interface{}{
		"date": "2025-01-10", "amount": 1.0, "category": "misc",
	})
	require.NoError(t, err)

	csvOut, err := p.Call(ctx, "export_expenses", map[string]interface{}{"format": "csv"})
	require.NoError(t, err)
	assert.Contains(t, csvOut.(string), "id,date,amount,category,note")

	jsonOut, err := p.Call(ctx, "export_expenses", map[string]interface{}{"format": "json"})
	require.NoError(t, err)
	assert.Contains(t, jsonOut.(string), "\"category\"")

	_, err = p.Call(ctx, "export_expenses", map[string]interface{}{"format": "xml"})
	var verr *storage.ValidationError
	assert.ErrorAs(t, err, &verr)
}
