package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestStore(t *testing.T) *Store {
	// cache=shared keeps the whole connection pool on one database; a plain
	// :memory: DSN gives every pooled connection its own empty one.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStore_AddAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Add(ctx, "2025-01-10", dec("42.50"), "groceries", "weekly run")
	require.NoError(t, err)
	assert.NotZero(t, id)

	expenses, err := store.List(ctx, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, id, expenses[0].ID)
	assert.Equal(t, "2025-01-10", expenses[0].Date)
	assert.True(t, expenses[0].Amount.Equal(dec("42.50")))
	assert.Equal(t, "groceries", expenses[0].Category)
	assert.Equal(t, "weekly run", expenses[0].Note)
}

func TestStore_SurvivesConnectionCycling(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)

	// Force every operation onto a fresh pooled connection; the migrated
	// schema must still be visible. One connection stays pinned for the
	// test's lifetime so the shared in-memory database itself survives.
	sqlDB, err := db.DB()
	require.NoError(t, err)

	ctx := context.Background()
	conn, err := sqlDB.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()
	sqlDB.SetMaxIdleConns(0)
	_, err = store.Add(ctx, "2025-01-10", dec("10"), "misc", "")
	require.NoError(t, err)

	expenses, err := store.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
}

func TestStore_AddValidation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		date     string
		amount   decimal.Decimal
		category string
	}{
		{"ZeroAmount", "2025-01-10", dec("0"), "misc"},
		{"NegativeAmount", "2025-01-10", dec("-5"), "misc"},
		{"EmptyCategory", "2025-01-10", dec("10"), ""},
		{"BadDate", "10/01/2025", dec("10"), "misc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Add(ctx, tt.date, tt.amount, tt.category, "")
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	expenses, err := store.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, expenses, "rejected adds must not persist anything")
}

func TestStore_IDsMonotonic(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var prev uint
	for i := 0; i < 10; i++ {
		id, err := store.Add(ctx, "2025-03-01", dec("1.00"), "misc", "")
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestStore_ListOrdering(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// Inserted out of date order on purpose.
	_, err := store.Add(ctx, "2025-02-15", dec("3"), "b", "")
	require.NoError(t, err)
	_, err = store.Add(ctx, "2025-02-01", dec("1"), "a", "")
	require.NoError(t, err)
	_, err = store.Add(ctx, "2025-02-15", dec("2"), "c", "")
	require.NoError(t, err)

	expenses, err := store.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, expenses, 3)
	assert.Equal(t, "2025-02-01", expenses[0].Date)
	assert.Equal(t, "2025-02-15", expenses[1].Date)
	assert.Equal(t, "2025-02-15", expenses[2].Date)
	// Same date resolves by id ascending.
	assert.Less(t, expenses[1].ID, expenses[2].ID)
}

func TestStore_ListRangeInclusive(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2025-01-01", "2025-01-15", "2025-01-31", "2025-02-01"} {
		_, err := store.Add(ctx, date, dec("5"), "misc", "")
		require.NoError(t, err)
	}

	expenses, err := store.List(ctx, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Len(t, expenses, 3, "both range endpoints are inclusive")

	expenses, err = store.List(ctx, "2025-02-01", "")
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
}

func TestStore_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Add(ctx, "2025-01-10", dec("42.50"), "groceries", "weekly run")
	require.NoError(t, err)

	t.Run("PartialFields", func(t *testing.T) {
		amount := dec("50.00")
		exp, err := store.Update(ctx, id, Fields{Amount: &amount})
		require.NoError(t, err)
		assert.True(t, exp.Amount.Equal(dec("50.00")))
		// Unsupplied fields are retained.
		assert.Equal(t, "groceries", exp.Category)
		assert.Equal(t, "weekly run", exp.Note)
	})

	t.Run("InvalidAmountLeavesRecordUnchanged", func(t *testing.T) {
		amount := dec("-5")
		_, err := store.Update(ctx, id, Fields{Amount: &amount})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)

		exp, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, exp.Amount.Equal(dec("50.00")))
	})

	t.Run("MissingID", func(t *testing.T) {
		category := "transport"
		_, err := store.Update(ctx, 9999, Fields{Category: &category})
		var nferr *NotFoundError
		assert.ErrorAs(t, err, &nferr)
	})
}

func TestStore_DeleteIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Add(ctx, "2025-01-10", dec("9.99"), "misc", "")
	require.NoError(t, err)

	existed, err := store.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, existed)

	expenses, err := store.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, expenses)

	existed, err = store.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, existed, "second delete reports nothing to remove")
}

func TestStore_Summarize(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	entries := []struct {
		date     string
		amount   string
		category string
	}{
		{"2025-01-05", "10.10", "groceries"},
		{"2025-01-12", "20.20", "groceries"},
		{"2025-01-20", "5.00", "transport"},
		{"2025-02-02", "99.99", "groceries"},
	}
	for _, e := range entries {
		_, err := store.Add(ctx, e.date, dec(e.amount), e.category, "")
		require.NoError(t, err)
	}

	totals, err := store.Summarize(ctx, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.True(t, totals["groceries"].Equal(dec("30.30")))
	assert.True(t, totals["transport"].Equal(dec("5.00")))

	// Category totals always sum to the list total over the same range.
	expenses, err := store.List(ctx, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	listSum := decimal.Zero
	for _, exp := range expenses {
		listSum = listSum.Add(exp.Amount)
	}
	summarySum := decimal.Zero
	for _, total := range totals {
		summarySum = summarySum.Add(total)
	}
	assert.True(t, listSum.Equal(summarySum))
}

func TestStore_SummarizeExactArithmetic(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// 0.1 added a hundred times trips float accumulation; decimal must not.
	for i := 0; i < 100; i++ {
		_, err := store.Add(ctx, "2025-01-10", dec("0.10"), "coffee", "")
		require.NoError(t, err)
	}

	totals, err := store.Summarize(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "10", totals["coffee"].String())
}

func TestStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), 404)
	var nferr *NotFoundError
	require.True(t, errors.As(err, &nferr))
	assert.Equal(t, uint(404), nferr.ID)
}
