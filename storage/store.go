package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/niloybiswas/toolhost/config"
	"github.com/niloybiswas/toolhost/log"
)

// Store serializes all access to the expense ledger. Writes take the
// exclusive lock so ids stay monotonic and updates are never lost; reads
// share the lock among themselves.
type Store struct {
	mu sync.RWMutex
	db *gorm.DB
}

// Open connects to the configured database backend and ensures the schema
// exists. The sqlite file additionally gets the raw-SQL bootstrap from
// migrations.go so a fresh file is usable before gorm sees it.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		if err := InitSQLiteFile(cfg.Path); err != nil {
			return nil, fmt.Errorf("sqlite bootstrap failed: %w", err)
		}
		dialector = sqlite.Open(cfg.Path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if err := db.AutoMigrate(&Expense{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	log.Infof(ctx, "Expense store ready (driver=%s)", cfg.Driver)
	return &Store{db: db}, nil
}

// NewStore wraps an already-open database. Used by tests and the in-memory path.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Expense{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Add validates and persists a new expense, returning its assigned id.
func (s *Store) Add(ctx context.Context, date string, amount decimal.Decimal, category, note string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp := &Expense{Date: date, Amount: amount, Category: category, Note: note}
	if err := exp.validate(); err != nil {
		return 0, err
	}

	if err := s.db.WithContext(ctx).Create(exp).Error; err != nil {
		return 0, fmt.Errorf("failed to persist expense: %w", err)
	}

	log.Debugf(ctx, "Added expense id=%d date=%s amount=%s category=%s", exp.ID, exp.Date, exp.Amount, exp.Category)
	return exp.ID, nil
}

// List returns expenses whose date falls within the inclusive range. Empty
// bounds are open-ended. Results are ordered by date, then id.
func (s *Store) List(ctx context.Context, startDate, endDate string) ([]Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(ctx, startDate, endDate)
}

func (s *Store) list(ctx context.Context, startDate, endDate string) ([]Expense, error) {
	q := s.db.WithContext(ctx).Model(&Expense{})
	if startDate != "" {
		q = q.Where("date >= ?", startDate)
	}
	if endDate != "" {
		q = q.Where("date <= ?", endDate)
	}

	var expenses []Expense
	if err := q.Order("date, id").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// Get returns a single expense by id.
func (s *Store) Get(ctx context.Context, id uint) (*Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exp Expense
	err := s.db.WithContext(ctx).First(&exp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load expense %d: %w", id, err)
	}
	return &exp, nil
}

// Update applies the supplied fields to an existing expense and re-validates
// the merged record before saving. Unsupplied fields keep their values.
func (s *Store) Update(ctx context.Context, id uint, fields Fields) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exp Expense
	err := s.db.WithContext(ctx).First(&exp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load expense %d: %w", id, err)
	}

	if fields.Date != nil {
		exp.Date = *fields.Date
	}
	if fields.Amount != nil {
		exp.Amount = *fields.Amount
	}
	if fields.Category != nil {
		exp.Category = *fields.Category
	}
	if fields.Note != nil {
		exp.Note = *fields.Note
	}

	if err := exp.validate(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(&exp).Error; err != nil {
		return nil, fmt.Errorf("failed to update expense %d: %w", id, err)
	}

	log.Debugf(ctx, "Updated expense id=%d", id)
	return &exp, nil
}

// Delete removes an expense and reports whether it existed. Deleting a
// missing id is not an error.
func (s *Store) Delete(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.WithContext(ctx).Delete(&Expense{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete expense %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Summarize aggregates amounts per category over the filtered record set.
// Accumulation happens in decimal space; float drift would show up in
// long-running ledgers otherwise.
func (s *Store) Summarize(ctx context.Context, startDate, endDate string) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses, err := s.list(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, exp := range expenses {
		totals[exp.Category] = totals[exp.Category].Add(exp.Amount)
	}
	return totals, nil
}
