// Package storage owns the durable expense ledger. All reads and writes go
// through a Store; no other component touches the database directly.
package storage

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used throughout the ledger.
// ISO dates compare correctly as strings, which keeps range filtering simple.
const DateLayout = "2006-01-02"

// Expense is a single persisted expense entry.
type Expense struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Date     string          `gorm:"index" json:"date"`
	Amount   decimal.Decimal `gorm:"type:numeric" json:"amount"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
}

// Fields carries a partial update; nil pointers leave the stored value as is.
type Fields struct {
	Date     *string
	Amount   *decimal.Decimal
	Category *string
	Note     *string
}

// ValidationError reports bad input to a storage operation. It never escapes
// the expense provider unwrapped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a reference to an expense that does not exist.
type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("expense %d not found", e.ID)
}

// validate checks the record-level invariants: parseable date, positive
// amount, non-empty category.
func (e *Expense) validate() error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", e.Date)}
	}
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if e.Category == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	return nil
}
