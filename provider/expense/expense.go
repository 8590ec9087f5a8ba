// Package expense exposes the bookkeeping store as a tool provider. It is
// the only provider with real state; everything it returns reflects what was
// durably persisted.
package expense

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/niloybiswas/toolhost/log"
	"github.com/niloybiswas/toolhost/provider"
	"github.com/niloybiswas/toolhost/storage"
)

// Provider wraps a storage.Store.
type Provider struct {
	store *storage.Store
}

// New creates the expense provider.
func New(store *storage.Store) *Provider {
	return &Provider{store: store}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "expense_tracker" }

// ListTools implements provider.Provider.
func (p *Provider) ListTools() []provider.ToolDescriptor {
	return []provider.ToolDescriptor{
		{
			Name:        "add_expense",
			Description: "Record a new expense. Amount must be positive and category non-empty.",
			InputSchema: provider.Object(map[string]provider.Property{
				"date":     {Type: "string", Description: "Expense date in YYYY-MM-DD format"},
				"amount":   {Type: "number", Description: "Amount spent, must be greater than zero"},
				"category": {Type: "string", Description: "Short category label, e.g. groceries"},
				"note":     {Type: "string", Description: "Optional free-form note"},
			}, "date", "amount", "category"),
		},
		{
			Name:        "list_expenses",
			Description: "List expenses, optionally limited to an inclusive date range.",
			InputSchema: provider.Object(map[string]provider.Property{
				"start_date": {Type: "string", Description: "Inclusive range start, YYYY-MM-DD"},
				"end_date":   {Type: "string", Description: "Inclusive range end, YYYY-MM-DD"},
			}),
		},
		{
			Name:        "update_expense",
			Description: "Update fields of an existing expense. Omitted fields keep their values.",
			InputSchema: provider.Object(map[string]provider.Property{
				"id":       {Type: "integer", Description: "Expense id to update"},
				"date":     {Type: "string", Description: "New date, YYYY-MM-DD"},
				"amount":   {Type: "number", Description: "New amount, must be greater than zero"},
				"category": {Type: "string", Description: "New category label"},
				"note":     {Type: "string", Description: "New note"},
			}, "id"),
		},
		{
			Name:        "delete_expense",
			Description: "Delete an expense by id. Reports whether a record existed.",
			InputSchema: provider.Object(map[string]provider.Property{
				"id": {Type: "integer", Description: "Expense id to delete"},
			}, "id"),
		},
		{
			Name:        "get_summary",
			Description: "Total spending per category, optionally limited to an inclusive date range.",
			InputSchema: provider.Object(map[string]provider.Property{
				"start_date": {Type: "string", Description: "Inclusive range start, YYYY-MM-DD"},
				"end_date":   {Type: "string", Description: "Inclusive range end, YYYY-MM-DD"},
			}),
		},
		{
			Name:        "export_expenses",
			Description: "Export all expenses as 'csv' or 'json'.",
			InputSchema: provider.Object(map[string]provider.Property{
				"format": {Type: "string", Description: "Either csv or json"},
			}, "format"),
		},
	}
}

// Call implements provider.Provider.
func (p *Provider) Call(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	log.Debugf(ctx, "Expense provider executing %s", name)

	switch name {
	case "add_expense":
		return p.add(ctx, args)
	case "list_expenses":
		return p.store.List(ctx, stringArg(args, "start_date"), stringArg(args, "end_date"))
	case "update_expense":
		return p.update(ctx, args)
	case "delete_expense":
		return p.delete(ctx, args)
	case "get_summary":
		return p.summary(ctx, args)
	case "export_expenses":
		return p.export(ctx, args)
	}
	return nil, fmt.Errorf("expense provider has no tool %q", name)
}

func (p *Provider) add(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	amount, err := amountArg(args, "amount")
	if err != nil {
		return nil, err
	}
	id, err := p.store.Add(ctx, stringArg(args, "date"), amount, stringArg(args, "category"), stringArg(args, "note"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": id, "status": "recorded"}, nil
}

func (p *Provider) update(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	id, err := idArg(args)
	if err != nil {
		return nil, err
	}

	var fields storage.Fields
	if v, ok := args["date"].(string); ok {
		fields.Date = &v
	}
	if _, ok := args["amount"]; ok {
		amount, err := amountArg(args, "amount")
		if err != nil {
			return nil, err
		}
		fields.Amount = &amount
	}
	if v, ok := args["category"].(string); ok {
		fields.Category = &v
	}
	if v, ok := args["note"].(string); ok {
		fields.Note = &v
	}

	return p.store.Update(ctx, id, fields)
}

func (p *Provider) delete(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	id, err := idArg(args)
	if err != nil {
		return nil, err
	}
	existed, err := p.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": id, "deleted": existed}, nil
}

func (p *Provider) summary(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	totals, err := p.store.Summarize(ctx, stringArg(args, "start_date"), stringArg(args, "end_date"))
	if err != nil {
		return nil, err
	}
	// Decimal strings keep the exact totals intact on the wire.
	out := make(map[string]string, len(totals))
	for category, total := range totals {
		out[category] = total.String()
	}
	return out, nil
}

func (p *Provider) export(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	switch format := stringArg(args, "format"); format {
	case "csv":
		return p.store.ExportCSV(ctx)
	case "json":
		return p.store.ExportJSON(ctx)
	default:
		return nil, &storage.ValidationError{Field: "format", Reason: fmt.Sprintf("%q is not one of csv, json", format)}
	}
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func amountArg(args map[string]interface{}, key string) (decimal.Decimal, error) {
	switch v := args[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, &storage.ValidationError{Field: key, Reason: fmt.Sprintf("%q is not a number", v)}
		}
		return d, nil
	}
	return decimal.Zero, &storage.ValidationError{Field: key, Reason: "must be a number"}
}

func idArg(args map[string]interface{}) (uint, error) {
	switch v := args["id"].(type) {
	case float64:
		if v < 0 || v != float64(uint(v)) {
			return 0, &storage.ValidationError{Field: "id", Reason: "must be a non-negative integer"}
		}
		return uint(v), nil
	case int:
		if v < 0 {
			return 0, &storage.ValidationError{Field: "id", Reason: "must be a non-negative integer"}
		}
		return uint(v), nil
	}
	return 0, &storage.ValidationError{Field: "id", Reason: "must be an integer"}
}
