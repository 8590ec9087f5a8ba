// Package sheets is a thin pass-through over the Google Sheets API. The
// provider only reshapes tool arguments into sheets/v4 calls; spreadsheet
// state lives entirely on the Google side.
package sheets

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/niloybiswas/toolhost/log"
	"github.com/niloybiswas/toolhost/provider"
)

// Provider wraps an authenticated sheets service.
type Provider struct {
	service *sheets.Service
}

// New authenticates with the service-account key at credentialsFile. The
// file is checked here so a bad deployment fails at startup, not on the
// first spreadsheet tool call.
func New(ctx context.Context, credentialsFile string) (*Provider, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("sheets credentials file is required")
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("sheets credentials file %s: %w", credentialsFile, err)
	}

	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	log.Infof(ctx, "Sheets provider authenticated")
	return &Provider{service: service}, nil
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "sheets" }

// ListTools implements provider.Provider.
func (p *Provider) ListTools() []provider.ToolDescriptor {
	return []provider.ToolDescriptor{
		{
			Name:        "create_spreadsheet",
			Description: "Create a new spreadsheet and return its id and URL.",
			InputSchema: provider.Object(map[string]provider.Property{
				"title": {Type: "string", Description: "Title of the new spreadsheet"},
			}, "title"),
		},
		{
			Name:        "read_range",
			Description: "Read cell values from a spreadsheet range in A1 notation.",
			InputSchema: provider.Object(map[string]provider.Property{
				"spreadsheet_id": {Type: "string", Description: "Spreadsheet id"},
				"range":          {Type: "string", Description: "A1 range, e.g. Sheet1!A1:C10"},
			}, "spreadsheet_id", "range"),
		},
		{
			Name:        "append_row",
			Description: "Append one row of values after the last row of a range.",
			InputSchema: provider.Object(map[string]provider.Property{
				"spreadsheet_id": {Type: "string", Description: "Spreadsheet id"},
				"range":          {Type: "string", Description: "A1 range the table lives in"},
				"values":         {Type: "array", Description: "Cell values for the new row"},
			}, "spreadsheet_id", "range", "values"),
		},
		{
			Name:        "update_range",
			Description: "Overwrite cell values in a range. Values are rows of cells.",
			InputSchema: provider.Object(map[string]provider.Property{
				"spreadsheet_id": {Type: "string", Description: "Spreadsheet id"},
				"range":          {Type: "string", Description: "A1 range to overwrite"},
				"values":         {Type: "array", Description: "Array of rows, each an array of cell values"},
			}, "spreadsheet_id", "range", "values"),
		},
	}
}

// Call implements provider.Provider.
func (p *Provider) Call(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	log.Debugf(ctx, "Sheets provider executing %s", name)

	spreadsheetID, _ := args["spreadsheet_id"].(string)
	a1Range, _ := args["range"].(string)

	switch name {
	case "create_spreadsheet":
		title, _ := args["title"].(string)
		created, err := p.service.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{Title: title},
		}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
		}
		return map[string]interface{}{
			"spreadsheet_id": created.SpreadsheetId,
			"url":            created.SpreadsheetUrl,
		}, nil

	case "read_range":
		values, err := p.service.Spreadsheets.Values.Get(spreadsheetID, a1Range).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to read range: %w", err)
		}
		return map[string]interface{}{"range": values.Range, "values": values.Values}, nil

	case "append_row":
		row, err := rowValues(args["values"])
		if err != nil {
			return nil, err
		}
		res, err := p.service.Spreadsheets.Values.
			Append(spreadsheetID, a1Range, &sheets.ValueRange{Values: [][]interface{}{row}}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to append row: %w", err)
		}
		return map[string]interface{}{"updated_range": res.Updates.UpdatedRange}, nil

	case "update_range":
		rows, err := gridValues(args["values"])
		if err != nil {
			return nil, err
		}
		res, err := p.service.Spreadsheets.Values.
			Update(spreadsheetID, a1Range, &sheets.ValueRange{Values: rows}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to update range: %w", err)
		}
		return map[string]interface{}{"updated_cells": res.UpdatedCells}, nil
	}
	return nil, fmt.Errorf("sheets provider has no tool %q", name)
}

// rowValues interprets a tool argument as one row of cells.
func rowValues(arg interface{}) ([]interface{}, error) {
	row, ok := arg.([]interface{})
	if !ok {
		return nil, fmt.Errorf("values must be an array of cells")
	}
	return row, nil
}

// gridValues interprets a tool argument as rows of cells. A flat array is
// treated as a single row, since models frequently send that shape.
func gridValues(arg interface{}) ([][]interface{}, error) {
	outer, ok := arg.([]interface{})
	if !ok {
		return nil, fmt.Errorf("values must be an array of rows")
	}

	rows := make([][]interface{}, 0, len(outer))
	flat := false
	for _, item := range outer {
		if row, ok := item.([]interface{}); ok {
			rows = append(rows, row)
		} else {
			flat = true
			break
		}
	}
	if flat {
		return [][]interface{}{outer}, nil
	}
	return rows, nil
}
