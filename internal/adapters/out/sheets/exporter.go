// Package sheets mirrors orders into a Google Sheets spreadsheet, one row per
// order, located by the order code in column E.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"orderbot/internal/core/ports"
	"orderbot/internal/pkg/errs"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	DefaultSheetName = "Orders"

	valueInputRaw   = "RAW"
	insertRows      = "INSERT_ROWS"
	lastColumn      = "M"
	codeColumn      = "E"
	statusColumn    = "M"
	integrationName = "sheets"
)

// header is written once into an empty sheet. It follows ports.SheetRow.
var header = []string{
	"Timestamp", "Phone", "Location", "Delivery Date", "Order ID", "Items", "Total Amount",
	"Delivery Address", "Map Link", "Payment Screenshot", "Verify Link", "Reject Link", "Status",
}

// Config locates the spreadsheet and authenticates with a service account.
type Config struct {
	CredentialsJSON string
	SpreadsheetID   string
	SheetName       string
}

// Exporter implements ports.SheetExporter.
type Exporter struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger

	// mu keeps a find-then-append from racing another one into duplicate rows.
	mu sync.Mutex
}

var _ ports.SheetExporter = (*Exporter)(nil)

// NewExporter authenticates with the service account in cfg.CredentialsJSON.
func NewExporter(ctx context.Context, cfg Config, logger *slog.Logger) (*Exporter, error) {
	if cfg.CredentialsJSON == "" {
		return nil, errs.NewValueIsRequiredError("google credentials json")
	}
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewExporterWithService(srv, cfg.SpreadsheetID, cfg.SheetName, logger)
}

// NewExporterWithService wraps an already configured service.
func NewExporterWithService(srv *sheets.Service, spreadsheetID, sheetName string, logger *slog.Logger) (*Exporter, error) {
	if spreadsheetID == "" {
		return nil, errs.NewValueIsRequiredError("spreadsheet id")
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Exporter{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.With("component", "sheets"),
	}, nil
}

// UpsertOrder overwrites the row holding row.OrderCode, or appends one.
func (e *Exporter) UpsertOrder(ctx context.Context, row ports.SheetRow) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, rows, err := e.findRow(ctx, row.OrderCode)
	if err != nil {
		return err
	}

	if n > 0 {
		rng := fmt.Sprintf("%s!A%d:%s%d", e.sheetName, n, lastColumn, n)
		_, err = e.values.Update(e.spreadsheetID, rng, valueRange(row.Values())).
			ValueInputOption(valueInputRaw).Context(ctx).Do()
		if err != nil {
			return errs.NewIntegrationFailureError(integrationName, fmt.Errorf("update row %d: %w", n, err))
		}
		e.logger.InfoContext(ctx, "order row updated", "order", row.OrderCode, "row", n)
		return nil
	}

	values := [][]string{row.Values()}
	if rows == 0 {
		values = [][]string{header, row.Values()}
	}
	_, err = e.values.Append(e.spreadsheetID, fmt.Sprintf("%s!A:%s", e.sheetName, lastColumn), valueRange(values...)).
		ValueInputOption(valueInputRaw).InsertDataOption(insertRows).Context(ctx).Do()
	if err != nil {
		return errs.NewIntegrationFailureError(integrationName, fmt.Errorf("append row: %w", err))
	}
	e.logger.InfoContext(ctx, "order row appended", "order", row.OrderCode)
	return nil
}

// UpdateStatus rewrites the status cell. An order without a row is an
// integration failure, so the caller schedules a full re-export.
func (e *Exporter) UpdateStatus(ctx context.Context, orderCode, statusLabel string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, _, err := e.findRow(ctx, orderCode)
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NewIntegrationFailureError(integrationName, errs.NewObjectNotFoundError("sheet row", orderCode))
	}

	rng := fmt.Sprintf("%s!%s%d", e.sheetName, statusColumn, n)
	_, err = e.values.Update(e.spreadsheetID, rng, valueRange([]string{statusLabel})).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return errs.NewIntegrationFailureError(integrationName, fmt.Errorf("update status of row %d: %w", n, err))
	}
	e.logger.InfoContext(ctx, "order status updated", "order", orderCode, "status", statusLabel)
	return nil
}

// findRow returns the 1-based row number of code (0 when absent) and the
// number of used rows in the code column.
func (e *Exporter) findRow(ctx context.Context, code string) (int, int, error) {
	resp, err := e.values.Get(e.spreadsheetID, fmt.Sprintf("%s!%s:%s", e.sheetName, codeColumn, codeColumn)).
		Context(ctx).Do()
	if err != nil {
		return 0, 0, errs.NewIntegrationFailureError(integrationName, fmt.Errorf("read order ids: %w", err))
	}
	for i, cells := range resp.Values {
		if len(cells) > 0 && fmt.Sprint(cells[0]) == code {
			return i + 1, len(resp.Values), nil
		}
	}
	return 0, len(resp.Values), nil
}

func valueRange(rows ...[]string) *sheets.ValueRange {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}
	return &sheets.ValueRange{Values: values}
}
