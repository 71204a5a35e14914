package ports

import "context"

// SheetRow is one order in the operators' spreadsheet. Field order is the column order.
type SheetRow struct {
	Timestamp     string
	Phone         string
	Location      string
	DeliveryDate  string
	OrderCode     string
	Items         string
	TotalAmount   string
	Address       string
	MapsLink      string
	ScreenshotRef string
	VerifyLink    string
	RejectLink    string
	StatusLabel   string
}

// Values returns the cells in column order.
func (r SheetRow) Values() []string {
	return []string{
		r.Timestamp, r.Phone, r.Location, r.DeliveryDate, r.OrderCode, r.Items, r.TotalAmount,
		r.Address, r.MapsLink, r.ScreenshotRef, r.VerifyLink, r.RejectLink, r.StatusLabel,
	}
}

// SheetExporter mirrors orders into the operators' spreadsheet.
type SheetExporter interface {
	// UpsertOrder writes row, replacing the existing row with the same order code.
	UpsertOrder(ctx context.Context, row SheetRow) error

	// UpdateStatus rewrites only the status cell of the order's row.
	UpdateStatus(ctx context.Context, orderCode, statusLabel string) error
}
