package commands

import (
	"strings"
	"time"

	"orderbot/internal/core/domain/model/location"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/core/ports"
)

const sheetTimestampLayout = "2006-01-02 15:04:05"

// SheetRowBuilder renders orders as operator spreadsheet rows.
type SheetRowBuilder struct {
	catalog *location.Catalog
	menu    *menu.Menu
	baseURL string
	zone    *time.Location
}

// NewSheetRowBuilder creates a builder. Links are rooted at baseURL and
// timestamps are rendered in zone (UTC when nil).
func NewSheetRowBuilder(catalog *location.Catalog, m *menu.Menu, baseURL string, zone *time.Location) SheetRowBuilder {
	if zone == nil {
		zone = time.UTC
	}
	return SheetRowBuilder{
		catalog: catalog,
		menu:    m,
		baseURL: strings.TrimRight(baseURL, "/"),
		zone:    zone,
	}
}

// VerifyLink is the operator link that marks o verified.
func (b SheetRowBuilder) VerifyLink(o *order.Order) string {
	return b.baseURL + "/verify/" + o.VerificationToken().String()
}

// RejectLink is the operator link that marks o rejected.
func (b SheetRowBuilder) RejectLink(o *order.Order) string {
	return b.baseURL + "/reject/" + o.VerificationToken().String()
}

// Build returns the row for o.
func (b SheetRowBuilder) Build(o *order.Order) ports.SheetRow {
	return ports.SheetRow{
		Timestamp:     o.CreatedAt().In(b.zone).Format(sheetTimestampLayout),
		Phone:         o.Phone().String(),
		Location:      b.catalog.DisplayName(o.LocationID()),
		DeliveryDate:  o.DeliveryDate().String(),
		OrderCode:     o.Code().String(),
		Items:         o.Items().Describe(b.menu),
		TotalAmount:   o.Total().String(),
		Address:       o.DeliveryAddress(),
		MapsLink:      o.MapsLink(),
		ScreenshotRef: o.ScreenshotRef(),
		VerifyLink:    b.VerifyLink(o),
		RejectLink:    b.RejectLink(o),
		StatusLabel:   o.Status().Label(),
	}
}
