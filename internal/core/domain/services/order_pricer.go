package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/location"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/pkg/errs"
)

// ErrOrderLinesEmpty is returned by Parse when no token of the input is a valid order line.
var ErrOrderLinesEmpty = errs.NewValueIsInvalidErrorWithCause("order lines", errors.New("no valid order lines"))

// orderLinePattern matches "<item-id> x <quantity>", with "*" accepted for "x".
var orderLinePattern = regexp.MustCompile(`(?i)^\s*(\d+)\s*[x*]\s*(\d+)\s*$`)

// QuoteLine is one priced item of a Quote.
type QuoteLine struct {
	Item      menu.Item
	Quantity  int
	LineTotal kernel.Money
}

// Quote is a priced selection. Lines are in item id order.
type Quote struct {
	Lines       []QuoteLine
	DeliveryFee kernel.Money
	IsDelivery  bool
	Total       kernel.Money
}

// Text renders the quote as summary lines:
//
//   - Veg Sadhya x 2 = ₹300
//   - Palada Pradhaman x 1 = ₹40
//   - Delivery Fee = ₹50
func (q Quote) Text() string {
	lines := make([]string, 0, len(q.Lines)+1)
	for _, l := range q.Lines {
		lines = append(lines, fmt.Sprintf("• %s x %d = %s", l.Item.Name, l.Quantity, l.LineTotal.Short()))
	}
	if q.IsDelivery {
		lines = append(lines, fmt.Sprintf("• Delivery Fee = %s", q.DeliveryFee.Short()))
	}
	return strings.Join(lines, "\n")
}

// OrderPricer turns customer text into a selection and prices it.
//
// Example usage:
//
//	pricer := services.NewOrderPricer(menu.DefaultMenu())
//	items, err := pricer.Parse("1 x 2, 3 x 1")
//	if errors.Is(err, errs.ErrValueIsInvalid) {
//	    // re-prompt
//	}
//	quote, err := pricer.Summarize(items, vyttila) // Total 390.00
type OrderPricer struct {
	menu *menu.Menu
}

// NewOrderPricer creates a pricer for the given menu.
func NewOrderPricer(m *menu.Menu) OrderPricer {
	return OrderPricer{menu: m}
}

// Menu returns the menu the pricer works from.
func (p OrderPricer) Menu() *menu.Menu {
	return p.menu
}

// Parse reads comma-separated order lines such as "1 x 2, 3*1".
//
// Parsing rules:
//   - tokens that do not match the grammar are skipped
//   - ids that are not orderable menu items are dropped
//   - quantities must be positive; repeated ids sum their quantities
//
// Returns ErrOrderLinesEmpty when nothing remains.
func (p OrderPricer) Parse(text string) (menu.Selection, error) {
	selection := menu.Selection{}

	for _, token := range strings.Split(text, ",") {
		m := orderLinePattern.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || !p.menu.IsOrderable(id) {
			continue
		}
		qty, err := strconv.Atoi(m[2])
		if err != nil || qty <= 0 {
			continue
		}
		selection[id] += qty
	}

	if selection.IsEmpty() {
		return nil, ErrOrderLinesEmpty
	}
	return selection, nil
}

// Summarize prices items for loc: the sum of unit price times quantity, plus
// the location fee if and only if loc is a delivery location.
func (p OrderPricer) Summarize(items menu.Selection, loc location.DeliveryLocation) (Quote, error) {
	if err := loc.Validate(); err != nil {
		return Quote{}, err
	}
	if items.IsEmpty() {
		return Quote{}, ErrOrderLinesEmpty
	}

	quote := Quote{IsDelivery: loc.IsDelivery(), DeliveryFee: loc.ChargedFee()}
	total := kernel.Money{}

	for _, id := range items.IDs() {
		item, ok := p.menu.Get(id)
		if !ok {
			return Quote{}, errs.NewObjectNotFoundError("menu item", id)
		}
		qty := items[id]
		if qty <= 0 {
			return Quote{}, errs.NewValueIsOutOfRangeError(fmt.Sprintf("quantity of item %d", id), qty, 1, "unbounded")
		}
		lineTotal := item.UnitPrice.Mul(qty)
		quote.Lines = append(quote.Lines, QuoteLine{Item: item, Quantity: qty, LineTotal: lineTotal})
		total = total.Add(lineTotal)
	}

	quote.Total = total.Add(quote.DeliveryFee)
	return quote, nil
}

// CalculateTotal returns Summarize(items, loc).Total.
func (p OrderPricer) CalculateTotal(items menu.Selection, loc location.DeliveryLocation) (kernel.Money, error) {
	quote, err := p.Summarize(items, loc)
	if err != nil {
		return kernel.Money{}, err
	}
	return quote.Total, nil
}
