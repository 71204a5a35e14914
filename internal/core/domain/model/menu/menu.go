// Package menu holds the read-only menu reference data and the customer's
// item selection.
package menu

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"
)

// Item is one orderable dish.
type Item struct {
	ID        int
	Name      string
	UnitPrice kernel.Money
	Available bool
	SortOrder int
}

// Validate checks the item's id and name.
func (i Item) Validate() error {
	var err error
	if i.ID < 1 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("item id", i.ID, 1, "unbounded"))
	}
	if strings.TrimSpace(i.Name) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("item name"))
	}
	return err
}

// DefaultItems is the Onam sadhya menu.
func DefaultItems() []Item {
	return []Item{
		{ID: 1, Name: "Veg Sadhya", UnitPrice: kernel.MoneyFromInt(150), Available: true, SortOrder: 1},
		{ID: 2, Name: "Non-Veg Sadhya", UnitPrice: kernel.MoneyFromInt(200), Available: true, SortOrder: 2},
		{ID: 3, Name: "Palada Pradhaman", UnitPrice: kernel.MoneyFromInt(40), Available: true, SortOrder: 3},
		{ID: 4, Name: "Parippu/Gothambu Payasam", UnitPrice: kernel.MoneyFromInt(40), Available: true, SortOrder: 4},
		{ID: 5, Name: "Kaaya Varuthathu", UnitPrice: kernel.MoneyFromInt(30), Available: true, SortOrder: 5},
		{ID: 6, Name: "Sharkkaravaratti", UnitPrice: kernel.MoneyFromInt(30), Available: true, SortOrder: 6},
	}
}

// Menu is an immutable, display-ordered set of items.
type Menu struct {
	items []Item
	byID  map[int]Item
}

// NewMenu validates items and orders them by SortOrder, then id.
func NewMenu(items []Item) (*Menu, error) {
	m := &Menu{byID: make(map[int]Item, len(items))}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m.byID[item.ID]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("item id", fmt.Errorf("duplicate menu item %d", item.ID))
		}
		m.byID[item.ID] = item
		m.items = append(m.items, item)
	}
	sort.SliceStable(m.items, func(a, b int) bool {
		if m.items[a].SortOrder != m.items[b].SortOrder {
			return m.items[a].SortOrder < m.items[b].SortOrder
		}
		return m.items[a].ID < m.items[b].ID
	})
	return m, nil
}

// DefaultMenu returns the menu built from DefaultItems.
func DefaultMenu() *Menu {
	m, err := NewMenu(DefaultItems())
	if err != nil {
		panic(err)
	}
	return m
}

// Get returns the item with the given id, available or not.
func (m *Menu) Get(id int) (Item, bool) {
	item, ok := m.byID[id]
	return item, ok
}

// IsOrderable reports whether id names an available item.
func (m *Menu) IsOrderable(id int) bool {
	item, ok := m.byID[id]
	return ok && item.Available
}

// Available returns the orderable items in display order.
func (m *Menu) Available() []Item {
	out := make([]Item, 0, len(m.items))
	for _, item := range m.items {
		if item.Available {
			out = append(out, item)
		}
	}
	return out
}

// Listing renders the available items, one per line: "1️⃣ Veg Sadhya - ₹150".
func (m *Menu) Listing() string {
	var b strings.Builder
	for _, item := range m.Available() {
		fmt.Fprintf(&b, "%s %s - %s\n", numberEmoji(item.ID), item.Name, item.UnitPrice.Short())
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func numberEmoji(n int) string {
	if n >= 0 && n <= 9 {
		return fmt.Sprintf("%d️⃣", n)
	}
	return fmt.Sprintf("%d.", n)
}

// Selection maps item ids to positive quantities.
type Selection map[int]int

// IsEmpty reports whether nothing was selected.
func (s Selection) IsEmpty() bool {
	return len(s) == 0
}

// IDs returns the selected item ids in ascending order.
func (s Selection) IDs() []int {
	return slices.Sorted(maps.Keys(s))
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Describe renders "Veg Sadhya x 2, Palada Pradhaman x 1" in id order.
// Unknown ids are rendered as "Item 7".
func (s Selection) Describe(m *Menu) string {
	parts := make([]string, 0, len(s))
	for _, id := range s.IDs() {
		name := fmt.Sprintf("Item %d", id)
		if item, ok := m.Get(id); ok {
			name = item.Name
		}
		parts = append(parts, fmt.Sprintf("%s x %d", name, s[id]))
	}
	return strings.Join(parts, ", ")
}
