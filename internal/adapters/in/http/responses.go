package http

import (
	"time"
)

// Error is the body of every non-2xx JSON response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type VerificationResult struct {
	Changed bool   `json:"changed"`
	OrderID string `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

type OrderStatus struct {
	OrderID      string    `json:"order_id"`
	Status       string    `json:"status"`
	TotalAmount  string    `json:"total_amount"`
	DeliveryDate string    `json:"delivery_date"`
	CreatedAt    time.Time `json:"created_at"`
}

type Location struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Kind        string `json:"kind"`
	Fee         string `json:"fee"`
	Active      bool   `json:"active"`
}

// FeeUpdate is the body of the fee endpoints, e.g. {"fee": "60.00"}.
type FeeUpdate struct {
	Fee string `json:"fee"`
}

type FollowUpOrder struct {
	OrderID          string    `json:"order_id"`
	PhoneNumber      string    `json:"phone_number"`
	Status           string    `json:"status"`
	Reason           string    `json:"reason"`
	SheetSyncPending bool      `json:"sheet_sync_pending"`
	CreatedAt        time.Time `json:"created_at"`
}
