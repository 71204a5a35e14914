// Package location provides the catalog of places an order can be fulfilled at:
// named delivery areas that carry a delivery fee, plus a single pickup entry
// with no fee.
//
// The package includes:
//   - DeliveryLocation: an immutable snapshot of one catalog entry
//   - Kind: the delivery/pickup tag that decides whether a fee is charged
//   - Catalog: the owned, concurrency-safe registry consulted by the conversation
//
// Key business rules:
//   - Area ids are derived from their names: "Palarivattom" becomes "palarivattom_delivery"
//   - The pickup entry always exists with id "pickup" and a zero fee
//   - Only active locations are offered to customers or accepted as a selection
//   - Button layouts list delivery locations first, then pickup, in catalog order
//   - Administrative changes never disturb a layout that is already being read
package location
