package domain

import "time"

// MovementKind names the stock transition that produced a StockMovement.
type MovementKind string

const (
	MovementPurchase MovementKind = "purchase"
	MovementRestock  MovementKind = "restock"
)

// StockMovement is an audit record of a single successful stock change.
type StockMovement struct {
	ID                string       `json:"_id"`
	SweetID           string       `json:"sweetId"`
	Kind              MovementKind `json:"kind"`
	Quantity          int          `json:"quantity"`
	ResultingQuantity int          `json:"resultingQuantity"`
	ActorID           string       `json:"actorId,omitempty"`
	At                time.Time    `json:"at"`
}
