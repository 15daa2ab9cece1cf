package model

import "time"

// Direction tells whether a stock movement adds or removes goods.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

func (d Direction) Valid() bool {
	return d == Inbound || d == Outbound
}

// DefaultActor is recorded when a movement has no acting user.
const DefaultActor = "System"

// Transaction is an append-only log entry of one stock movement.
// ProductName is a snapshot taken at mutation time and is not kept in sync with renames.
type Transaction struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Direction   Direction `json:"direction"`
	Quantity    int       `json:"quantity"` // always a positive magnitude
	Timestamp   time.Time `json:"timestamp"`
	User        string    `json:"user,omitempty"`
}

func (t Transaction) RecordID() string { return t.ID }
