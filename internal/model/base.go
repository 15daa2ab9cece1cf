package model

import "github.com/google/uuid"

// Record is implemented by every type persisted as an element of a collection blob.
type Record interface {
	RecordID() string
}

// NewID returns a fresh random identifier for products, transactions and users.
func NewID() string {
	return uuid.NewString()
}
