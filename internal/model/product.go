package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the unit of measure a product is counted in.
type Unit string

const (
	UnitPiece  Unit = "piece"
	UnitKg     Unit = "kg"
	UnitLiter  Unit = "liter"
	UnitMeter  Unit = "meter"
	UnitSquare Unit = "sqm"
)

// Units lists every unit in display order.
var Units = []Unit{UnitPiece, UnitKg, UnitLiter, UnitMeter, UnitSquare}

func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Barcode     string          `json:"barcode"`
	Quantity    int             `json:"quantity"`
	Unit        Unit            `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	LastUpdated time.Time       `json:"last_updated"`
}

func (p Product) RecordID() string { return p.ID }

// LowStockThreshold is the quantity below which a product counts as low on stock.
const LowStockThreshold = 10

func (p Product) IsLowStock() bool {
	return p.Quantity < LowStockThreshold
}

// Valuation is price times quantity.
func (p Product) Valuation() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
