package models

import "time"

type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
	IsActive    bool // soft-delete flag
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockOperation names the three ways a stock mutation can adjust inventory
type StockOperation string

const (
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
	StockSet      StockOperation = "set"
)

// Valid reports whether the operation is one of add/subtract/set
func (op StockOperation) Valid() bool {
	switch op {
	case StockAdd, StockSubtract, StockSet:
		return true
	}
	return false
}

// StockChange summarizes a completed stock mutation
type StockChange struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	OldStock  int    `json:"old_stock"`
	NewStock  int    `json:"new_stock"`
	Operation string `json:"operation"`
}

// ProductStats aggregates inventory counts for the stats endpoint
type ProductStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	OutOfStock int `json:"out_of_stock"`
	LowStock   int `json:"low_stock"`
}
