// internal/domain/models.go
package domain

import "time"

// Brand represents a restaurant brand owning one or more branches
type Brand struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Branch represents a single restaurant location
type Branch struct {
	ID        int64     `json:"id" db:"id"`
	BrandID   int64     `json:"brand_id" db:"brand_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Order type labels as they appear in the POS exports
const (
	OrderTypeDineIn    = "Dinein"
	OrderTypeDelivery  = "Delivery"
	OrderTypeTakeaway  = "Takeaway"
	OrderTypeDriveThru = "Drive Thru"
	OrderTypeCatering  = "Catering"
)

// SalesRecord is one POS transaction from the historical sales ledger.
// The ledger is append-only and read-only for the forecast engine.
type SalesRecord struct {
	BranchID     int64     `json:"branch_id" db:"branch_id"`
	OrderID      string    `json:"order_id" db:"order_id"`
	BusinessDate time.Time `json:"business_date" db:"business_date"`
	OrderType    string    `json:"order_type" db:"order_type"`
	Gross        float64   `json:"gross" db:"gross"`
	Discount     float64   `json:"discount" db:"discount"`
	VAT          float64   `json:"vat" db:"vat"`
	Guests       int       `json:"guests" db:"guests"`
}

// DailySalesFact is one branch-day of sales, pre-aggregated from the
// transaction rows. At most one fact exists per (branch, business date).
type DailySalesFact struct {
	BranchID     int64     `json:"branch_id" db:"branch_id"`
	BusinessDate time.Time `json:"business_date" db:"business_date"`
	Gross        float64   `json:"gross" db:"gross"`
	WeekdayName  string    `json:"weekday_name" db:"weekday_name"`
}
