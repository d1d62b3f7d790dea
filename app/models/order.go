package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
	OrderCompleted = "completed"
)

// OrderStatuses is the full status set. There are no transition rules.
var OrderStatuses = []string{OrderPending, OrderPreparing, OrderReady, OrderPaid, OrderCancelled, OrderCompleted}

func ValidOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Order totals are a snapshot taken at creation and never recomputed.
type Order struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"index;not null" json:"user_id"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status    string          `gorm:"size:20;not null;index" json:"status"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}

// ItemOrderLine is an order_items row keyed by product item.
type ItemOrderLine struct {
	ID            uint            `gorm:"primaryKey"`
	OrderID       uint            `gorm:"index;not null"`
	ProductItemID uint            `gorm:"index;not null"`
	Quantity      int             `gorm:"not null"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (ItemOrderLine) TableName() string { return "order_items" }

// ProductOrderLine is an order_items row keyed by product.
type ProductOrderLine struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null"`
	ProductID uint            `gorm:"index;not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (ProductOrderLine) TableName() string { return "order_items" }

// OrderLine is a stored line joined with the name of what was ordered.
// Only the reference column of the live schema is set.
type OrderLine struct {
	ID              uint            `json:"id"`
	OrderID         uint            `json:"order_id"`
	ProductItemID   *uint           `json:"product_item_id,omitempty"`
	ProductID       *uint           `json:"product_id,omitempty"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	ProductItemName *string         `json:"product_item_name,omitempty"`
	ProductName     *string         `json:"product_name,omitempty"`
}

// OrderView is an order as returned to clients.
type OrderView struct {
	ID          uint            `json:"id"`
	UserID      uint            `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UserName    *string         `json:"user_name,omitempty"`
	UserEmail   *string         `json:"user_email,omitempty"`
	OrderNumber int             `gorm:"-" json:"order_number"`
	Items       []OrderLine     `gorm:"-" json:"items"`
}

// OrderReceipt is returned by order creation.
type OrderReceipt struct {
	ID    uint            `json:"id"`
	Total decimal.Decimal `json:"total"`
}
