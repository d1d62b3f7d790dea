package models

import "github.com/shopspring/decimal"

type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	ParentID *uint  `gorm:"index" json:"parent_id"`
}

// Product is a catalog entry. Items and Options are loaded separately and
// are not columns.
type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CategoryID  *uint            `gorm:"index" json:"category_id"`
	Name        string           `gorm:"size:150;not null" json:"name"`
	Description *string          `gorm:"type:text" json:"description"`
	BasePrice   *decimal.Decimal `gorm:"type:decimal(10,2)" json:"base_price"`
	ImageURL    *string          `gorm:"size:500" json:"image_url"`
	Available   bool             `gorm:"not null" json:"available"`

	Items   []ProductItem   `gorm:"-" json:"items,omitempty"`
	Options []ProductOption `gorm:"-" json:"options,omitempty"`
}

// ProductSummary is a product row joined with its category name.
type ProductSummary struct {
	ID           uint             `json:"id"`
	Name         string           `json:"name"`
	Description  *string          `json:"description"`
	BasePrice    *decimal.Decimal `json:"base_price"`
	ImageURL     *string          `json:"image_url"`
	Available    bool             `json:"available"`
	CategoryID   *uint            `json:"category_id"`
	CategoryName *string          `json:"category_name"`
}

// ProductItem is a sellable variant of a product (size, flavour).
type ProductItem struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProductID uint             `gorm:"index;not null" json:"product_id"`
	Name      string           `gorm:"size:150;not null" json:"name"`
	SKU       *string          `gorm:"column:sku;size:100" json:"sku"`
	Price     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Available bool             `gorm:"not null" json:"available"`
}

type ProductOption struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ProductID  uint            `gorm:"index;not null" json:"product_id"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	Value      string          `gorm:"size:100;not null" json:"value"`
	ExtraPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"extra_price"`
}
