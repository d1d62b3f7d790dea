package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/app/models"
)

// Variant identifies which order_items shape a database uses.
type Variant int

const (
	// VariantItem keys lines by product_item_id, priced from product_items.price.
	VariantItem Variant = iota + 1
	// VariantProduct keys lines by product_id, priced from products.base_price.
	VariantProduct
)

func (v Variant) String() string {
	switch v {
	case VariantItem:
		return "item"
	case VariantProduct:
		return "product"
	default:
		return "unknown"
	}
}

// PricedLine is a resolved cart line ready to be written.
type PricedLine struct {
	Ref      uint
	Quantity int
	Price    decimal.Decimal
}

// LineItemSchema hides the difference between the two order_items shapes.
// Methods taking tx must be called with the open transaction.
type LineItemSchema interface {
	Variant() Variant
	// Column is the reference column in order_items.
	Column() string
	// Prices returns the unit price of every id that exists. A NULL price
	// reads as zero.
	Prices(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]decimal.Decimal, error)
	InsertLines(ctx context.Context, tx *gorm.DB, orderID uint, lines []PricedLine) error
	LoadLines(ctx context.Context, db *gorm.DB, orderIDs []uint) ([]models.OrderLine, error)
}

// ErrNoOrderItems is returned by DetectLineItemSchema when order_items is missing.
var ErrNoOrderItems = errors.New("order_items table does not exist")

// DetectLineItemSchema inspects order_items: a product_id column means
// VariantProduct, anything else VariantItem.
func DetectLineItemSchema(ctx context.Context, db *gorm.DB) (LineItemSchema, error) {
	m := db.WithContext(ctx).Migrator()
	if !m.HasTable("order_items") {
		return nil, ErrNoOrderItems
	}
	if m.HasColumn("order_items", "product_id") {
		return ProductLines{}, nil
	}
	return ItemLines{}, nil
}

type priceRow struct {
	ID    uint
	Price decimal.NullDecimal
}

func toPriceMap(rows []priceRow) map[uint]decimal.Decimal {
	out := make(map[uint]decimal.Decimal, len(rows))
	for _, r := range rows {
		if r.Price.Valid {
			out[r.ID] = r.Price.Decimal.Round(2)
		} else {
			out[r.ID] = decimal.Zero
		}
	}
	return out
}

// ── product_item_id ──────────────────────────────────────────────────────────

type ItemLines struct{}

func (ItemLines) Variant() Variant { return VariantItem }
func (ItemLines) Column() string   { return "product_item_id" }

func (ItemLines) Prices(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]decimal.Decimal, error) {
	var rows []priceRow
	err := tx.WithContext(ctx).Table("product_items").
		Select("id, price").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load item prices: %w", err)
	}
	return toPriceMap(rows), nil
}

func (ItemLines) InsertLines(ctx context.Context, tx *gorm.DB, orderID uint, lines []PricedLine) error {
	rows := make([]models.ItemOrderLine, len(lines))
	for i, l := range lines {
		rows[i] = models.ItemOrderLine{OrderID: orderID, ProductItemID: l.Ref, Quantity: l.Quantity, Price: l.Price}
	}
	if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	return nil
}

func (ItemLines) LoadLines(ctx context.Context, db *gorm.DB, orderIDs []uint) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	if len(orderIDs) == 0 {
		return lines, nil
	}
	err := db.WithContext(ctx).Table("order_items oi").
		Select("oi.id, oi.order_id, oi.product_item_id, oi.quantity, oi.price, pi.name AS product_item_name").
		Joins("LEFT JOIN product_items pi ON pi.id = oi.product_item_id").
		Where("oi.order_id IN ?", orderIDs).
		Order("oi.id").
		Scan(&lines).Error
	return lines, err
}

// ── product_id ───────────────────────────────────────────────────────────────

type ProductLines struct{}

func (ProductLines) Variant() Variant { return VariantProduct }
func (ProductLines) Column() string   { return "product_id" }

func (ProductLines) Prices(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]decimal.Decimal, error) {
	var rows []priceRow
	err := tx.WithContext(ctx).Table("products").
		Select("id, base_price AS price").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load product prices: %w", err)
	}
	return toPriceMap(rows), nil
}

func (ProductLines) InsertLines(ctx context.Context, tx *gorm.DB, orderID uint, lines []PricedLine) error {
	rows := make([]models.ProductOrderLine, len(lines))
	for i, l := range lines {
		rows[i] = models.ProductOrderLine{OrderID: orderID, ProductID: l.Ref, Quantity: l.Quantity, Price: l.Price}
	}
	if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	return nil
}

func (ProductLines) LoadLines(ctx context.Context, db *gorm.DB, orderIDs []uint) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	if len(orderIDs) == 0 {
		return lines, nil
	}
	err := db.WithContext(ctx).Table("order_items oi").
		Select("oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, p.name AS product_name").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id IN ?", orderIDs).
		Order("oi.id").
		Scan(&lines).Error
	return lines, err
}

// ItemProducts maps legacy product item ids to their product ids with one
// lookup. ok is false when the product_items table does not exist.
func ItemProducts(ctx context.Context, tx *gorm.DB, itemIDs []uint) (map[uint]uint, bool, error) {
	if !tx.WithContext(ctx).Migrator().HasTable("product_items") {
		return nil, false, nil
	}
	var rows []struct {
		ID        uint
		ProductID uint
	}
	err := tx.WithContext(ctx).Table("product_items").
		Select("id, product_id").
		Where("id IN ?", itemIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, true, fmt.Errorf("map items to products: %w", err)
	}
	out := make(map[uint]uint, len(rows))
	for _, r := range rows {
		out[r.ID] = r.ProductID
	}
	return out, true, nil
}
