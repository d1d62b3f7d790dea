// Package migrations defines the cafe schema. Each migration registers
// itself from init(); importing the package is enough for the CLI.
package migrations

import (
	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/config"
	"github.com/shashiranjanraj/churchcafe/pkg/migration"
	"gorm.io/gorm"
)

// Order item shapes accepted by CreateOrderItemsTable.
const (
	ItemSchema    = "item"
	ProductSchema = "product"
)

func init() {
	for _, e := range All("") {
		migration.Register(e.Name, e.Migration)
	}
}

// All returns the schema migrations. orderItems selects the order_items
// shape; empty means ORDER_ITEMS_SCHEMA.
func All(orderItems string) []migration.Entry {
	return []migration.Entry{
		{Name: "20260101000000_create_roles_table", Migration: &createTable{name: "roles", model: &models.Role{}}},
		{Name: "20260101000001_create_users_table", Migration: &createTable{name: "users", model: &models.User{}}},
		{Name: "20260101000002_create_categories_table", Migration: &createTable{name: "categories", model: &models.Category{}}},
		{Name: "20260101000003_create_products_table", Migration: &createTable{name: "products", model: &models.Product{}}},
		{Name: "20260101000004_create_product_items_table", Migration: &createTable{name: "product_items", model: &models.ProductItem{}}},
		{Name: "20260101000005_create_product_options_table", Migration: &createTable{name: "product_options", model: &models.ProductOption{}}},
		{Name: "20260101000006_create_orders_table", Migration: &createTable{name: "orders", model: &models.Order{}}},
		{Name: "20260101000007_create_order_items_table", Migration: &CreateOrderItemsTable{Shape: orderItems}},
	}
}

type createTable struct {
	name  string
	model any
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.name)
}

// CreateOrderItemsTable creates order_items keyed either by product item
// (product_item_id) or by product (product_id).
type CreateOrderItemsTable struct {
	Shape string
}

func (m *CreateOrderItemsTable) shape() string {
	if m.Shape == "" {
		return config.OrderItemsSchema()
	}
	return m.Shape
}

func (m *CreateOrderItemsTable) Up(db *gorm.DB) error {
	if m.shape() == ProductSchema {
		return db.AutoMigrate(&models.ProductOrderLine{})
	}
	return db.AutoMigrate(&models.ItemOrderLine{})
}

func (m *CreateOrderItemsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items")
}
