package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
)

// ProductRepository covers products, their items and their options.
// Methods taking tx run on the caller's transaction.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Summaries lists products with their category name, by product name.
// A non-nil categoryID filters by category.
func (r *ProductRepository) Summaries(ctx context.Context, categoryID *uint) ([]models.ProductSummary, error) {
	q := r.db.WithContext(ctx).Table("products p").
		Select("p.id, p.name, p.description, p.base_price, p.image_url, p.available, c.id AS category_id, c.name AS category_name").
		Joins("LEFT JOIN categories c ON c.id = p.category_id")
	if categoryID != nil {
		q = q.Where("p.category_id = ?", *categoryID)
	}
	out := []models.ProductSummary{}
	err := q.Order("p.name ASC").Scan(&out).Error
	return out, err
}

// AvailableItems lists every available product item by name.
func (r *ProductRepository) AvailableItems(ctx context.Context) ([]models.ProductItem, error) {
	out := []models.ProductItem{}
	err := r.db.WithContext(ctx).Where("available = ?", true).Order("name ASC").Find(&out).Error
	return out, err
}

// Find loads a product with its available items and all options.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	db := r.db.WithContext(ctx)

	var p models.Product
	err := db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, apperr.NotFound("Not found")
	}
	if err != nil {
		return p, err
	}

	p.Items = []models.ProductItem{}
	if err := db.Where("product_id = ? AND available = ?", p.ID, true).Order("id").Find(&p.Items).Error; err != nil {
		return p, err
	}
	p.Options = []models.ProductOption{}
	if err := db.Where("product_id = ?", p.ID).Order("id").Find(&p.Options).Error; err != nil {
		return p, err
	}
	return p, nil
}

func (r *ProductRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *ProductRepository) Create(ctx context.Context, tx *gorm.DB, p *models.Product) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) Update(ctx context.Context, tx *gorm.DB, id uint, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(values).Error
}

// ReplaceItems deletes every item of productID and inserts items.
func (r *ProductRepository) ReplaceItems(ctx context.Context, tx *gorm.DB, productID uint, items []models.ProductItem) error {
	db := tx.WithContext(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&models.ProductItem{}).Error; err != nil {
		return err
	}
	return r.InsertItems(ctx, tx, productID, items)
}

func (r *ProductRepository) InsertItems(ctx context.Context, tx *gorm.DB, productID uint, items []models.ProductItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ProductID = productID
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *ProductRepository) ReplaceOptions(ctx context.Context, tx *gorm.DB, productID uint, options []models.ProductOption) error {
	db := tx.WithContext(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&models.ProductOption{}).Error; err != nil {
		return err
	}
	return r.InsertOptions(ctx, tx, productID, options)
}

func (r *ProductRepository) InsertOptions(ctx context.Context, tx *gorm.DB, productID uint, options []models.ProductOption) error {
	if len(options) == 0 {
		return nil
	}
	for i := range options {
		options[i].ProductID = productID
	}
	return tx.WithContext(ctx).Create(&options).Error
}

// Delete removes the product with its items and options. The child rows are
// deleted explicitly since SQLite does not enforce foreign keys by default.
func (r *ProductRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := tx.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.ProductItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("product_id = ?", id).Delete(&models.ProductOption{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Product{}, id).Error
}

// ── single item / option ─────────────────────────────────────────────────────

func (r *ProductRepository) CreateItem(ctx context.Context, item *models.ProductItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ProductRepository) UpdateItem(ctx context.Context, id uint, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.ProductItem{}).Where("id = ?", id).Updates(values).Error
}

func (r *ProductRepository) DeleteItem(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ProductItem{}, id).Error
}

func (r *ProductRepository) CreateOption(ctx context.Context, opt *models.ProductOption) error {
	return r.db.WithContext(ctx).Create(opt).Error
}

func (r *ProductRepository) UpdateOption(ctx context.Context, id uint, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.ProductOption{}).Where("id = ?", id).Updates(values).Error
}

func (r *ProductRepository) DeleteOption(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ProductOption{}, id).Error
}

// SetImage stores the public URL of a product's image.
func (r *ProductRepository) SetImage(ctx context.Context, id uint, url string) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("image_url", url).Error
}
