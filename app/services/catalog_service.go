package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/app/repositories"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
	"github.com/shashiranjanraj/churchcafe/pkg/cache"
	"github.com/shashiranjanraj/churchcafe/pkg/database"
	"github.com/shashiranjanraj/churchcafe/pkg/logger"
	"github.com/shashiranjanraj/churchcafe/pkg/storage"
)

const (
	categoriesKey  = "categories:all"
	productsPrefix = "products:"
)

type CategoryInput struct {
	Name *string `json:"name"`
	// ParentID distinguishes absent (nil) from an explicit null.
	ParentID json.RawMessage `json:"parent_id"`
}

type ItemInput struct {
	Name      *string          `json:"name"`
	SKU       *string          `json:"sku"`
	Price     *decimal.Decimal `json:"price"`
	Available *bool            `json:"available"`
}

type OptionInput struct {
	Name       *string          `json:"name"`
	Value      *string          `json:"value"`
	ExtraPrice *decimal.Decimal `json:"extra_price"`
}

// ProductInput is both the create and the partial update body. Items and
// Options replace the stored rows only when present.
type ProductInput struct {
	CategoryID  *uint            `json:"category_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	ImageURL    *string          `json:"image_url"`
	Available   *bool            `json:"available"`
	Items       *[]ItemInput     `json:"items"`
	Options     *[]OptionInput   `json:"options"`
}

// CatalogService manages categories and products. Listings are cached and
// dropped on every write that could change them.
type CatalogService struct {
	db         *gorm.DB
	categories *repositories.CategoryRepository
	products   *repositories.ProductRepository
	cache      cache.Store
	ttl        time.Duration
	disk       storage.Disk
}

func NewCatalogService(db *gorm.DB, categories *repositories.CategoryRepository, products *repositories.ProductRepository, store cache.Store, ttl time.Duration, disk storage.Disk) *CatalogService {
	if store == nil {
		store = cache.Nop{}
	}
	return &CatalogService{db: db, categories: categories, products: products, cache: store, ttl: ttl, disk: disk}
}

func (s *CatalogService) forget(ctx context.Context, keys ...string) {
	if len(keys) > 0 {
		if err := s.cache.Del(ctx, keys...); err != nil {
			logger.WithCtx(ctx).Warn("catalog: cache delete failed", "error", err)
		}
	}
	if err := s.cache.DelPrefix(ctx, productsPrefix); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache delete failed", "error", err)
	}
}

func nonEmpty(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

// ── categories ───────────────────────────────────────────────────────────────

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return cache.Remember(ctx, s.cache, categoriesKey, s.ttl, func() ([]models.Category, error) {
		return s.categories.All(ctx)
	})
}

func (s *CatalogService) Category(ctx context.Context, id uint) (models.Category, error) {
	return s.categories.Find(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error) {
	name, ok := nonEmpty(in.Name)
	if !ok {
		return models.Category{}, apperr.InvalidRequest("name required")
	}
	c := models.Category{Name: name, ParentID: optionalID(in.ParentID)}
	if err := s.categories.Create(ctx, &c); err != nil {
		return models.Category{}, err
	}
	s.forget(ctx, categoriesKey)
	return c, nil
}

// UpdateCategory renames a category when a name is given and always writes
// parent_id, clearing it when the field is absent or null.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) error {
	name, hasName := nonEmpty(in.Name)
	if !hasName && in.ParentID == nil {
		return apperr.InvalidRequest("Nothing to update")
	}
	values := map[string]any{"parent_id": nil}
	if p := optionalID(in.ParentID); p != nil {
		values["parent_id"] = *p
	}
	if hasName {
		values["name"] = name
	}
	if err := s.categories.Update(ctx, id, values); err != nil {
		return err
	}
	s.forget(ctx, categoriesKey)
	return nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.forget(ctx, categoriesKey)
	return nil
}

func optionalID(raw json.RawMessage) *uint {
	if id, ok := parseID(raw); ok {
		return &id
	}
	return nil
}

// ── products ─────────────────────────────────────────────────────────────────

func (s *CatalogService) Products(ctx context.Context, categoryID *uint) ([]models.ProductSummary, error) {
	key := productsPrefix + "all"
	if categoryID != nil {
		key = fmt.Sprintf("%scat:%d", productsPrefix, *categoryID)
	}
	return cache.Remember(ctx, s.cache, key, s.ttl, func() ([]models.ProductSummary, error) {
		return s.products.Summaries(ctx, categoryID)
	})
}

func (s *CatalogService) AvailableItems(ctx context.Context) ([]models.ProductItem, error) {
	return s.products.AvailableItems(ctx)
}

func (s *CatalogService) Product(ctx context.Context, id uint) (models.Product, error) {
	return s.products.Find(ctx, id)
}

func buildItems(in []ItemInput) ([]models.ProductItem, error) {
	out := make([]models.ProductItem, len(in))
	for i, it := range in {
		name, ok := nonEmpty(it.Name)
		if !ok {
			return nil, apperr.InvalidRequest("item name required")
		}
		out[i] = models.ProductItem{Name: name, SKU: it.SKU, Price: it.Price, Available: it.Available == nil || *it.Available}
	}
	return out, nil
}

func buildOptions(in []OptionInput) ([]models.ProductOption, error) {
	out := make([]models.ProductOption, len(in))
	for i, op := range in {
		name, okName := nonEmpty(op.Name)
		value, okValue := nonEmpty(op.Value)
		if !okName || !okValue {
			return nil, apperr.InvalidRequest("name and value required")
		}
		extra := decimal.Zero
		if op.ExtraPrice != nil {
			extra = *op.ExtraPrice
		}
		out[i] = models.ProductOption{Name: name, Value: value, ExtraPrice: extra}
	}
	return out, nil
}

// CreateProduct writes the product with its items and options in one
// transaction and returns its id.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (uint, error) {
	name, ok := nonEmpty(in.Name)
	if !ok {
		return 0, apperr.InvalidRequest("name required")
	}
	var items []models.ProductItem
	var options []models.ProductOption
	var err error
	if in.Items != nil {
		if items, err = buildItems(*in.Items); err != nil {
			return 0, err
		}
	}
	if in.Options != nil {
		if options, err = buildOptions(*in.Options); err != nil {
			return 0, err
		}
	}

	p := models.Product{
		CategoryID:  in.CategoryID,
		Name:        name,
		Description: in.Description,
		BasePrice:   in.BasePrice,
		ImageURL:    in.ImageURL,
		Available:   in.Available == nil || *in.Available,
	}
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.products.Create(ctx, tx, &p); err != nil {
			return err
		}
		if err := s.products.InsertItems(ctx, tx, p.ID, items); err != nil {
			return err
		}
		return s.products.InsertOptions(ctx, tx, p.ID, options)
	})
	if err != nil {
		return 0, err
	}
	s.forget(ctx)
	return p.ID, nil
}

// UpdateProduct changes only the supplied fields and replaces items and
// options when their arrays are present.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) error {
	exists, err := s.products.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Not found")
	}

	values := map[string]any{}
	if in.CategoryID != nil {
		values["category_id"] = *in.CategoryID
	}
	if name, ok := nonEmpty(in.Name); ok {
		values["name"] = name
	}
	if desc, ok := nonEmpty(in.Description); ok {
		values["description"] = desc
	}
	if in.BasePrice != nil {
		values["base_price"] = *in.BasePrice
	}
	if url, ok := nonEmpty(in.ImageURL); ok {
		values["image_url"] = url
	}
	if in.Available != nil {
		values["available"] = *in.Available
	}

	var items []models.ProductItem
	var options []models.ProductOption
	if in.Items != nil {
		if items, err = buildItems(*in.Items); err != nil {
			return err
		}
	}
	if in.Options != nil {
		if options, err = buildOptions(*in.Options); err != nil {
			return err
		}
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.products.Update(ctx, tx, id, values); err != nil {
			return err
		}
		if in.Items != nil {
			if err := s.products.ReplaceItems(ctx, tx, id, items); err != nil {
				return err
			}
		}
		if in.Options != nil {
			if err := s.products.ReplaceOptions(ctx, tx, id, options); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.forget(ctx)
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return s.products.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.forget(ctx)
	return nil
}

// ── items & options ──────────────────────────────────────────────────────────

func (s *CatalogService) requireProduct(ctx context.Context, id uint) error {
	exists, err := s.products.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Not found")
	}
	return nil
}

func (s *CatalogService) AddItem(ctx context.Context, productID uint, in ItemInput) (uint, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return 0, err
	}
	items, err := buildItems([]ItemInput{in})
	if err != nil {
		return 0, apperr.InvalidRequest("name required")
	}
	item := items[0]
	item.ProductID = productID
	if err := s.products.CreateItem(ctx, &item); err != nil {
		return 0, err
	}
	return item.ID, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, id uint, in ItemInput) error {
	values := map[string]any{}
	if name, ok := nonEmpty(in.Name); ok {
		values["name"] = name
	}
	if sku, ok := nonEmpty(in.SKU); ok {
		values["sku"] = sku
	}
	if in.Price != nil {
		values["price"] = *in.Price
	}
	if in.Available != nil {
		values["available"] = *in.Available
	}
	return s.products.UpdateItem(ctx, id, values)
}

func (s *CatalogService) DeleteItem(ctx context.Context, id uint) error {
	return s.products.DeleteItem(ctx, id)
}

func (s *CatalogService) AddOption(ctx context.Context, productID uint, in OptionInput) (uint, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return 0, err
	}
	options, err := buildOptions([]OptionInput{in})
	if err != nil {
		return 0, err
	}
	opt := options[0]
	opt.ProductID = productID
	if err := s.products.CreateOption(ctx, &opt); err != nil {
		return 0, err
	}
	return opt.ID, nil
}

func (s *CatalogService) UpdateOption(ctx context.Context, id uint, in OptionInput) error {
	values := map[string]any{}
	if name, ok := nonEmpty(in.Name); ok {
		values["name"] = name
	}
	if value, ok := nonEmpty(in.Value); ok {
		values["value"] = value
	}
	if in.ExtraPrice != nil {
		values["extra_price"] = *in.ExtraPrice
	}
	return s.products.UpdateOption(ctx, id, values)
}

func (s *CatalogService) DeleteOption(ctx context.Context, id uint) error {
	return s.products.DeleteOption(ctx, id)
}

// SetImage stores an uploaded image on the configured disk and points the
// product's image_url at it.
func (s *CatalogService) SetImage(ctx context.Context, productID uint, filename string, body io.Reader) (string, error) {
	if s.disk == nil {
		return "", apperr.Internal(fmt.Errorf("no storage disk configured"))
	}
	if err := s.requireProduct(ctx, productID); err != nil {
		return "", err
	}

	key, err := s.disk.PutStream(ctx, storage.ObjectName(fmt.Sprintf("products/%d", productID), filename), body)
	if err != nil {
		return "", apperr.Internal(err)
	}
	url := s.disk.URL(key)
	if err := s.products.SetImage(ctx, productID, url); err != nil {
		return "", err
	}
	s.forget(ctx)
	return url, nil
}
