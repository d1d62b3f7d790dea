package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// All lists categories by name.
func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	out := []models.Category{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *CategoryRepository) Find(ctx context.Context, id uint) (models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, apperr.NotFound("Not found")
	}
	return c, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Update sets the given columns. A nil value in values writes NULL.
func (r *CategoryRepository) Update(ctx context.Context, id uint, values map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(values).Error
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, id).Error
}
