package repositories

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
)

// OrderRepository reads and writes orders. Calendar days for order numbers
// are evaluated in loc.
type OrderRepository struct {
	db  *gorm.DB
	loc *time.Location
}

func NewOrderRepository(db *gorm.DB, loc *time.Location) *OrderRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderRepository{db: db, loc: loc}
}

// Create inserts order using tx.
func (r *OrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, apperr.NotFound("Not found")
	}
	return order, err
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}

// List returns orders newest first. A nil userID lists every order together
// with the owner's name and email.
func (r *OrderRepository) List(ctx context.Context, userID *uint) ([]models.OrderView, error) {
	q := r.db.WithContext(ctx).Table("orders o")
	if userID != nil {
		q = q.Select("o.id, o.user_id, o.total, o.status, o.created_at").Where("o.user_id = ?", *userID)
	} else {
		q = q.Select("o.id, o.user_id, o.total, o.status, o.created_at, u.name AS user_name, u.email AS user_email").
			Joins("LEFT JOIN users u ON u.id = o.user_id")
	}

	var views []models.OrderView
	if err := q.Order("o.created_at DESC, o.id DESC").Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

// dayBounds returns the UTC instants bounding the calendar day of t in loc.
func (r *OrderRepository) dayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(r.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// OrderNumber is the 1-based position of order among the orders of its
// calendar day, ordered by (created_at, id).
func (r *OrderRepository) OrderNumber(ctx context.Context, order models.Order) (int, error) {
	start, end := r.dayBounds(order.CreatedAt)
	created := order.CreatedAt.UTC()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Where("(created_at < ? OR (created_at = ? AND id <= ?))", created, created, order.ID).
		Count(&n).Error
	return int(n), err
}

// AssignOrderNumbers sets OrderNumber on every view with one range query
// spanning the days the views fall on.
func (r *OrderRepository) AssignOrderNumbers(ctx context.Context, views []models.OrderView) error {
	if len(views) == 0 {
		return nil
	}

	lo, hi := views[0].CreatedAt, views[0].CreatedAt
	for _, v := range views[1:] {
		if v.CreatedAt.Before(lo) {
			lo = v.CreatedAt
		}
		if v.CreatedAt.After(hi) {
			hi = v.CreatedAt
		}
	}
	start, _ := r.dayBounds(lo)
	_, end := r.dayBounds(hi)

	var rows []struct {
		ID        uint
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("id, created_at").
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	numbers := make(map[uint]int, len(rows))
	counts := make(map[string]int)
	for _, row := range rows {
		day := row.CreatedAt.In(r.loc).Format(time.DateOnly)
		counts[day]++
		numbers[row.ID] = counts[day]
	}

	for i := range views {
		views[i].OrderNumber = numbers[views[i].ID]
	}
	return nil
}

// AttachLines loads the lines of every view in one query.
func (r *OrderRepository) AttachLines(ctx context.Context, schema LineItemSchema, views []models.OrderView) error {
	ids := make([]uint, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	lines, err := schema.LoadLines(ctx, r.db, ids)
	if err != nil {
		return err
	}

	byOrder := make(map[uint][]models.OrderLine, len(views))
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}
	for i := range views {
		views[i].Items = byOrder[views[i].ID]
		if views[i].Items == nil {
			views[i].Items = []models.OrderLine{}
		}
	}
	return nil
}
