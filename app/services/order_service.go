package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/app/repositories"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/database"
	"github.com/shashiranjanraj/churchcafe/pkg/event"
	"github.com/shashiranjanraj/churchcafe/pkg/logger"
	"github.com/shashiranjanraj/churchcafe/pkg/metrics"
)

// Order events.
const (
	EventOrderCreated       = "order:created"
	EventOrderStatusUpdated = "order:statusUpdated"
)

type OrderCreated struct {
	ID     uint            `json:"id"`
	UserID uint            `json:"userId"`
	Total  decimal.Decimal `json:"total"`
	Status string          `json:"status"`
}

type OrderStatusUpdated struct {
	ID     uint   `json:"id"`
	UserID uint   `json:"userId"`
	Status string `json:"status"`
}

// EventKey keeps every event of one order on the same relay lane.
func (e OrderCreated) EventKey() uint64 { return uint64(e.ID) }

func (e OrderStatusUpdated) EventKey() uint64 { return uint64(e.ID) }

type schemaBox struct{ schema repositories.LineItemSchema }

// OrderService validates, prices and persists orders and announces them.
type OrderService struct {
	db     *gorm.DB
	orders *repositories.OrderRepository
	events event.Publisher
	now    func() time.Time

	schema    atomic.Pointer[schemaBox]
	detecting singleflight.Group
	detect    func(context.Context, *gorm.DB) (repositories.LineItemSchema, error)
}

// NewOrderService wires the engine. A nil publisher disables notifications.
func NewOrderService(db *gorm.DB, orders *repositories.OrderRepository, events event.Publisher) *OrderService {
	return &OrderService{
		db:     db,
		orders: orders,
		events: events,
		now:    time.Now,
		detect: repositories.DetectLineItemSchema,
	}
}

// Schema returns the order_items shape, inspecting the database on first
// use. Concurrent first callers share one detection, which runs detached
// from any single caller's cancellation; a failed detection is retried on
// the next call.
func (s *OrderService) Schema(ctx context.Context) (repositories.LineItemSchema, error) {
	if box := s.schema.Load(); box != nil {
		return box.schema, nil
	}
	v, err, _ := s.detecting.Do("order_items", func() (any, error) {
		if box := s.schema.Load(); box != nil {
			return box.schema, nil
		}
		schema, err := s.detect(context.WithoutCancel(ctx), s.db)
		if err != nil {
			return nil, err
		}
		s.schema.Store(&schemaBox{schema: schema})
		logger.WithCtx(ctx).Info("orders: line item schema detected", "variant", schema.Variant().String())
		return schema, nil
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("detect order_items schema: %w", err))
	}
	return v.(repositories.LineItemSchema), nil
}

// Create prices lines and writes the order and its lines in one
// transaction. order:created is published only after commit.
func (s *OrderService) Create(ctx context.Context, userID uint, lines []CartLine) (models.OrderReceipt, error) {
	receipt, err := s.create(ctx, userID, lines)
	if err != nil {
		metrics.OrdersRejected.WithLabelValues(apperr.KindOf(err).String()).Inc()
		return receipt, err
	}
	metrics.OrdersCreated.Inc()

	s.publish(ctx, EventOrderCreated, OrderCreated{
		ID:     receipt.ID,
		UserID: userID,
		Total:  receipt.Total,
		Status: models.OrderPending,
	})
	return receipt, nil
}

func (s *OrderService) create(ctx context.Context, userID uint, lines []CartLine) (models.OrderReceipt, error) {
	var receipt models.OrderReceipt
	if len(lines) == 0 {
		return receipt, apperr.InvalidRequest("items required")
	}

	schema, err := s.Schema(ctx)
	if err != nil {
		return receipt, err
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		refs, err := s.resolveRefs(ctx, tx, schema, lines)
		if err != nil {
			return err
		}

		prices, err := schema.Prices(ctx, tx, uniqueIDs(refs))
		if err != nil {
			return err
		}

		priced := make([]repositories.PricedLine, len(lines))
		total := decimal.Zero
		for i, line := range lines {
			price, ok := prices[refs[i]]
			if !ok {
				return invalidRef(schema)
			}
			priced[i] = repositories.PricedLine{Ref: refs[i], Quantity: line.Quantity, Price: price}
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order := models.Order{
			UserID:    userID,
			Total:     total,
			Status:    models.OrderPending,
			CreatedAt: s.now().UTC(),
		}
		if err := s.orders.Create(ctx, tx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := schema.InsertLines(ctx, tx, order.ID, priced); err != nil {
			return err
		}

		receipt = models.OrderReceipt{ID: order.ID, Total: total}
		return nil
	})
	if err != nil {
		return models.OrderReceipt{}, err
	}

	logger.WithCtx(ctx).Info("orders: created", "order_id", receipt.ID, "user_id", userID, "total", receipt.Total.String())
	return receipt, nil
}

// resolveRefs returns the schema reference of every line. For product-keyed
// schemas, lines carrying only a product item reference are mapped to that
// item's product.
func (s *OrderService) resolveRefs(ctx context.Context, tx *gorm.DB, schema repositories.LineItemSchema, lines []CartLine) ([]uint, error) {
	refs := make([]uint, len(lines))
	var legacy []int

	for i, line := range lines {
		ref := line.Ref(schema.Variant())
		if id, ok := ref.Resolve(); ok {
			refs[i] = id
			continue
		}
		if schema.Variant() == repositories.VariantProduct && ref.Empty() && !line.LegacyItemRef().Empty() {
			legacy = append(legacy, i)
			continue
		}
		return nil, invalidRef(schema)
	}

	if len(legacy) == 0 {
		return refs, nil
	}

	itemIDs := make([]uint, 0, len(legacy))
	for _, i := range legacy {
		id, ok := lines[i].LegacyItemRef().Resolve()
		if !ok {
			return nil, invalidRef(schema)
		}
		itemIDs = append(itemIDs, id)
	}

	mapping, found, err := repositories.ItemProducts(ctx, tx, uniqueIDs(itemIDs))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, invalidRef(schema)
	}
	for n, i := range legacy {
		productID, ok := mapping[itemIDs[n]]
		if !ok {
			return nil, invalidRef(schema)
		}
		refs[i] = productID
	}
	return refs, nil
}

func invalidRef(schema repositories.LineItemSchema) error {
	return apperr.InvalidProduct("Invalid " + schema.Column())
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// UpdateStatus sets the status of an order. The status is checked before
// the order is looked up.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) error {
	if !models.ValidOrderStatus(status) {
		return apperr.InvalidRequest("Invalid status")
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	metrics.OrderStatusUpdates.WithLabelValues(status).Inc()
	logger.WithCtx(ctx).Info("orders: status updated", "order_id", id, "from", order.Status, "to", status)

	s.publish(ctx, EventOrderStatusUpdated, OrderStatusUpdated{ID: order.ID, UserID: order.UserID, Status: status})
	return nil
}

// Get returns one order with its lines and order number. Only the owner and
// staff may see it.
func (s *OrderService) Get(ctx context.Context, viewer *auth.Claims, id uint) (models.OrderView, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.OrderView{}, err
	}
	if viewer == nil || (order.UserID != viewer.ID && !viewer.IsStaff()) {
		return models.OrderView{}, apperr.Forbidden("Forbidden")
	}

	number, err := s.orders.OrderNumber(ctx, order)
	if err != nil {
		return models.OrderView{}, err
	}
	views := []models.OrderView{{
		ID:          order.ID,
		UserID:      order.UserID,
		Total:       order.Total,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
		OrderNumber: number,
	}}
	if err := s.attachLines(ctx, views); err != nil {
		return models.OrderView{}, err
	}
	return views[0], nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID uint) ([]models.OrderView, error) {
	return s.list(ctx, &userID)
}

// ListAll returns every order with its owner, newest first.
func (s *OrderService) ListAll(ctx context.Context) ([]models.OrderView, error) {
	return s.list(ctx, nil)
}

func (s *OrderService) list(ctx context.Context, userID *uint) ([]models.OrderView, error) {
	views, err := s.orders.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []models.OrderView{}
	}
	if err := s.orders.AssignOrderNumbers(ctx, views); err != nil {
		return nil, err
	}
	if err := s.attachLines(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *OrderService) attachLines(ctx context.Context, views []models.OrderView) error {
	if len(views) == 0 {
		return nil
	}
	schema, err := s.Schema(ctx)
	if err != nil {
		return err
	}
	return s.orders.AttachLines(ctx, schema, views)
}

func (s *OrderService) publish(ctx context.Context, name string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Dispatch(ctx, name, payload)
}
