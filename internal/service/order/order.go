package order

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/mykafka"
	"github.com/Skotchmaster/canteen/internal/repo"
	"github.com/Skotchmaster/canteen/pkg/logging"
	"github.com/Skotchmaster/canteen/pkg/validate"
)

const CreatedLabelLayout = "02.01.2006, 15:04:05"

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrTransition = errors.New("transition not allowed")
)

type NewOrder struct {
	UserID     int
	Lines      []models.CartLine
	PickupTime string
	Comment    string
	// OrderNumber overrides the time-derived pickup code when set.
	OrderNumber string
}

type OrderService struct {
	Store  repo.Store
	Events mykafka.Publisher
	// Now and Location default to time.Now and time.Local.
	Now      func() time.Time
	Location *time.Location

	mu     sync.Mutex
	lastID int64
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OrderService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func (s *OrderService) load(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if _, err := repo.GetJSON(ctx, s.Store, repo.KeyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) save(ctx context.Context, orders []models.Order) error {
	return repo.PutJSON(ctx, s.Store, repo.KeyOrders, orders)
}

func (s *OrderService) publish(ctx context.Context, eventType string, o models.Order) {
	if s.Events == nil {
		return
	}
	ev := mykafka.Event{Type: eventType, ID: o.ID, Payload: o, At: time.Now().UTC()}
	if err := s.Events.PublishEvent(ctx, mykafka.TopicOrders, strconv.FormatInt(o.ID, 10), ev); err != nil {
		logging.FromContext(ctx).Warn("order_event_publish_failed", "type", eventType, "order_id", o.ID, "error", err)
	}
}

// nextID is the creation time in milliseconds, bumped past every id already
// issued or stored.
func (s *OrderService) nextID(at time.Time, orders []models.Order) int64 {
	id := at.UnixMilli()
	floor := s.lastID
	for _, o := range orders {
		floor = max(floor, o.ID)
	}
	if id <= floor {
		id = floor + 1
	}
	s.lastID = id
	return id
}

// OrderNumber is the six-digit pickup code for an order id.
func OrderNumber(id int64) string {
	return fmt.Sprintf("%06d", id%1_000_000)
}

func (s *OrderService) CreateOrder(ctx context.Context, in NewOrder) (models.Order, error) {
	if len(in.Lines) == 0 {
		return models.Order{}, fmt.Errorf("order needs at least one item: %w", ErrValidation)
	}
	if in.UserID <= 0 {
		return models.Order{}, fmt.Errorf("user id is required: %w", ErrValidation)
	}
	if !validate.IsClock(in.PickupTime) {
		return models.Order{}, fmt.Errorf("pickup time %q is not HH:MM: %w", in.PickupTime, ErrValidation)
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return models.Order{}, fmt.Errorf("quantity must be positive: %w", ErrValidation)
		}
	}
	if models.LinesTotal(in.Lines) <= 0 {
		return models.Order{}, fmt.Errorf("order total must be positive: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return models.Order{}, err
	}

	created := s.now()
	o := models.Order{
		ID:            s.nextID(created, orders),
		UserID:        in.UserID,
		Items:         slices.Clone(in.Lines),
		Total:         models.LinesTotal(in.Lines),
		CreatedAt:     created.UTC(),
		CreatedLabel:  created.In(s.location()).Format(CreatedLabelLayout),
		Status:        models.StatusPending,
		EstimatedTime: in.PickupTime,
		Comment:       in.Comment,
	}
	o.OrderNumber = in.OrderNumber
	if o.OrderNumber == "" {
		o.OrderNumber = OrderNumber(o.ID)
	}

	orders = append(orders, o)
	if err := s.save(ctx, orders); err != nil {
		return models.Order{}, err
	}

	s.publish(ctx, mykafka.EventOrderCreated, o)
	return o, nil
}

// UpdateOrderStatus overwrites the status and, when given, the estimated
// time. Transition legality is not checked here. An unknown id reports false
// and nothing is written.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, estimatedTime *string) (models.Order, bool, error) {
	o, err := s.update(ctx, id, status, estimatedTime, nil)
	if errors.Is(err, ErrNotFound) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, err
	}
	return o, true, nil
}

// Move is UpdateOrderStatus for the admin board: the order must be able to
// reach status from the status it holds at write time, otherwise ErrTransition.
func (s *OrderService) Move(ctx context.Context, id int64, status models.OrderStatus, estimatedTime *string) (models.Order, error) {
	return s.update(ctx, id, status, estimatedTime, func(cur models.Order) error {
		if cur.Status.Terminal() {
			return fmt.Errorf("order is already %s: %w", cur.Status, ErrTransition)
		}
		if !models.CanTransition(cur.Status, status) {
			return fmt.Errorf("cannot move order from %s to %s: %w", cur.Status, status, ErrTransition)
		}
		return nil
	})
}

func (s *OrderService) update(ctx context.Context, id int64, status models.OrderStatus, estimatedTime *string, check func(models.Order) error) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}
	if estimatedTime != nil && *estimatedTime != "" && !validate.IsClock(*estimatedTime) {
		return models.Order{}, fmt.Errorf("estimated time %q is not HH:MM: %w", *estimatedTime, ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return models.Order{}, err
	}
	i := slices.IndexFunc(orders, func(o models.Order) bool { return o.ID == id })
	if i < 0 {
		return models.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if check != nil {
		if err := check(orders[i]); err != nil {
			return models.Order{}, err
		}
	}

	orders[i].Status = status
	if estimatedTime != nil && *estimatedTime != "" {
		orders[i].EstimatedTime = *estimatedTime
	}
	if err := s.save(ctx, orders); err != nil {
		return models.Order{}, err
	}

	s.publish(ctx, mykafka.EventOrderStatusChanged, orders[i])
	return orders[i], nil
}

func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *OrderService) Get(ctx context.Context, id int64) (models.Order, error) {
	orders, err := s.All(ctx)
	if err != nil {
		return models.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
}

func (s *OrderService) OrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	orders, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterStatus(orders, status), nil
}

func (s *OrderService) UserOrders(ctx context.Context, userID int) ([]models.Order, error) {
	orders, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, 0)
	for _, o := range orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// AdminList sorts newest first and then filters by status. StatusAll keeps
// every order.
func (s *OrderService) AdminList(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	orders, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(orders, func(a, b models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	if status == models.StatusAll || status == "" {
		return orders, nil
	}
	return filterStatus(orders, status), nil
}

func filterStatus(orders []models.Order, status models.OrderStatus) []models.Order {
	out := make([]models.Order, 0)
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
