package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/payment"
	"github.com/Skotchmaster/canteen/internal/remote"
	"github.com/Skotchmaster/canteen/internal/service/cart"
	"github.com/Skotchmaster/canteen/internal/service/identity"
	"github.com/Skotchmaster/canteen/internal/service/order"
	"github.com/Skotchmaster/canteen/pkg/logging"
	"github.com/Skotchmaster/canteen/pkg/validate"
)

var (
	ErrUnauthorized = errors.New("not signed in")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrValidation   = errors.New("validation")
	ErrUpstream     = errors.New("order service unavailable")
	// ErrCheckout hides unexpected failures from the caller.
	ErrCheckout = errors.New("checkout failed")
)

// OrderSubmitter is the remote collaborator accepting orders.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, o remote.OrderRequest) (string, error)
}

type OrderNotifier interface {
	OrderPlaced(o models.Order, u models.User) error
}

type Result struct {
	Order      models.Order
	PaymentURL string
}

type CheckoutService struct {
	Cart     *cart.CartService
	Identity *identity.IdentityService
	Orders   *order.OrderService
	Remote   OrderSubmitter
	Payment  payment.Handoff
	Mail     OrderNotifier
}

func remoteRequest(u models.User, lines []models.CartLine, pickupTime, comment string) remote.OrderRequest {
	items := make([]remote.OrderLine, 0, len(lines))
	for _, l := range lines {
		items = append(items, remote.OrderLine{DishID: l.ID, Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}
	return remote.OrderRequest{
		UserID:     u.ID,
		Items:      items,
		Total:      models.LinesTotal(lines),
		PickupTime: pickupTime,
		Comment:    comment,
	}
}

// Checkout turns the profile's cart into an order. The lines are taken out of
// the cart before anything else, so a repeated submit finds it empty. On any
// failure before the order is recorded they are put back.
func (s *CheckoutService) Checkout(ctx context.Context, profileID, pickupTime, comment string) (Result, error) {
	l := logging.FromContext(ctx).With("svc", "checkout")

	u, ok, err := s.Identity.CurrentUser(ctx, profileID)
	if err != nil {
		l.Error("checkout_failed", "reason", "cannot read session", "error", err)
		return Result{}, ErrCheckout
	}
	if !ok {
		return Result{}, ErrUnauthorized
	}

	lines, err := s.Cart.Take(ctx, profileID)
	if err != nil {
		l.Error("checkout_failed", "reason", "cannot read cart", "error", err)
		return Result{}, ErrCheckout
	}
	if len(lines) == 0 {
		return Result{}, ErrEmptyCart
	}
	// from here on the lines are out of the cart; put them back on failure
	putBack := func() {
		if err := s.Cart.Restore(context.WithoutCancel(ctx), profileID, lines); err != nil {
			l.Error("cart_restore_failed", "error", err)
		}
	}

	if !validate.IsClock(pickupTime) {
		putBack()
		return Result{}, fmt.Errorf("pickup time %q is not HH:MM: %w", pickupTime, ErrValidation)
	}

	var orderNumber string
	if s.Remote != nil {
		orderNumber, err = s.Remote.CreateOrder(ctx, remoteRequest(*u, lines, pickupTime, comment))
		if err != nil {
			putBack()
			l.Warn("checkout_failed", "reason", "remote order rejected", "error", err)
			return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	o, err := s.Orders.CreateOrder(ctx, order.NewOrder{
		UserID:      u.ID,
		Lines:       lines,
		PickupTime:  pickupTime,
		Comment:     comment,
		OrderNumber: orderNumber,
	})
	if err != nil {
		putBack()
		if errors.Is(err, order.ErrValidation) {
			l.Warn("checkout_failed", "reason", "order rejected", "error", err)
			return Result{}, fmt.Errorf("%v: %w", err, ErrValidation)
		}
		l.Error("checkout_failed", "reason", "cannot record order", "error", err)
		return Result{}, ErrCheckout
	}

	res := Result{Order: o}
	if s.Payment != nil {
		res.PaymentURL, err = s.Payment.PaymentURL(ctx, o, *u)
		if err != nil {
			l.Warn("payment_handoff_failed", "order_id", o.ID, "error", err)
		}
	}

	if s.Mail != nil {
		if err := s.Mail.OrderPlaced(o, *u); err != nil {
			l.Warn("order_mail_failed", "order_id", o.ID, "error", err)
		}
	}

	l.Info("checkout_success", "order_id", o.ID, "total", o.Total)
	return res, nil
}
