package payment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Skotchmaster/canteen/internal/models"
)

const (
	ProviderLink     = "link"
	ProviderMidtrans = "midtrans"
)

// Handoff builds the address of the external payment page for an order.
// Nothing is read back from the payment provider.
type Handoff interface {
	PaymentURL(ctx context.Context, o models.Order, u models.User) (string, error)
}

// Comment is the free-text note shown on the payment page.
func Comment(o models.Order) string {
	return fmt.Sprintf("Заказ №%s, получение в %s", o.OrderNumber, o.EstimatedTime)
}

// LinkHandoff encodes the order as query parameters of a fixed page.
type LinkHandoff struct {
	BaseURL string
	Service string
}

func (h LinkHandoff) PaymentURL(_ context.Context, o models.Order, u models.User) (string, error) {
	base, err := url.Parse(h.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse payment url: %w", err)
	}

	q := base.Query()
	q.Set("service", h.Service)
	q.Set("name", u.Name)
	q.Set("amount", strconv.Itoa(o.Total))
	q.Set("email", u.Email)
	q.Set("comment", Comment(o))
	base.RawQuery = q.Encode()

	return base.String(), nil
}
