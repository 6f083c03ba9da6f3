package payment

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/canteen/internal/models"
)

func testOrder() models.Order {
	return models.Order{
		ID:            1700000000123,
		Total:         200,
		OrderNumber:   "000123",
		EstimatedTime: "12:40",
		Items: []models.CartLine{
			{Dish: models.Dish{ID: 1, Name: "Borscht", Price: 100}, Quantity: 2},
		},
	}
}

func TestLinkHandoff_CarriesAmountAndEmail(t *testing.T) {
	t.Parallel()

	h := LinkHandoff{BaseURL: "https://pay.sibsiu.ru/?lang=ru", Service: "canteen"}
	u := models.User{Name: "Иван Петров", Email: "student@sibsiu.ru"}

	raw, err := h.PaymentURL(context.Background(), testOrder(), u)
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	q := parsed.Query()

	assert.Equal(t, "pay.sibsiu.ru", parsed.Host)
	assert.Equal(t, "ru", q.Get("lang"))
	assert.Equal(t, "canteen", q.Get("service"))
	assert.Equal(t, "200", q.Get("amount"))
	assert.Equal(t, "student@sibsiu.ru", q.Get("email"))
	assert.Equal(t, "Иван Петров", q.Get("name"))
	assert.Contains(t, q.Get("comment"), "000123")
	assert.Contains(t, q.Get("comment"), "12:40")
}

func TestLinkHandoff_BadBase(t *testing.T) {
	t.Parallel()

	_, err := LinkHandoff{BaseURL: "://nope"}.PaymentURL(context.Background(), testOrder(), models.User{})
	assert.Error(t, err)
}

func TestSnapRequest(t *testing.T) {
	t.Parallel()

	req := snapRequest(testOrder(), models.User{Name: "Ivan", Email: "student@sibsiu.ru"})

	assert.Equal(t, "1700000000123", req.TransactionDetails.OrderID)
	assert.EqualValues(t, 200, req.TransactionDetails.GrossAmt)
	require.NotNil(t, req.Items)
	require.Len(t, *req.Items, 1)
	assert.EqualValues(t, 2, (*req.Items)[0].Qty)
	assert.Equal(t, "student@sibsiu.ru", req.CustomerDetail.Email)
}
