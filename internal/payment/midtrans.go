package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/Skotchmaster/canteen/internal/models"
)

// MidtransHandoff opens a Snap transaction and hands out its redirect page.
type MidtransHandoff struct {
	client snap.Client
}

func NewMidtransHandoff(serverKey string, production bool) *MidtransHandoff {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	h := &MidtransHandoff{}
	h.client.New(serverKey, env)
	return h
}

func snapRequest(o models.Order, u models.User) *snap.Request {
	items := make([]midtrans.ItemDetails, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    strconv.Itoa(l.ID),
			Name:  l.Name,
			Price: int64(l.Price),
			Qty:   int32(l.Quantity),
		})
	}

	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  strconv.FormatInt(o.ID, 10),
			GrossAmt: int64(o.Total),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: u.Name,
			Email: u.Email,
			Phone: u.Phone,
		},
		Items: &items,
	}
}

func (h *MidtransHandoff) PaymentURL(_ context.Context, o models.Order, u models.User) (string, error) {
	resp, mErr := h.client.CreateTransaction(snapRequest(o, u))
	if mErr != nil {
		return "", fmt.Errorf("midtrans: %w", mErr)
	}
	return resp.RedirectURL, nil
}
