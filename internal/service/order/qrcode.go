package order

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/Skotchmaster/canteen/internal/models"
)

const qrSize = 256

// QRCode renders a PNG the counter staff scan at pickup.
func QRCode(o models.Order) ([]byte, error) {
	data := fmt.Sprintf("SIBSIU-CANTEEN:%s:%d", o.OrderNumber, o.ID)
	return qrcode.Encode(data, qrcode.Medium, qrSize)
}
