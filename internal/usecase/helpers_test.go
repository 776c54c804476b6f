package usecase

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/pkg/ordernum"
	"github.com/mellowshop/orderdesk/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNumbers(repo *test.OrderRepositoryStub) *ordernum.Generator {
	return ordernum.New("ORD", repo, repo, discardLogger())
}

// validPayload is the canonical checkout fixture: a single item order of
// Rs. 1500.00 with no shipping, tax or discount.
func validPayload() CheckoutPayload {
	return CheckoutPayload{
		GatewayOrderID: "order_NXhT4vQZ9mPpGk",
		Email:          "customer@example.com",
		Phone:          "+919876543210",
		UserID:         "user-42",
		AddressJSON:    json.RawMessage(`{"line1":"221B Baker Street","city":"Mumbai","pincode":"400001"}`),
		Items: []model.OrderItem{
			{ID: "sku-1", Title: "Ceramic Mug", PriceCents: 150000, Quantity: 1},
		},
		SubtotalCents: 150000,
		TotalCents:    150000,
	}
}
