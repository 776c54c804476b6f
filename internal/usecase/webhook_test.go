package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/pkg/signature"
	"github.com/mellowshop/orderdesk/internal/test"
)

const webhookTestSecret = "webhook-test-secret"

func newWebhook(repo *test.OrderRepositoryStub) *WebhookUseCase {
	return NewWebhookUseCase(repo, webhookTestSecret, discardLogger())
}

func webhookDelivery(event, paymentID, gatewayOrderID, errDesc string) ([]byte, string) {
	body := []byte(fmt.Sprintf(
		`{"event":%q,"payload":{"payment":{"entity":{"id":%q,"order_id":%q,"status":"captured","amount":150000,"error_description":%q}}}}`,
		event, paymentID, gatewayOrderID, errDesc,
	))
	return body, signature.SignWebhook(body, webhookTestSecret)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newWebhook(repo)

	body, _ := webhookDelivery(eventPaymentCaptured, "pay_1", "order_1", "")
	err := uc.Process(context.Background(), body, signature.SignWebhook(body, "other-secret"))
	if !errors.Is(err, domainErrors.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if repo.Count() != 0 {
		t.Fatal("unauthenticated delivery must not touch the store")
	}
}

func TestWebhookAcknowledgesUnparseableBody(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newWebhook(repo)

	body := []byte(`{"event":"payment.captured",`)
	if err := uc.Process(context.Background(), body, signature.SignWebhook(body, webhookTestSecret)); err != nil {
		t.Fatalf("unparseable body with a valid signature must be acknowledged, got %v", err)
	}
}

func TestWebhookIgnoresUnknownEvent(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newWebhook(repo)

	body, sig := webhookDelivery("refund.processed", "pay_1", "order_1", "")
	if err := uc.Process(context.Background(), body, sig); err != nil {
		t.Fatalf("unknown event must be acknowledged, got %v", err)
	}
}

func TestWebhookAcknowledgesUnmatchedOrder(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newWebhook(repo)

	body, sig := webhookDelivery(eventPaymentCaptured, "pay_unknown", "order_unknown", "")
	if err := uc.Process(context.Background(), body, sig); err != nil {
		t.Fatalf("unmatched delivery must be acknowledged, got %v", err)
	}
	if repo.Count() != 0 {
		t.Fatal("no row should be created for an unmatched delivery")
	}
}

func TestWebhookCaptureConfirmsDraftByGatewayOrderID(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	draftUC := NewDraftUseCase(repo, newTestNumbers(repo), discardLogger())
	uc := newWebhook(repo)

	draft, err := draftUC.Create(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The verify leg never ran, so the lookup falls back to the gateway
	// order id recorded in notes.
	body, sig := webhookDelivery(eventPaymentCaptured, "pay_NXhUBcJ8w2LqRd", "order_NXhT4vQZ9mPpGk", "")
	if err := uc.Process(context.Background(), body, sig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err := repo.GetByID(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusConfirmed || order.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("expected confirmed/paid, got %s/%s", order.Status, order.PaymentStatus)
	}
	if order.PaymentID == nil || *order.PaymentID != "pay_NXhUBcJ8w2LqRd" {
		t.Fatal("payment id not recorded from webhook")
	}
	if len(order.History) != 2 {
		t.Fatalf("expected exactly one appended entry, got %v", order.History)
	}
}

func TestWebhookCaptureReplayIsIdempotent(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	draftUC := NewDraftUseCase(repo, newTestNumbers(repo), discardLogger())
	uc := newWebhook(repo)

	draft, err := draftUC.Create(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, sig := webhookDelivery(eventPaymentCaptured, "pay_NXhUBcJ8w2LqRd", "order_NXhT4vQZ9mPpGk", "")
	for i := 0; i < 3; i++ {
		if err := uc.Process(context.Background(), body, sig); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}

	order, err := repo.GetByID(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.History) != 2 {
		t.Fatalf("replays must not append history, got %d entries", len(order.History))
	}
	if repo.Count() != 1 {
		t.Fatalf("expected one row, got %d", repo.Count())
	}
}

func TestWebhookReplayAfterVerifyIsNoOp(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	draftUC := NewDraftUseCase(repo, newTestNumbers(repo), discardLogger())
	verifyUC := newVerify(repo)
	uc := newWebhook(repo)

	// Full happy path: draft, client verify, then the gateway's push for
	// the same charge.
	draft, err := draftUC.Create(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkout := validPayload()
	checkout.DraftOrderID = draft.ID
	if _, err := verifyUC.Verify(context.Background(), signedVerifyRequest(&checkout)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, sig := webhookDelivery(eventPaymentCaptured, "pay_NXhUBcJ8w2LqRd", "order_NXhT4vQZ9mPpGk", "")
	if err := uc.Process(context.Background(), body, sig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err := repo.GetByID(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected one row, got %d", repo.Count())
	}
	if len(order.History) != 2 {
		t.Fatalf("expected pending then confirmed only, got %v", order.History)
	}
}

func TestWebhookFailureMarksDraftFailed(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	draftUC := NewDraftUseCase(repo, newTestNumbers(repo), discardLogger())
	uc := newWebhook(repo)

	draft, err := draftUC.Create(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, sig := webhookDelivery(eventPaymentFailed, "pay_NXhUBcJ8w2LqRd", "order_NXhT4vQZ9mPpGk", "card declined")
	if err := uc.Process(context.Background(), body, sig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err := repo.GetByID(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.PaymentStatus != model.PaymentStatusFailed {
		t.Fatalf("expected failed payment status, got %s", order.PaymentStatus)
	}
	if order.Status != model.OrderStatusPending {
		t.Fatalf("fulfilment status must stay pending, got %s", order.Status)
	}
	latest := order.History.Latest()
	if latest == nil || latest.Note != "payment failed via webhook: card declined" {
		t.Fatalf("unexpected history entry: %v", latest)
	}
}

func TestWebhookStaleFailureAfterCaptureIgnored(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	draftUC := NewDraftUseCase(repo, newTestNumbers(repo), discardLogger())
	verifyUC := newVerify(repo)
	uc := newWebhook(repo)

	draft, err := draftUC.Create(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkout := validPayload()
	checkout.DraftOrderID = draft.ID
	if _, err := verifyUC.Verify(context.Background(), signedVerifyRequest(&checkout)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _ := repo.GetByID(context.Background(), draft.ID)

	body, sig := webhookDelivery(eventPaymentFailed, "pay_NXhUBcJ8w2LqRd", "order_NXhT4vQZ9mPpGk", "timeout")
	if err := uc.Process(context.Background(), body, sig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := repo.GetByID(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.PaymentStatus != model.PaymentStatusPaid || after.Status != model.OrderStatusConfirmed {
		t.Fatalf("stale failure downgraded the order: %s/%s", after.Status, after.PaymentStatus)
	}
	if len(after.History) != len(before.History) {
		t.Fatalf("stale failure appended history: %v", after.History)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatal("stale failure touched the row")
	}
}

func TestWebhookDuplicateFailureIsNoOp(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	draftUC := NewDraftUseCase(repo, newTestNumbers(repo), discardLogger())
	uc := newWebhook(repo)

	draft, err := draftUC.Create(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, sig := webhookDelivery(eventPaymentFailed, "pay_NXhUBcJ8w2LqRd", "order_NXhT4vQZ9mPpGk", "card declined")
	for i := 0; i < 2; i++ {
		if err := uc.Process(context.Background(), body, sig); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}

	order, _ := repo.GetByID(context.Background(), draft.ID)
	if len(order.History) != 2 {
		t.Fatalf("duplicate failure must not append again, got %v", order.History)
	}
}

func TestWebhookPropagatesStoreFailure(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	draftUC := NewDraftUseCase(repo, newTestNumbers(repo), discardLogger())
	uc := newWebhook(repo)

	if _, err := draftUC.Create(context.Background(), validPayload()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	storeErr := errors.New("deadlock detected")
	repo.UpdateErr = storeErr

	body, sig := webhookDelivery(eventPaymentCaptured, "pay_NXhUBcJ8w2LqRd", "order_NXhT4vQZ9mPpGk", "")
	if err := uc.Process(context.Background(), body, sig); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to surface for redelivery, got %v", err)
	}
}

func TestWebhookEventEnvelopeShape(t *testing.T) {
	raw := []byte(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_1", "order_id": "order_1", "status": "captured",
			"amount": 150000, "error_description": ""
		}}}
	}`)
	var event webhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Event != eventPaymentCaptured {
		t.Fatalf("unexpected event %q", event.Event)
	}
	entity := event.Payload.Payment.Entity
	if entity.ID != "pay_1" || entity.OrderID != "order_1" || entity.AmountPaise != 150000 {
		t.Fatalf("unexpected entity %+v", entity)
	}
}
