package usecase

import (
	"testing"

	"github.com/mellowshop/orderdesk/internal/config"
	"github.com/mellowshop/orderdesk/internal/test"
)

func TestNewOrderNumberGenerator(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	gen := newOrderNumberGenerator(generatorParams{
		Config: &config.Config{OrderNumberPrefix: "ORD"},
		Orders: repo,
		Logger: discardLogger(),
	})
	if gen == nil {
		t.Fatal("expected generator instance")
	}
}

func TestNewVerifyUseCaseUsesConfig(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newVerifyUseCase(verifyParams{
		Config:  &config.Config{RazorpayKeySecret: "key-secret"},
		Orders:  repo,
		Numbers: newTestNumbers(repo),
		Logger:  discardLogger(),
	})
	if uc == nil {
		t.Fatal("expected verify use case instance")
	}
	if uc.keySecret != "key-secret" {
		t.Fatalf("unexpected key secret %q", uc.keySecret)
	}
}

func TestNewWebhookUseCaseUsesConfig(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newWebhookUseCase(webhookParams{
		Config: &config.Config{RazorpayWebhookSecret: "webhook-secret"},
		Orders: repo,
		Logger: discardLogger(),
	})
	if uc == nil {
		t.Fatal("expected webhook use case instance")
	}
	if uc.webhookSecret != "webhook-secret" {
		t.Fatalf("unexpected webhook secret %q", uc.webhookSecret)
	}
}
