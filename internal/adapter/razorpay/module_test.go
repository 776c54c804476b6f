package razorpay

import (
	"testing"

	"github.com/mellowshop/orderdesk/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{
		RazorpayBaseURL:   "http://example.com",
		RazorpayKeyID:     "rzp_test_key",
		RazorpayKeySecret: "key-secret",
	}
	client, err := newClient(clientParams{Config: cfg, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	cfg := &config.Config{RazorpayBaseURL: "/relative", RazorpayKeyID: "k", RazorpayKeySecret: "s"}
	if _, err := newClient(clientParams{Config: cfg, Logger: discardLogger()}); err == nil {
		t.Fatal("expected error for relative base url")
	}
}
