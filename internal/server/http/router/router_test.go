package router

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mellowshop/orderdesk/internal/test/stub"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSetupRoutes(t *testing.T) {
	engine := Setup(&stub.CheckoutFacadeStub{}, stub.PingerStub{}, discardLogger())

	tests := []struct {
		method, path string
		body         string
		wantStatus   int
	}{
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodPost, "/api/orders/draft", "{}", http.StatusOK},
		{http.MethodPut, "/api/orders/draft", "{}", http.StatusOK},
		{http.MethodPost, "/api/payments/verify", "{}", http.StatusOK},
		{http.MethodPost, "/api/webhooks/razorpay", "{}", http.StatusOK},
		{http.MethodPost, "/api/admin/login", "{}", http.StatusOK},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
		if tt.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s %s: want %d, got %d (%s)", tt.method, tt.path, tt.wantStatus, rec.Code, rec.Body.String())
		}
	}
}

func TestSetupAdminRoutesRequireAuth(t *testing.T) {
	facade := &stub.CheckoutFacadeStub{}
	engine := Setup(facade, stub.PingerStub{}, discardLogger())

	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/orders/o-1"},
		{http.MethodPut, "/api/admin/orders/o-1"},
		{http.MethodGet, "/api/admin/payments/pay_1"},
	} {
		req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString("{}"))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: want 401, got %d", tt.method, tt.path, rec.Code)
		}

		req = httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer token")
		rec = httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s %s with token: want 200, got %d (%s)", tt.method, tt.path, rec.Code, rec.Body.String())
		}
	}
}

func TestSetupCompressesResponses(t *testing.T) {
	engine := Setup(&stub.CheckoutFacadeStub{}, stub.PingerStub{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, got %q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(body, []byte("ok")) {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSetupAcceptsCompressedRequests(t *testing.T) {
	facade := &stub.CheckoutFacadeStub{}
	engine := Setup(facade, stub.PingerStub{}, discardLogger())

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write([]byte(`{"order_id":"o-1","payment_status":"cancelled"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/orders/draft", &compressed)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}
