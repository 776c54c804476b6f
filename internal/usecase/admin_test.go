package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/pkg/auth"
	"github.com/mellowshop/orderdesk/internal/test"
)

func newAdmin(repo *test.OrderRepositoryStub, roles *test.RoleRepositoryStub) *AdminUseCase {
	hasher := auth.NewBcryptHasher(4)
	tokens := auth.NewHMACStrategy("admin-token-secret", auth.Options{})
	return NewAdminUseCase(repo, roles, hasher, tokens)
}

func seededRoles(t *testing.T, login, password, role string) *test.RoleRepositoryStub {
	t.Helper()
	hash, err := auth.NewBcryptHasher(4).Hash(password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &test.RoleRepositoryStub{Admins: map[string]*model.AdminUser{
		login: {ID: 7, Login: login, PasswordHash: hash, Role: role},
	}}
}

func TestAdminLogin(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	roles := seededRoles(t, "ops", "s3cret", "admin")
	uc := newAdmin(repo, roles)

	token, err := uc.Login(context.Background(), "ops", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}

	adminID, err := uc.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adminID != 7 {
		t.Fatalf("unexpected admin id %d", adminID)
	}
	ok, err := uc.IsAdmin(context.Background(), adminID)
	if err != nil || !ok {
		t.Fatalf("expected admin role, got ok=%v err=%v", ok, err)
	}
}

func TestAdminLoginRejections(t *testing.T) {
	repo := test.NewOrderRepositoryStub()

	t.Run("wrong password", func(t *testing.T) {
		uc := newAdmin(repo, seededRoles(t, "ops", "s3cret", "admin"))
		if _, err := uc.Login(context.Background(), "ops", "wrong"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
	t.Run("unknown login", func(t *testing.T) {
		uc := newAdmin(repo, seededRoles(t, "ops", "s3cret", "admin"))
		if _, err := uc.Login(context.Background(), "ghost", "s3cret"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
	t.Run("empty credentials", func(t *testing.T) {
		uc := newAdmin(repo, seededRoles(t, "ops", "s3cret", "admin"))
		if _, err := uc.Login(context.Background(), "", ""); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
	t.Run("non-admin role", func(t *testing.T) {
		uc := newAdmin(repo, seededRoles(t, "viewer", "s3cret", "support"))
		if _, err := uc.Login(context.Background(), "viewer", "s3cret"); !errors.Is(err, domainErrors.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func confirmedOrder(t *testing.T, repo *test.OrderRepositoryStub) *model.Order {
	t.Helper()
	draftUC := NewDraftUseCase(repo, newTestNumbers(repo), discardLogger())
	verifyUC := newVerify(repo)

	draft, err := draftUC.Create(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkout := validPayload()
	checkout.DraftOrderID = draft.ID
	order, err := verifyUC.Verify(context.Background(), signedVerifyRequest(&checkout))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return order
}

func TestAdminUpdateOrderTransitions(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newAdmin(repo, &test.RoleRepositoryStub{})
	order := confirmedOrder(t, repo)

	processing := model.OrderStatusProcessing
	updated, err := uc.UpdateOrder(context.Background(), order.ID, AdminUpdate{Status: &processing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", updated.Status)
	}
	latest := updated.History.Latest()
	if latest == nil || latest.Note != "updated by admin" {
		t.Fatalf("unexpected history entry: %v", latest)
	}

	// Skipping a stage is rejected.
	delivered := model.OrderStatusDelivered
	if _, err := uc.UpdateOrder(context.Background(), order.ID, AdminUpdate{Status: &delivered}); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAdminUpdateOrderShippingStampsOnce(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newAdmin(repo, &test.RoleRepositoryStub{})
	order := confirmedOrder(t, repo)

	processing := model.OrderStatusProcessing
	if _, err := uc.UpdateOrder(context.Background(), order.ID, AdminUpdate{Status: &processing}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shipped := model.OrderStatusShipped
	tracking := "AWB123456789"
	provider := "delhivery"
	first, err := uc.UpdateOrder(context.Background(), order.ID, AdminUpdate{
		Status:           &shipped,
		TrackingNumber:   &tracking,
		ShippingProvider: &provider,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ShippedAt == nil {
		t.Fatal("shipped_at not stamped")
	}
	if first.TrackingNumber != tracking || first.ShippingProvider != provider {
		t.Fatalf("tracking details not recorded: %+v", first)
	}

	// Tracking details are set-once; later edits must not overwrite them.
	otherTracking := "AWB000000000"
	note := "corrected tracking"
	second, err := uc.UpdateOrder(context.Background(), order.ID, AdminUpdate{
		TrackingNumber: &otherTracking,
		Note:           note,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TrackingNumber != tracking {
		t.Fatalf("tracking number overwritten to %q", second.TrackingNumber)
	}
	if !second.ShippedAt.Equal(*first.ShippedAt) {
		t.Fatal("shipped_at restamped")
	}
}

func TestAdminUpdateOrderRefund(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newAdmin(repo, &test.RoleRepositoryStub{})
	order := confirmedOrder(t, repo)

	refunded := model.PaymentStatusRefunded
	updated, err := uc.UpdateOrder(context.Background(), order.ID, AdminUpdate{PaymentStatus: &refunded, Note: "customer refund"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.PaymentStatus != model.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", updated.PaymentStatus)
	}

	// Refunded is terminal for payment status.
	paid := model.PaymentStatusPaid
	if _, err := uc.UpdateOrder(context.Background(), order.ID, AdminUpdate{PaymentStatus: &paid}); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAdminUpdateOrderValidation(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newAdmin(repo, &test.RoleRepositoryStub{})
	order := confirmedOrder(t, repo)

	if _, err := uc.UpdateOrder(context.Background(), "", AdminUpdate{}); !errors.Is(err, domainErrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing id, got %v", err)
	}
	if _, err := uc.UpdateOrder(context.Background(), order.ID, AdminUpdate{}); !errors.Is(err, domainErrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty patch, got %v", err)
	}

	bogus := model.OrderStatus("archived")
	if _, err := uc.UpdateOrder(context.Background(), order.ID, AdminUpdate{Status: &bogus}); !errors.Is(err, domainErrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown status, got %v", err)
	}
	adminNotes := "internal note"
	if _, err := uc.UpdateOrder(context.Background(), "ghost", AdminUpdate{Note: "x", AdminNotes: &adminNotes}); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminOrderAndHistory(t *testing.T) {
	repo := test.NewOrderRepositoryStub()
	uc := newAdmin(repo, &test.RoleRepositoryStub{})
	order := confirmedOrder(t, repo)

	got, err := uc.Order(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Number != order.Number {
		t.Fatalf("unexpected order %+v", got)
	}

	history, err := uc.OrderHistory(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two entries, got %v", history)
	}

	if _, err := uc.Order(context.Background(), "ghost"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := uc.Order(context.Background(), ""); !errors.Is(err, domainErrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
