package test

import (
	"context"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/domain/repository"
)

// OrderRepositoryStub stores orders in-memory for tests, mirroring the
// postgres store's update contract: append-on-change history, stamp-once
// shipment timestamps, unique number and payment_id.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	ByID   map[string]*model.Order
	seq    int64
	nowFn  func() time.Time

	InsertErr error
	UpdateErr error
	GetErr    error
	SeqErr    error
}

// NewOrderRepositoryStub constructs the stub with initialized state.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		ByID:  make(map[string]*model.Order),
		nowFn: time.Now,
	}
}

var _ repository.OrderRepository = (*OrderRepositoryStub)(nil)

func cloneOrder(o *model.Order) *model.Order {
	cp := *o
	cp.History = append(model.StatusHistory(nil), o.History...)
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp
}

func (s *OrderRepositoryStub) insert(order *model.Order) (*model.Order, error) {
	if s.InsertErr != nil {
		return nil, s.InsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.ByID {
		if existing.Number == order.Number {
			return nil, domainErrors.ErrAlreadyExists
		}
		if order.PaymentID != nil && existing.PaymentID != nil && *existing.PaymentID == *order.PaymentID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	now := s.nowFn().UTC()
	cp := cloneOrder(order)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.ByID[cp.ID] = cp
	order.CreatedAt = now
	order.UpdatedAt = now
	return cloneOrder(cp), nil
}

func (s *OrderRepositoryStub) InsertDraft(ctx context.Context, order *model.Order) (*model.Order, error) {
	return s.insert(order)
}

func (s *OrderRepositoryStub) InsertConfirmed(ctx context.Context, order *model.Order) (*model.Order, error) {
	return s.insert(order)
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.ByID[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.ByID {
		if o.Number == number {
			return cloneOrder(o), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) GetByPaymentID(ctx context.Context, paymentID string) (*model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.ByID {
		if o.PaymentID != nil && *o.PaymentID == paymentID {
			return cloneOrder(o), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.ByID {
		if strings.Contains(o.Notes, gatewayOrderID) {
			return cloneOrder(o), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) StatusHistory(ctx context.Context, orderID string) (model.StatusHistory, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order.History, nil
}

func (s *OrderRepositoryStub) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.ByID {
		if o.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *OrderRepositoryStub) NextOrderSeq(ctx context.Context) (int64, error) {
	if s.SeqErr != nil {
		return 0, s.SeqErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, orderID string, patch repository.OrderPatch) (*model.Order, error) {
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ByID[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}

	now := s.nowFn().UTC()
	prior := order.History

	switch {
	case patch.Status != nil && *patch.Status != order.Status:
		order.History = order.History.Append(*patch.Status, now, patch.HistoryNote)
		order.Status = *patch.Status
	case patch.Status == nil && patch.HistoryNote != "":
		order.History = order.History.Append(order.Status, now, patch.HistoryNote)
	}

	if order.Status == model.OrderStatusShipped && order.ShippedAt == nil && !prior.Contains(model.OrderStatusShipped) {
		order.ShippedAt = &now
	}
	if order.Status == model.OrderStatusDelivered && order.DeliveredAt == nil && !prior.Contains(model.OrderStatusDelivered) {
		order.DeliveredAt = &now
	}

	if patch.PaymentStatus != nil {
		order.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaymentID != nil && *patch.PaymentID != "" {
		order.PaymentID = patch.PaymentID
	}
	if patch.PaymentDate != nil {
		order.PaymentDate = patch.PaymentDate
	}
	if patch.TrackingNumber != nil && order.TrackingNumber == "" {
		order.TrackingNumber = *patch.TrackingNumber
	}
	if patch.ShippingProvider != nil && order.ShippingProvider == "" {
		order.ShippingProvider = *patch.ShippingProvider
	}
	if patch.AdminNotes != nil {
		order.AdminNotes = *patch.AdminNotes
	}

	order.UpdatedAt = now
	return cloneOrder(order), nil
}

func (s *OrderRepositoryStub) ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, o := range s.ByID {
		if o.UpdatedAt.After(since) {
			result = append(result, *cloneOrder(o))
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Count reports the number of stored orders.
func (s *OrderRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ByID)
}

// RoleRepositoryStub serves admin role lookups from memory.
type RoleRepositoryStub struct {
	Admins map[string]*model.AdminUser
	Err    error
}

var _ repository.RoleRepository = (*RoleRepositoryStub)(nil)

func (s *RoleRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.AdminUser, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if admin, ok := s.Admins[login]; ok {
		return admin, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *RoleRepositoryStub) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	for _, admin := range s.Admins {
		if admin.ID == userID && admin.Role == "admin" {
			return true, nil
		}
	}
	return false, nil
}
