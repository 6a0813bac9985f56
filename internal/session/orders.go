package session

import (
	"context"

	"github.com/mmeshcher/goldstore/internal/model"
)

// CreateOrder оформляет заказ из текущей корзины. Успешно созданный заказ
// добавляется в начало локального списка, а корзина очищается: бэкенд
// считается поглотившим её содержимое.
func (s *Session) CreateOrder(ctx context.Context, method model.PaymentMethod, addr model.ShippingAddress) (*model.Order, error) {
	if !s.RequireAuth() {
		return nil, ErrNotAuthenticated
	}

	order, err := s.backend.CreateOrder(ctx, method, addr)
	if err != nil {
		s.logger.Errorw("create order", "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.orders = append([]model.Order{*order}, s.orders...)
	s.cart = nil
	s.mu.Unlock()

	return order, nil
}

// FetchUserOrders заменяет локальный список заказов авторитетным состоянием
// бэкенда. Для гостевой сессии возвращается пустой список без сетевого вызова.
func (s *Session) FetchUserOrders(ctx context.Context) ([]model.Order, error) {
	if _, ok := s.creds.Get(); !ok {
		s.mu.Lock()
		s.orders = nil
		s.mu.Unlock()
		return nil, nil
	}

	orders, err := s.backend.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()

	return orders, nil
}

// GetOrder запрашивает один заказ по идентификатору напрямую у бэкенда.
func (s *Session) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.backend.GetOrder(ctx, orderID)
}

// SetOrderCorrelationID сохраняет идентификатор платёжной сессии на локально
// известном заказе.
func (s *Session) SetOrderCorrelationID(orderID, correlationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i].CorrelationID = correlationID
			return
		}
	}
}

// SetOrderLocalStatus обновляет статус локально известного заказа.
func (s *Session) SetOrderLocalStatus(orderID string, status model.OrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i].Status = status
			return
		}
	}
}

// Orders возвращает копию локально известных заказов.
func (s *Session) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}
