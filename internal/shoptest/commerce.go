package shoptest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mmeshcher/goldstore/internal/model"
)

type cartEntry struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.count("GET /cart/getcart")
	items := make([]cartEntry, 0, len(s.cartSeq))
	for _, id := range s.cartSeq {
		if qty, ok := s.cart[id]; ok {
			items = append(items, cartEntry{ProductID: id, Quantity: qty})
		}
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"cart": map[string]any{"items": items}})
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req cartEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	s.mu.Lock()
	s.count("POST /cart/add")
	if _, ok := s.cart[req.ProductID]; !ok {
		s.cartSeq = append(s.cartSeq, req.ProductID)
	}
	s.cart[req.ProductID] += req.Quantity
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true})
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.count("POST /cart/remove")
	delete(s.cart, req.ProductID)
	for i, id := range s.cartSeq {
		if id == req.ProductID {
			s.cartSeq = append(s.cartSeq[:i], s.cartSeq[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true})
}

func (s *Server) updateCart(w http.ResponseWriter, r *http.Request) {
	var req cartEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.count("POST /cart/update")
	if _, ok := s.cart[req.ProductID]; ok && req.Quantity > 0 {
		s.cart[req.ProductID] = req.Quantity
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true})
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.count("POST /cart/clear")
	s.cart = make(map[string]int)
	s.cartSeq = nil
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.count("GET /orders")
	orders := make([]model.Order, len(s.orders))
	copy(orders, s.orders)
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true, "orders": orders})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	s.count("GET /orders/{id}")
	var found *model.Order
	for i := range s.orders {
		if s.orders[i].ID == id {
			found = &s.orders[i]
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		writeJSON(w, map[string]any{"success": false, "message": "order not found"})
		return
	}
	writeJSON(w, map[string]any{"success": true, "order": *found})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod   model.PaymentMethod   `json:"paymentMethod"`
		ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.count("POST /orders/create")

	if len(s.cart) == 0 {
		s.mu.Unlock()
		writeJSON(w, map[string]any{"success": false, "message": "cart is empty"})
		return
	}

	order := model.Order{
		ID:            uuid.NewString(),
		PaymentMethod: req.PaymentMethod,
		Shipping:      req.ShippingAddress,
		Status:        model.OrderStatusPending,
	}
	for _, id := range s.cartSeq {
		qty, ok := s.cart[id]
		if !ok {
			continue
		}
		p := s.products[id]
		order.Items = append(order.Items, model.OrderItem{
			Name:     p.Name,
			Price:    p.Price,
			Quantity: qty,
			Category: p.Category,
		})
		order.Total += p.Price * float64(qty)
	}

	s.orders = append([]model.Order{order}, s.orders...)
	s.cart = make(map[string]int)
	s.cartSeq = nil
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true, "order": order})
}

func (s *Server) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.count("PUT /orders/{id}/status")
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = req.Status
			break
		}
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true})
}

func (s *Server) initiatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string  `json:"orderId"`
		Phone   string  `json:"phone"`
		Amount  float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.count("POST /payment/initiate")
	if s.rejectInit {
		s.mu.Unlock()
		writeJSON(w, map[string]any{"success": false, "message": "payment initiation rejected"})
		return
	}

	correlationID := uuid.NewString()
	script := s.script
	s.payments[correlationID] = &script

	for i := range s.orders {
		if s.orders[i].ID == req.OrderID {
			s.orders[i].CorrelationID = correlationID
			break
		}
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true, "correlationId": correlationID})
}

func (s *Server) paymentStatus(w http.ResponseWriter, r *http.Request) {
	correlationID := chi.URLParam(r, "correlationId")

	s.mu.Lock()
	s.count("GET /payment/status/{correlationId}")
	script, ok := s.payments[correlationID]
	if !ok {
		s.mu.Unlock()
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	paid, failed := false, false
	if script.pendingTicks > 0 {
		script.pendingTicks--
	} else if script.failed {
		failed = true
	} else {
		paid = true
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"paid": paid, "failed": failed})
}
