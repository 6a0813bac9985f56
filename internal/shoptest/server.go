// Package shoptest реализует бэкенд витрины в памяти для тестов клиента.
package shoptest

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mmeshcher/goldstore/internal/model"
)

type user struct {
	name     string
	password string
}

type paymentScript struct {
	pendingTicks int
	failed       bool
}

// Server хранит состояние поддельного бэкенда и обслуживает его HTTP-маршруты.
type Server struct {
	mu       sync.Mutex
	products map[string]model.Product
	cart     map[string]int
	cartSeq  []string
	orders   []model.Order
	users    map[string]user
	tokens   map[string]string
	payments map[string]*paymentScript
	calls    map[string]int
	failNext map[string]int

	script       paymentScript
	rejectInit   bool
	revokeTokens bool
}

// New создаёт пустой поддельный бэкенд.
func New() *Server {
	return &Server{
		products: make(map[string]model.Product),
		cart:     make(map[string]int),
		users:    make(map[string]user),
		tokens:   make(map[string]string),
		payments: make(map[string]*paymentScript),
		calls:    make(map[string]int),
		failNext: make(map[string]int),
	}
}

// SeedProduct добавляет товар в каталог.
func (s *Server) SeedProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// IssueToken регистрирует валидный токен доступа напрямую, минуя вход.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.tokens[token] = email
	return token
}

// RegisterUser заводит пользователя для входа по паролю.
func (s *Server) RegisterUser(name, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = user{name: name, password: password}
}

// ScriptPayment задаёт сценарий платёжной сессии: количество тиков без
// результата и итоговый исход.
func (s *Server) ScriptPayment(pendingTicks int, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = paymentScript{pendingTicks: pendingTicks, failed: failed}
}

// RejectPaymentInit заставляет инициацию платежа отвечать отказом.
func (s *Server) RejectPaymentInit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectInit = true
}

// RevokeTokens делает все выданные токены недействительными: защищённые
// маршруты начинают отвечать 401.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeTokens = true
}

// FailNext заставляет следующий запрос к маршруту завершиться ошибкой 500.
// Маршрут задаётся методом и буквальным путём, например "POST /cart/add".
func (s *Server) FailNext(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[route]++
}

// Calls возвращает число обращений к маршруту, например "POST /cart/add".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Orders возвращает копию заказов, известных бэкенду.
func (s *Server) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Handler собирает маршруты поддельного бэкенда.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.failureMiddleware)

	r.Get("/products/fetch", s.listProducts)
	r.Get("/products/fetch/{id}", s.getProduct)
	r.Post("/user/login", s.login)
	r.Post("/user/reg", s.register)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/cart/getcart", s.getCart)
		r.Post("/cart/add", s.addToCart)
		r.Post("/cart/remove", s.removeFromCart)
		r.Post("/cart/update", s.updateCart)
		r.Post("/cart/clear", s.clearCart)

		r.Get("/orders", s.listOrders)
		r.Get("/orders/{id}", s.getOrder)
		r.Post("/orders/create", s.createOrder)
		r.Put("/orders/{id}/status", s.setOrderStatus)

		r.Post("/payment/initiate", s.initiatePayment)
		r.Get("/payment/status/{correlationId}", s.paymentStatus)

		r.Get("/user/me", s.me)
	})

	return r
}

func (s *Server) failureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		pending := s.failNext[key]
		if pending > 0 {
			s.failNext[key] = pending - 1
		}
		s.mu.Unlock()

		if pending > 0 {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")

		s.mu.Lock()
		_, valid := s.tokens[token]
		if s.revokeTokens {
			valid = false
		}
		s.mu.Unlock()

		if !ok || !valid {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) count(route string) {
	s.calls[route]++
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.count("GET /products/fetch")
	products := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"products": products})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	s.count("GET /products/fetch/{id}")
	p, ok := s.products[id]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, map[string]any{"success": false, "message": "product not found"})
		return
	}
	writeJSON(w, map[string]any{"success": true, "theproduct": p})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.count("POST /user/login")
	u, ok := s.users[req.Email]
	if !ok || u.password != req.Password {
		s.mu.Unlock()
		writeJSON(w, map[string]any{"success": false, "message": "wrong email or password"})
		return
	}
	token := uuid.NewString()
	s.tokens[token] = req.Email
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true, "token": token})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.count("POST /user/reg")
	if _, exists := s.users[req.Email]; exists {
		s.mu.Unlock()
		writeJSON(w, map[string]any{"success": false, "message": "user already exists"})
		return
	}
	s.users[req.Email] = user{name: req.Name, password: req.Password}
	token := uuid.NewString()
	s.tokens[token] = req.Email
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true, "token": token})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token, _ := strings.CutPrefix(header, "Bearer ")

	s.mu.Lock()
	s.count("GET /user/me")
	email := s.tokens[token]
	u := s.users[email]
	s.mu.Unlock()

	writeJSON(w, map[string]any{"user": model.User{ID: email, Name: u.name, Email: email}})
}
