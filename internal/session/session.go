// Package session реализует клиентскую сессию витрины: корзину,
// заказы и каталог, синхронизируемые с удалённым бэкендом.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/goldstore/internal/api"
	"github.com/mmeshcher/goldstore/internal/credential"
	"github.com/mmeshcher/goldstore/internal/model"
)

// ErrNotAuthenticated возвращается операциями, требующими токена доступа,
// когда сессия гостевая.
var ErrNotAuthenticated = errors.New("not authenticated")

const (
	placeholderName     = "unknown"
	placeholderCategory = "unknown"
)

// Backend описывает операции удалённого API, используемые сессией.
type Backend interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	GetCart(ctx context.Context) ([]api.CartEntry, error)
	AddToCart(ctx context.Context, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, productID string) error
	UpdateCart(ctx context.Context, productID string, quantity int) error
	ClearCart(ctx context.Context) error
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	CreateOrder(ctx context.Context, method model.PaymentMethod, addr model.ShippingAddress) (*model.Order, error)
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (string, error)
}

// Notifier показывает пользователю уведомление.
type Notifier interface {
	Notify(message string)
}

// Navigator переводит пользовательский интерфейс на страницу входа.
type Navigator interface {
	NavigateToLogin()
}

// Session владеет всем изменяемым состоянием клиента: токеном доступа,
// каталогом, корзиной и списком заказов. Состояние корзины и заказов
// записывается только из подтверждённых ответов бэкенда.
type Session struct {
	backend   Backend
	creds     *credential.Store
	notifier  Notifier
	navigator Navigator
	logger    *zap.SugaredLogger

	mu       sync.RWMutex
	products []model.Product
	cart     []model.CartLine
	orders   []model.Order

	// mutate сериализует изменяющие операции корзины вместе с их
	// повторной загрузкой, чтобы исключить гонку "последний ответ
	// перезаписывает более новый".
	mutate sync.Mutex
}

// NewSession создаёт сессию поверх указанного бэкенда и хранилища токена.
func NewSession(backend Backend, creds *credential.Store, notifier Notifier, navigator Navigator, logger *zap.SugaredLogger) *Session {
	return &Session{
		backend:   backend,
		creds:     creds,
		notifier:  notifier,
		navigator: navigator,
		logger:    logger,
	}
}

// RequireAuth сообщает, авторизована ли сессия. Для гостевой сессии
// показывает уведомление и направляет пользователя на страницу входа.
func (s *Session) RequireAuth() bool {
	if _, ok := s.creds.Get(); ok {
		return true
	}

	if s.notifier != nil {
		s.notifier.Notify("You must log in first.")
	}
	if s.navigator != nil {
		s.navigator.NavigateToLogin()
	}

	return false
}

// Bootstrap загружает начальное состояние сессии при старте процесса:
// каталог всегда, корзину и заказы только при наличии токена.
func (s *Session) Bootstrap(ctx context.Context) {
	if err := s.FetchProducts(ctx); err != nil {
		s.logger.Errorw("bootstrap products", "error", err)
	}

	if _, ok := s.creds.Get(); !ok {
		return
	}

	if err := s.FetchCart(ctx); err != nil {
		s.logger.Errorw("bootstrap cart", "error", err)
	}
	if _, err := s.FetchUserOrders(ctx); err != nil {
		s.logger.Errorw("bootstrap orders", "error", err)
	}
}

// FetchProducts загружает каталог товаров.
func (s *Session) FetchProducts(ctx context.Context) error {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	return nil
}

// ProductByID запрашивает один товар каталога у бэкенда.
func (s *Session) ProductByID(ctx context.Context, productID string) (*model.Product, error) {
	return s.backend.GetProduct(ctx, productID)
}

// FetchCart заменяет корзину авторитетным состоянием бэкенда. Снимки
// товаров для позиций загружаются параллельно; позиция, товар которой
// не удалось загрузить, получает значения-заглушки вместо отказа всей
// загрузки. Для гостевой сессии корзина принудительно пуста.
func (s *Session) FetchCart(ctx context.Context) error {
	if _, ok := s.creds.Get(); !ok {
		s.mu.Lock()
		s.cart = nil
		s.mu.Unlock()
		return nil
	}

	entries, err := s.backend.GetCart(ctx)
	if err != nil {
		return err
	}

	lines := make([]model.CartLine, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			line := model.CartLine{
				ProductID: e.ProductID,
				Quantity:  e.Quantity,
				Name:      placeholderName,
				Category:  placeholderCategory,
			}

			product, err := s.backend.GetProduct(gctx, e.ProductID)
			if err != nil {
				s.logger.Warnw("resolve cart line product", "productId", e.ProductID, "error", err)
			} else {
				line.Name = product.Name
				line.Price = product.Price
				line.Category = product.Category
				line.Images = product.Images
			}

			lines[i] = line
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	s.cart = lines
	s.mu.Unlock()

	return nil
}

// AddToCart добавляет товар в корзину и синхронизирует её с бэкендом.
func (s *Session) AddToCart(ctx context.Context, productID string, quantity int) bool {
	if !s.RequireAuth() {
		return false
	}

	s.mutate.Lock()
	defer s.mutate.Unlock()

	if err := s.backend.AddToCart(ctx, productID, quantity); err != nil {
		s.logger.Errorw("add to cart", "productId", productID, "error", err)
		s.notify("Add to cart failed.")
		return false
	}

	s.refetchCart(ctx)
	return true
}

// RemoveFromCart удаляет товар из корзины и синхронизирует её с бэкендом.
func (s *Session) RemoveFromCart(ctx context.Context, productID string) bool {
	if !s.RequireAuth() {
		return false
	}

	s.mutate.Lock()
	defer s.mutate.Unlock()

	if err := s.backend.RemoveFromCart(ctx, productID); err != nil {
		s.logger.Errorw("remove from cart", "productId", productID, "error", err)
		s.notify("Remove from cart failed.")
		return false
	}

	s.refetchCart(ctx)
	return true
}

// UpdateQuantity изменяет количество товара в корзине. Количество,
// не превышающее ноль, равнозначно удалению позиции.
func (s *Session) UpdateQuantity(ctx context.Context, productID string, quantity int) bool {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, productID)
	}

	if !s.RequireAuth() {
		return false
	}

	s.mutate.Lock()
	defer s.mutate.Unlock()

	if err := s.backend.UpdateCart(ctx, productID, quantity); err != nil {
		s.logger.Errorw("update cart quantity", "productId", productID, "error", err)
		s.notify("Update cart failed.")
		return false
	}

	s.refetchCart(ctx)
	return true
}

// ClearCart очищает корзину на бэкенде и локально. Повторная загрузка
// не нужна: результат очистки известен заранее.
func (s *Session) ClearCart(ctx context.Context) bool {
	if !s.RequireAuth() {
		return false
	}

	s.mutate.Lock()
	defer s.mutate.Unlock()

	if err := s.backend.ClearCart(ctx); err != nil {
		s.logger.Errorw("clear cart", "error", err)
		s.notify("Failed to clear cart.")
		return false
	}

	s.mu.Lock()
	s.cart = nil
	s.mu.Unlock()

	return true
}

// refetchCart перечитывает корзину после подтверждённой мутации.
// Отказ повторной загрузки оставляет последнее известное состояние.
func (s *Session) refetchCart(ctx context.Context) {
	if err := s.FetchCart(ctx); err != nil {
		s.logger.Errorw("refetch cart after mutation", "error", err)
	}
}

// TotalItems возвращает суммарное количество товаров в корзине.
func (s *Session) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	for _, l := range s.cart {
		total += l.Quantity
	}
	return total
}

// TotalPrice возвращает суммарную стоимость корзины.
func (s *Session) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, l := range s.cart {
		total += l.Subtotal()
	}
	return total
}

// Cart возвращает копию текущей корзины.
func (s *Session) Cart() []model.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CartLine, len(s.cart))
	copy(out, s.cart)
	return out
}

// Products возвращает копию загруженного каталога.
func (s *Session) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Session) notify(message string) {
	if s.notifier != nil {
		s.notifier.Notify(message)
	}
}
