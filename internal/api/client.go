// Package api содержит типизированные привязки к операциям бэкенда витрины.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/mmeshcher/goldstore/internal/gateway"
	"github.com/mmeshcher/goldstore/internal/model"
)

// Client предоставляет по одному методу на каждую операцию удалённого API.
// Все запросы проходят через шлюз и наследуют его обработку истечения сессии.
type Client struct {
	gw *gateway.Gateway
}

// NewClient создаёт клиент API поверх указанного шлюза.
func NewClient(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// CartEntry описывает позицию корзины в том виде, в котором её хранит бэкенд.
type CartEntry struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type productsResponse struct {
	Products []model.Product `json:"products"`
}

type productResponse struct {
	Success    bool          `json:"success"`
	TheProduct model.Product `json:"theproduct"`
	Message    string        `json:"message"`
}

type cartResponse struct {
	Cart struct {
		Items []CartEntry `json:"items"`
	} `json:"cart"`
}

type ordersResponse struct {
	Success bool          `json:"success"`
	Orders  []model.Order `json:"orders"`
	Message string        `json:"message"`
}

type orderResponse struct {
	Success bool        `json:"success"`
	Order   model.Order `json:"order"`
	Message string      `json:"message"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type userResponse struct {
	User model.User `json:"user"`
}

type initiatePaymentResponse struct {
	Success       bool   `json:"success"`
	CorrelationID string `json:"correlationId"`
	Message       string `json:"message"`
}

// PaymentStatus описывает ответ бэкенда о состоянии платёжной сессии.
type PaymentStatus struct {
	Paid   bool `json:"paid"`
	Failed bool `json:"failed"`
}

// ListProducts возвращает каталог товаров. Авторизация не требуется.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var resp productsResponse
	if _, err := c.gw.Do(ctx, http.MethodGet, "/products/fetch", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// GetProduct возвращает один товар по идентификатору.
func (c *Client) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	var resp productResponse
	if _, err := c.gw.Do(ctx, http.MethodGet, "/products/fetch/"+productID, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, gateway.ErrNotFound
	}
	return &resp.TheProduct, nil
}

// GetCart возвращает содержимое корзины текущего пользователя.
func (c *Client) GetCart(ctx context.Context) ([]CartEntry, error) {
	var resp cartResponse
	if _, err := c.gw.Do(ctx, http.MethodGet, "/cart/getcart", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cart.Items, nil
}

// AddToCart добавляет товар в корзину на стороне бэкенда.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) error {
	body := CartEntry{ProductID: productID, Quantity: quantity}
	_, err := c.gw.Do(ctx, http.MethodPost, "/cart/add", body, nil)
	return err
}

// RemoveFromCart удаляет товар из корзины на стороне бэкенда.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	body := struct {
		ProductID string `json:"productId"`
	}{ProductID: productID}
	_, err := c.gw.Do(ctx, http.MethodPost, "/cart/remove", body, nil)
	return err
}

// UpdateCart изменяет количество товара в корзине на стороне бэкенда.
func (c *Client) UpdateCart(ctx context.Context, productID string, quantity int) error {
	body := CartEntry{ProductID: productID, Quantity: quantity}
	_, err := c.gw.Do(ctx, http.MethodPost, "/cart/update", body, nil)
	return err
}

// ClearCart очищает корзину на стороне бэкенда.
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.gw.Do(ctx, http.MethodPost, "/cart/clear", struct{}{}, nil)
	return err
}

// ListOrders возвращает заказы текущего пользователя.
func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var resp ordersResponse
	if _, err := c.gw.Do(ctx, http.MethodGet, "/orders", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, respError(resp.Message, "list orders failed")
	}
	return resp.Orders, nil
}

// GetOrder возвращает один заказ по идентификатору.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var resp orderResponse
	if _, err := c.gw.Do(ctx, http.MethodGet, "/orders/"+orderID, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, gateway.ErrNotFound
	}
	return &resp.Order, nil
}

// CreateOrder создаёт заказ из текущей корзины пользователя.
func (c *Client) CreateOrder(ctx context.Context, method model.PaymentMethod, addr model.ShippingAddress) (*model.Order, error) {
	body := struct {
		PaymentMethod   model.PaymentMethod   `json:"paymentMethod"`
		ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	}{PaymentMethod: method, ShippingAddress: addr}

	var resp orderResponse
	if _, err := c.gw.Do(ctx, http.MethodPost, "/orders/create", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, respError(resp.Message, "create order failed")
	}
	return &resp.Order, nil
}

// SetOrderStatus обновляет статус заказа на бэкенде.
func (c *Client) SetOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	body := struct {
		Status model.OrderStatus `json:"status"`
	}{Status: status}
	_, err := c.gw.Do(ctx, http.MethodPut, "/orders/"+orderID+"/status", body, nil)
	return err
}

// InitiatePayment запускает платёжную сессию мобильных денег для заказа и
// возвращает идентификатор корреляции для опроса статуса.
func (c *Client) InitiatePayment(ctx context.Context, orderID, phone string, amount float64) (string, error) {
	body := struct {
		OrderID string  `json:"orderId"`
		Phone   string  `json:"phone"`
		Amount  float64 `json:"amount"`
	}{OrderID: orderID, Phone: phone, Amount: amount}

	var resp initiatePaymentResponse
	if _, err := c.gw.Do(ctx, http.MethodPost, "/payment/initiate", body, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.CorrelationID == "" {
		return "", respError(resp.Message, "payment initiation rejected")
	}
	return resp.CorrelationID, nil
}

// GetPaymentStatus запрашивает состояние платёжной сессии по идентификатору корреляции.
func (c *Client) GetPaymentStatus(ctx context.Context, correlationID string) (*PaymentStatus, error) {
	var resp PaymentStatus
	if _, err := c.gw.Do(ctx, http.MethodGet, "/payment/status/"+correlationID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login выполняет вход пользователя и возвращает токен доступа.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp authResponse
	if _, err := c.gw.Do(ctx, http.MethodPost, "/user/login", body, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.Token == "" {
		return "", respError(resp.Message, "login rejected")
	}
	return resp.Token, nil
}

// Register регистрирует нового пользователя и возвращает токен доступа.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	body := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Name: name, Email: email, Password: password}

	var resp authResponse
	if _, err := c.gw.Do(ctx, http.MethodPost, "/user/reg", body, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.Token == "" {
		return "", respError(resp.Message, "registration rejected")
	}
	return resp.Token, nil
}

// Me возвращает профиль текущего пользователя.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp userResponse
	if _, err := c.gw.Do(ctx, http.MethodGet, "/user/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func respError(message, fallback string) error {
	if message != "" {
		return errors.New(message)
	}
	return errors.New(fallback)
}
