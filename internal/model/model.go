// Package model содержит доменные сущности витрины голдстор.
package model

// Product представляет товар каталога, полученный от удалённого API.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Description string   `json:"description"`
}

// CartLine описывает одну позицию корзины со снимком данных товара
// на момент последней синхронизации.
type CartLine struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Category  string   `json:"category"`
	Images    []string `json:"images"`
	Quantity  int      `json:"quantity"`
}

// Subtotal возвращает стоимость позиции корзины.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	PaymentMobileMoney    PaymentMethod = "mpesa"
	PaymentCashOnDelivery PaymentMethod = "cash"
)

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ShippingAddress содержит данные доставки заказа.
type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Apartment  string `json:"apartment"`
	DoorNumber string `json:"doorNumber"`
}

// OrderItem описывает позицию заказа, зафиксированную на момент его создания.
type OrderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
}

// Order описывает заказ пользователя.
type Order struct {
	ID            string          `json:"_id"`
	Items         []OrderItem     `json:"items"`
	Total         float64         `json:"totalPrice"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Shipping      ShippingAddress `json:"shippingAddress"`
	Status        OrderStatus     `json:"status"`
	CorrelationID string          `json:"correlationId,omitempty"`
}

// ItemsTotal возвращает сумму стоимостей всех позиций заказа.
func (o Order) ItemsTotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// User представляет профиль авторизованного пользователя.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
