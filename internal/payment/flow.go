// Package payment управляет подтверждением оплаты заказа мобильными деньгами:
// инициирует платёжную сессию и опрашивает её статус до терминального исхода.
package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/mmeshcher/goldstore/internal/api"
	"github.com/mmeshcher/goldstore/internal/model"
)

// State описывает состояние потока подтверждения оплаты.
type State string

const (
	StateCreated      State = "created"
	StateAwaitingInit State = "awaiting_init"
	StatePolling      State = "polling"
	StatePaid         State = "paid"
	StateFailed       State = "failed"
	StateGaveUp       State = "gave_up"
	StatePlaced       State = "placed"
)

// Terminal сообщает, является ли состояние конечным.
func (s State) Terminal() bool {
	switch s {
	case StatePaid, StateFailed, StateGaveUp, StatePlaced:
		return true
	}
	return false
}

var (
	errPending       = errors.New("payment pending")
	errPaymentFailed = errors.New("payment failed")
)

// Backend описывает операции платёжного API, используемые потоком.
type Backend interface {
	InitiatePayment(ctx context.Context, orderID, phone string, amount float64) (string, error)
	GetPaymentStatus(ctx context.Context, correlationID string) (*api.PaymentStatus, error)
	SetOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error
}

// OrderUpdater обновляет локально известный заказ по ходу потока.
type OrderUpdater interface {
	SetOrderCorrelationID(orderID, correlationID string)
	SetOrderLocalStatus(orderID string, status model.OrderStatus)
}

// Flow ведёт один заказ через подтверждение оплаты. Поток создаётся на
// каждое оформление заказа и владеет собственной горутиной опроса;
// Cancel останавливает опрос без дальнейших переходов состояния.
type Flow struct {
	backend  Backend
	orders   OrderUpdater
	logger   *zap.SugaredLogger
	order    model.Order
	interval time.Duration
	timeout  time.Duration

	mu            sync.Mutex
	state         State
	correlationID string
	cancel        context.CancelFunc
	done          chan struct{}
	started       bool
}

// NewFlow создаёт поток подтверждения оплаты для указанного заказа.
func NewFlow(backend Backend, orders OrderUpdater, order model.Order, interval, timeout time.Duration, logger *zap.SugaredLogger) *Flow {
	return &Flow{
		backend:  backend,
		orders:   orders,
		logger:   logger,
		order:    order,
		interval: interval,
		timeout:  timeout,
		state:    StateCreated,
		done:     make(chan struct{}),
	}
}

// State возвращает текущее состояние потока.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CorrelationID возвращает идентификатор платёжной сессии, если она начата.
func (f *Flow) CorrelationID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.correlationID
}

// Done закрывается после завершения потока: терминального состояния или отмены.
func (f *Flow) Done() <-chan struct{} {
	return f.done
}

// Start запускает поток. Повторный запуск игнорируется. Заказ с оплатой
// при получении минует опрос и сразу считается размещённым.
func (f *Flow) Start(ctx context.Context) {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return
	}
	f.started = true

	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	go func() {
		defer close(f.done)
		defer cancel()
		f.run(runCtx)
	}()
}

// Cancel останавливает опрос. После отмены переходы состояния не выполняются.
func (f *Flow) Cancel() {
	f.mu.Lock()
	cancel := f.cancel
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (f *Flow) run(ctx context.Context) {
	if f.order.PaymentMethod == model.PaymentCashOnDelivery {
		f.setState(StatePlaced)
		f.orders.SetOrderLocalStatus(f.order.ID, model.OrderStatusPlaced)
		return
	}

	f.setState(StateAwaitingInit)

	correlationID, err := f.backend.InitiatePayment(ctx, f.order.ID, f.order.Shipping.Phone, f.order.Total)
	if err != nil || correlationID == "" {
		f.logger.Errorw("initiate payment", "orderId", f.order.ID, "error", err)
		f.setState(StateFailed)
		return
	}

	f.mu.Lock()
	f.correlationID = correlationID
	f.mu.Unlock()
	f.orders.SetOrderCorrelationID(f.order.ID, correlationID)

	f.setState(StatePolling)
	f.poll(ctx, correlationID)
}

func (f *Flow) poll(ctx context.Context, correlationID string) {
	backoff := retry.WithMaxDuration(f.timeout, retry.NewConstant(f.interval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, err := f.backend.GetPaymentStatus(ctx, correlationID)
		if err != nil {
			// Сбой одного опроса равнозначен тику без результата.
			f.logger.Warnw("payment status poll", "correlationId", correlationID, "error", err)
			return retry.RetryableError(errPending)
		}

		switch {
		case status.Paid:
			return nil
		case status.Failed:
			return errPaymentFailed
		default:
			return retry.RetryableError(errPending)
		}
	})

	switch {
	case err == nil:
		if updErr := f.backend.SetOrderStatus(ctx, f.order.ID, model.OrderStatusCompleted); updErr != nil {
			f.logger.Errorw("mark order completed", "orderId", f.order.ID, "error", updErr)
		}
		f.orders.SetOrderLocalStatus(f.order.ID, model.OrderStatusCompleted)
		f.setState(StatePaid)
	case errors.Is(err, errPaymentFailed):
		// Статус заказа не меняется: пользователь может повторить оплату.
		f.setState(StateFailed)
	case errors.Is(err, errPending):
		f.logger.Warnw("payment polling exhausted", "orderId", f.order.ID, "timeout", f.timeout)
		f.setState(StateGaveUp)
	default:
		// Отмена потока: состояние остаётся как есть.
	}
}

func (f *Flow) setState(state State) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}
