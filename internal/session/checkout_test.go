package session

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/goldstore/internal/api"
	"github.com/mmeshcher/goldstore/internal/credential"
	"github.com/mmeshcher/goldstore/internal/gateway"
	"github.com/mmeshcher/goldstore/internal/model"
	"github.com/mmeshcher/goldstore/internal/payment"
	"github.com/mmeshcher/goldstore/internal/shoptest"
)

func TestCheckoutWithMobileMoney(t *testing.T) {
	shop := shoptest.New()
	shop.SeedProduct(model.Product{ID: "p1", Name: "Gold ring", Price: 1500, Category: "rings"})

	ts := httptest.NewServer(shop.Handler())
	t.Cleanup(ts.Close)

	creds := credential.NewStore(filepath.Join(t.TempDir(), "token"))
	ui := &uiStub{}
	gw := gateway.New(ts.URL, 5*time.Second, creds, ui, ui, zap.NewNop().Sugar())
	client := api.NewClient(gw)
	sess := NewSession(client, creds, ui, ui, zap.NewNop().Sugar())

	if err := creds.Set(shop.IssueToken("buyer@example.com")); err != nil {
		t.Fatalf("Set token error: %v", err)
	}

	ctx := context.Background()

	if !sess.AddToCart(ctx, "p1", 2) {
		t.Fatalf("AddToCart failed")
	}

	addr := model.ShippingAddress{Name: "Ann", Phone: "254700000001", Apartment: "Apartment A", DoorNumber: "3"}
	order, err := sess.CreateOrder(ctx, model.PaymentMobileMoney, addr)
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// Two ticks without a result, then the payment settles.
	shop.ScriptPayment(2, false)

	flow := payment.NewFlow(client, sess, *order, 5*time.Millisecond, time.Second, zap.NewNop().Sugar())
	flow.Start(ctx)

	select {
	case <-flow.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("payment flow did not finish, state = %s", flow.State())
	}

	if got := flow.State(); got != payment.StatePaid {
		t.Fatalf("flow state = %s, want %s", got, payment.StatePaid)
	}

	if n := shop.Calls("PUT /orders/{id}/status"); n != 1 {
		t.Fatalf("completion updates = %d, want exactly 1", n)
	}

	remote := shop.Orders()
	if len(remote) != 1 || remote[0].Status != model.OrderStatusCompleted {
		t.Fatalf("backend order not completed: %+v", remote)
	}
	if remote[0].CorrelationID == "" {
		t.Fatalf("correlation id must be recorded on the order")
	}

	local := sess.Orders()
	if len(local) != 1 || local[0].Status != model.OrderStatusCompleted {
		t.Fatalf("local order not completed: %+v", local)
	}
	if local[0].CorrelationID != flow.CorrelationID() {
		t.Fatalf("local correlation id = %q, want %q", local[0].CorrelationID, flow.CorrelationID())
	}
}
