package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/goldstore/internal/credential"
)

type uiRecorder struct {
	mu        sync.Mutex
	notices   []string
	navigated int
}

func (r *uiRecorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, message)
}

func (r *uiRecorder) NavigateToLogin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigated++
}

func (r *uiRecorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices), r.navigated
}

func newTestGateway(t *testing.T, url string) (*Gateway, *credential.Store, *uiRecorder) {
	t.Helper()

	creds := credential.NewStore(filepath.Join(t.TempDir(), "token"))
	rec := &uiRecorder{}
	gw := New(url, 5*time.Second, creds, rec, rec, zap.NewNop().Sugar())
	return gw, creds, rec
}

func TestDo_AttachesBearer(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer ts.Close()

	gw, creds, _ := newTestGateway(t, ts.URL)
	if err := creds.Set("tok-1"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	code, err := gw.Do(context.Background(), http.MethodGet, "/ping", nil, &out)
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if code != http.StatusOK || !out.OK {
		t.Fatalf("code = %d, out = %+v", code, out)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
}

func TestDo_GuestRequestHasNoBearer(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	gw, _, _ := newTestGateway(t, ts.URL)

	if _, err := gw.Do(context.Background(), http.MethodGet, "/products/fetch", nil, nil); err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("guest request must be unauthenticated, got %q", gotAuth)
	}
}

func TestDo_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	}))
	defer ts.Close()

	gw, _, _ := newTestGateway(t, ts.URL)

	_, err := gw.Do(context.Background(), http.MethodGet, "/products/fetch/nope", nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDo_AuthFailureFiresOnce(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}))
	defer ts.Close()

	gw, creds, rec := newTestGateway(t, ts.URL)
	if err := creds.Set("expired"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	const concurrency = 16

	var unauthorized atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gw.Do(context.Background(), http.MethodGet, "/cart/getcart", nil, nil)
			if errors.Is(err, ErrUnauthorized) {
				unauthorized.Add(1)
			}
		}()
	}
	wg.Wait()

	if unauthorized.Load() != concurrency {
		t.Fatalf("unauthorized = %d, want %d", unauthorized.Load(), concurrency)
	}

	notices, navigated := rec.counts()
	if notices != 1 || navigated != 1 {
		t.Fatalf("notices = %d, navigations = %d; want exactly one each", notices, navigated)
	}
	if _, ok := creds.Get(); ok {
		t.Fatalf("credential must be cleared after auth failure")
	}
}

func TestDo_AuthFailureRearmsAfterLogin(t *testing.T) {
	var acceptGood atomic.Bool
	acceptGood.Store(true)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer good" && acceptGood.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}))
	defer ts.Close()

	gw, creds, rec := newTestGateway(t, ts.URL)

	// First expiry.
	if err := creds.Set("stale"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, err := gw.Do(context.Background(), http.MethodGet, "/cart/getcart", nil, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Re-login re-arms the guard.
	if err := creds.Set("good"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, err := gw.Do(context.Background(), http.MethodGet, "/cart/getcart", nil, nil); err != nil {
		t.Fatalf("Do after re-login error: %v", err)
	}

	// Second expiry fires a second logout.
	acceptGood.Store(false)
	if _, err := gw.Do(context.Background(), http.MethodGet, "/cart/getcart", nil, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	notices, navigated := rec.counts()
	if notices != 2 || navigated != 2 {
		t.Fatalf("notices = %d, navigations = %d; want two each", notices, navigated)
	}
}
