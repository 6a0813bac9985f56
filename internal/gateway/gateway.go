// Package gateway инкапсулирует HTTP-взаимодействие с бэкендом витрины.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/goldstore/internal/credential"
)

// ErrUnauthorized возвращается для запросов, отклонённых бэкендом из-за
// отсутствующего или истёкшего токена доступа.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound возвращается, когда запрошенный ресурс отсутствует на бэкенде.
var ErrNotFound = errors.New("not found")

// Notifier показывает пользователю уведомление.
type Notifier interface {
	Notify(message string)
}

// Navigator переводит пользовательский интерфейс на страницу входа.
type Navigator interface {
	NavigateToLogin()
}

// Gateway выполняет исходящие запросы к бэкенду витрины, добавляя токен
// доступа и централизованно обрабатывая истечение сессии.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	creds      *credential.Store
	notifier   Notifier
	navigator  Navigator
	logger     *zap.SugaredLogger

	// lastExpired хранит последний токен, для которого уже выполнен
	// принудительный выход: одновременные отказы одного токена
	// схлопываются в один выход, истечение нового токена срабатывает
	// заново.
	mu          sync.Mutex
	lastExpired string
}

// New создаёт шлюз для обращения к бэкенду по указанному адресу.
func New(baseURL string, timeout time.Duration, creds *credential.Store, notifier Notifier, navigator Navigator, logger *zap.SugaredLogger) *Gateway {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Gateway{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		creds:     creds,
		notifier:  notifier,
		navigator: navigator,
		logger:    logger,
	}
}

// Do выполняет запрос к бэкенду. Тело body сериализуется в JSON, ответ
// декодируется в out, если указатель передан. Ответ 401 приводит к
// однократному принудительному выходу из сессии.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
	}

	url := g.baseURL + path

	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, _ := g.creds.Get()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		g.handleAuthFailure(token)
		return resp.StatusCode, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, ErrNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return resp.StatusCode, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// handleAuthFailure выполняет принудительный выход: очищает токен,
// уведомляет пользователя и направляет его на страницу входа. Повторные
// отказы того же токена игнорируются.
func (g *Gateway) handleAuthFailure(token string) {
	if token == "" {
		// Гостевой запрос к защищённому маршруту: выходить не из чего.
		return
	}

	g.mu.Lock()
	if g.lastExpired == token {
		g.mu.Unlock()
		return
	}
	g.lastExpired = token
	g.mu.Unlock()

	// Запоздавший отказ старого токена не должен стирать токен,
	// сохранённый повторным входом.
	if current, ok := g.creds.Get(); ok && current == token {
		if err := g.creds.Clear(); err != nil {
			g.logger.Errorw("clear credential after auth failure", "error", err)
		}
	}

	g.logger.Warnw("session expired, forcing logout")

	if g.notifier != nil {
		g.notifier.Notify("Session expired. Please log in again.")
	}
	if g.navigator != nil {
		g.navigator.NavigateToLogin()
	}
}
