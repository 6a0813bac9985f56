package session

import "context"

// Login выполняет вход пользователя, сохраняет полученный токен и
// загружает корзину и заказы новой сессии.
func (s *Session) Login(ctx context.Context, email, password string) error {
	token, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := s.creds.Set(token); err != nil {
		return err
	}

	s.hydrate(ctx)
	return nil
}

// Register регистрирует нового пользователя, сохраняет полученный токен и
// загружает состояние новой сессии.
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	token, err := s.backend.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	if err := s.creds.Set(token); err != nil {
		return err
	}

	s.hydrate(ctx)
	return nil
}

// Logout удаляет токен доступа и сбрасывает корзину и заказы сессии.
func (s *Session) Logout() error {
	err := s.creds.Clear()

	s.mu.Lock()
	s.cart = nil
	s.orders = nil
	s.mu.Unlock()

	return err
}

func (s *Session) hydrate(ctx context.Context) {
	if err := s.FetchCart(ctx); err != nil {
		s.logger.Errorw("hydrate cart after login", "error", err)
	}
	if _, err := s.FetchUserOrders(ctx); err != nil {
		s.logger.Errorw("hydrate orders after login", "error", err)
	}
}
