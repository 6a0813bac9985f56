// Package credential хранит токен доступа пользователя между запусками клиента.
package credential

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Store хранит токен доступа в памяти и в файле на диске.
// Отсутствие токена означает гостевую сессию.
type Store struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewStore создаёт хранилище токена и загружает ранее сохранённое значение.
func NewStore(path string) *Store {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err == nil {
		s.token = strings.TrimSpace(string(data))
	}

	return s
}

// Get возвращает токен доступа и признак его наличия.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set сохраняет токен доступа в памяти и на диске.
func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	s.token = token
	return nil
}

// Clear удаляет токен доступа из памяти и с диска.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}

	return nil
}
