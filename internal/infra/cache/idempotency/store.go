// Package idempotency хранит ответы на запросы с заголовком Idempotency-Key в redis.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "parking:idem:"
	lockSuffix = ":lock"

	// lockTTL сколько держится блокировка ключа, пока первый запрос выполняется
	lockTTL = 30 * time.Second
)

var (
	// ErrNotFound ответа по ключу нет
	ErrNotFound = errors.New("idempotency: response not found")

	// ErrInProgress запрос с тем же ключом еще выполняется
	ErrInProgress = errors.New("idempotency: request in progress")

	// ErrStore ошибка redis
	ErrStore = errors.New("idempotency: store error")
)

// Response сохраненный HTTP ответ
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Store хранилище ответов
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore создает хранилище
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Get возвращает сохраненный ответ
func (s *Store) Get(ctx context.Context, key string) (*Response, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrStore, err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrStore, err)
	}
	return &resp, nil
}

// Lock захватывает ключ на время выполнения первого запроса
func (s *Store) Lock(ctx context.Context, key string) error {
	ok, err := s.client.SetNX(ctx, keyPrefix+key+lockSuffix, 1, lockTTL).Result()
	if err != nil {
		return fmt.Errorf("%w: lock: %v", ErrStore, err)
	}
	if !ok {
		return ErrInProgress
	}
	return nil
}

// Unlock освобождает ключ
func (s *Store) Unlock(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key+lockSuffix).Err(); err != nil {
		return fmt.Errorf("%w: unlock: %v", ErrStore, err)
	}
	return nil
}

// Save сохраняет ответ на ttl
func (s *Store) Save(ctx context.Context, key string, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStore, err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrStore, err)
	}
	return nil
}
