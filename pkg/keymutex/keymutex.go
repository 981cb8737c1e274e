// Package keymutex - мьютекс на ключ: операции с одним ключом идут по очереди,
// с разными ключами - параллельно.
package keymutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyMutex набор мьютексов по ключу. Неиспользуемые записи удаляются.
type KeyMutex[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

// New создает KeyMutex
func New[K comparable]() *KeyMutex[K] {
	return &KeyMutex[K]{entries: make(map[K]*entry)}
}

// Lock блокирует ключ и возвращает функцию разблокировки
func (k *KeyMutex[K]) Lock(key K) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// Len количество ключей, удерживаемых или ожидающих блокировки
func (k *KeyMutex[K]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
