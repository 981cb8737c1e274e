package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()

	hub := NewHub(nopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	return hub, cancel
}

// drain читает канал до закрытия и возвращает прочитанное
func drain(t *testing.T, ch <-chan []byte) [][]byte {
	t.Helper()

	var got [][]byte
	timeout := time.After(time.Second)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, msg)
		case <-timeout:
			t.Fatalf("channel was not closed, read %d messages", len(got))
			return nil
		}
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub, _ := startHub(t)
	ctx := context.Background()

	first, second := NewClient(), NewClient()
	hub.Register(ctx, first)
	hub.Register(ctx, second)

	require.True(t, hub.Broadcast([]byte("event-1")))

	for _, client := range []*Client{first, second} {
		select {
		case msg := <-client.Send():
			assert.Equal(t, []byte("event-1"), msg)
		case <-time.After(time.Second):
			t.Fatal("message was not delivered")
		}
	}
	assert.Equal(t, 2, hub.ClientCount())
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub, _ := startHub(t)

	slow := NewClient()
	hub.Register(context.Background(), slow)

	// клиент ничего не читает: одно сообщение сверх буфера
	for i := 0; i <= clientBuffer; i++ {
		require.True(t, hub.Broadcast([]byte(fmt.Sprintf("event-%d", i))))
	}

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	// уже поставленные в очередь сообщения остаются доступны до закрытия канала
	msgs := drain(t, slow.Send())
	require.Len(t, msgs, clientBuffer)
	assert.Equal(t, []byte("event-0"), msgs[0])
	assert.Equal(t, []byte(fmt.Sprintf("event-%d", clientBuffer-1)), msgs[clientBuffer-1])
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub, _ := startHub(t)
	ctx := context.Background()

	client := NewClient()
	hub.Register(ctx, client)
	hub.Unregister(ctx, client)

	assert.Empty(t, drain(t, client.Send()))
	assert.Zero(t, hub.ClientCount())

	// повторное отключение не паникует на закрытом канале
	hub.Unregister(ctx, client)
}

func TestHub_ShutdownDisconnectsClients(t *testing.T) {
	hub, cancel := startHub(t)
	ctx := context.Background()

	first, second := NewClient(), NewClient()
	hub.Register(ctx, first)
	hub.Register(ctx, second)

	cancel()

	assert.Empty(t, drain(t, first.Send()))
	assert.Empty(t, drain(t, second.Send()))

	require.Eventually(t, func() bool {
		select {
		case <-hub.done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, hub.ClientCount())

	// после остановки хаба регистрация сразу закрывает канал клиента
	late := NewClient()
	hub.Register(ctx, late)
	assert.Empty(t, drain(t, late.Send()))

	// и отключение не блокируется
	hub.Unregister(ctx, late)
}
