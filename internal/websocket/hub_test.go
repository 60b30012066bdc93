package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ikkim/hwawon-backend/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func waitOnline(t *testing.T, hub *Hub, phone string, want bool) {
	require.Eventually(t, func() bool {
		return hub.IsCustomerOnline(phone) == want
	}, time.Second, 5*time.Millisecond)
}

func TestHub_PublishDeliversToCustomerSessions(t *testing.T) {
	hub := startHub(t)

	phone1 := NewClient(hub, nil, "01012345678")
	phone2 := NewClient(hub, nil, "01012345678")
	other := NewClient(hub, nil, "01099998888")
	hub.Register(phone1)
	hub.Register(phone2)
	hub.Register(other)
	waitOnline(t, hub, "01099998888", true)

	ev := events.LedgerEvent{
		Type:          events.LedgerGranted,
		CustomerPhone: "01012345678",
		Code:          "CP-1",
		Amount:        1800,
	}
	require.NoError(t, hub.Publish(context.Background(), ev))

	for _, c := range []*Client{phone1, phone2} {
		select {
		case raw := <-c.Send:
			var got events.LedgerEvent
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, "CP-1", got.Code)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	select {
	case <-other.Send:
		t.Fatal("other customer must not receive the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, "01012345678")
	hub.Register(client)
	waitOnline(t, hub, "01012345678", true)

	hub.Unregister(client)
	waitOnline(t, hub, "01012345678", false)

	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHub_HandleClientMessage_PingAndRateLimit(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, "01012345678")

	hub.HandleClientMessage(client, []byte(`{"type":"ping"}`))
	require.Len(t, client.Send, 1)
	var pong map[string]interface{}
	require.NoError(t, json.Unmarshal(<-client.Send, &pong))
	assert.Equal(t, "pong", pong["type"])

	for i := 0; i < maxMessagesPerSecond+5; i++ {
		hub.HandleClientMessage(client, []byte(`{"type":"ping"}`))
	}
	assert.LessOrEqual(t, len(client.Send), maxMessagesPerSecond)

	// 잘못된 JSON 은 무시
	assert.NotPanics(t, func() {
		hub.HandleClientMessage(NewClient(hub, nil, "01000000000"), []byte("{"))
	})
}
