package websocket_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dom/pokedex/internal/domain"
	"github.com/dom/pokedex/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*websocket.Hub, string) {
	t.Helper()

	hub := websocket.NewHub(zap.NewNop())
	go hub.Run()

	upgrader := gorillaWS.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := websocket.NewClient(hub, conn)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))

	t.Cleanup(func() {
		hub.Stop()
		server.Close()
	})

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *gorillaWS.Conn {
	t.Helper()
	conn, _, err := gorillaWS.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *gorillaWS.Conn) websocket.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg websocket.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_ConnectedGreeting(t *testing.T) {
	_, url := startHub(t)
	conn := dial(t, url)

	msg := readMessage(t, conn)
	assert.Equal(t, websocket.MessageTypeConnected, msg.Type)

	var payload websocket.ConnectedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.NotEmpty(t, payload.ClientID)
}

func TestHub_BroadcastsEventsInOrder(t *testing.T) {
	hub, url := startHub(t)
	first := dial(t, url)
	second := dial(t, url)
	readMessage(t, first)
	readMessage(t, second)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	entry := domain.Entry{ID: "abc", Name: "Custom", Origin: domain.OriginUserCreated}
	hub.Publish(domain.Event{Type: domain.EventEntryUpdated, ID: "abc", Entry: &entry})
	hub.Publish(domain.Event{Type: domain.EventEntryRolledBack, ID: "abc", Error: "mutation failed"})

	for _, conn := range []*gorillaWS.Conn{first, second} {
		updated := readMessage(t, conn)
		assert.Equal(t, websocket.MessageTypeEntryUpdated, updated.Type)

		var event domain.Event
		require.NoError(t, json.Unmarshal(updated.Payload, &event))
		assert.Equal(t, "abc", event.ID)
		require.NotNil(t, event.Entry)
		assert.Equal(t, "Custom", event.Entry.Name)

		rolledBack := readMessage(t, conn)
		assert.Equal(t, websocket.MessageTypeEntryRolledBack, rolledBack.Type)
		assert.Greater(t, rolledBack.Seq, updated.Seq)
	}
}

func TestHub_UnregistersClosedClient(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	readMessage(t, conn)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClientsAndDropsPublish(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	readMessage(t, conn)

	hub.Stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	done := make(chan struct{})
	go func() {
		hub.Publish(domain.Event{Type: domain.EventEntryDeleted, ID: "abc"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked after Stop")
	}
	assert.Equal(t, 0, hub.ClientCount())
}
