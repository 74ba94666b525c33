package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
)

func httpHandler(hub *Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Subscribe(w, r)
	})
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(nil)
	defer server.Close()
	server.Config.Handler = httpHandler(hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Broadcast(Event{ExecutionID: "exec-1", Message: "loop done"}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), "loop done")
	assert.Contains(t, string(payload), "exec-1")
}

func TestRegisterExposesBroadcastToScripts(t *testing.T) {
	hub := NewHub()
	reg := registry.New()
	hub.Register(reg, "notify", "exec-7")

	fn, ok := reg.FindFunction("", "notify", "broadcast")
	require.True(t, ok)

	result, err := fn.Call(registry.NewArgIter([]value.Value{value.Str("progress: 50%")}))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Bool(true), result))
}
