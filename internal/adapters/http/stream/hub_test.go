package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/attune/internal/domain/model"
)

func dialTestHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", h.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsStateToClient(t *testing.T) {
	h := NewHub()
	conn, done := dialTestHub(t, h)
	defer done()
	waitForClients(t, h, 1)

	h.BroadcastState(model.CognitiveState{
		TS:         500,
		Engagement: model.EngagementEngaged,
		Arousal:    model.ArousalModerate,
		Confidence: 0.7,
	})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got update
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "state" || got.State == nil {
		t.Fatalf("update = %+v", got)
	}
	if got.State.TS != 500 || got.State.Engagement != model.EngagementEngaged {
		t.Errorf("state = %+v", got.State)
	}
}

func TestHubBroadcastsEventPayload(t *testing.T) {
	h := NewHub()
	conn, done := dialTestHub(t, h)
	defer done()
	waitForClients(t, h, 1)

	h.BroadcastEvent(model.SyncedEvent{
		TS:     30,
		Visual: model.VisualSample{TS: 0},
		Audio:  model.AudioSample{TS: 60},
	})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got update
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "event" || got.Event == nil {
		t.Fatalf("update = %+v", got)
	}
	if got.Event.TS != 30 || got.Event.GapMS != 60 {
		t.Errorf("event = %+v", got.Event)
	}
}

func TestHubDropsForSlowClientsWithoutBlocking(t *testing.T) {
	h := NewHub(WithSendBuffer(1))
	_, done := dialTestHub(t, h)
	defer done()
	waitForClients(t, h, 1)

	// Flood well past the send buffer; broadcast must return promptly
	// every time even though the client never reads.
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 100; i++ {
			h.BroadcastState(model.CognitiveState{TS: int64(i)})
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on slow client")
	}
}

func TestHubClientDisconnect(t *testing.T) {
	h := NewHub()
	conn, done := dialTestHub(t, h)
	defer done()
	waitForClients(t, h, 1)

	conn.Close()
	waitForClients(t, h, 0)

	// Broadcasting with no clients is a no-op.
	h.BroadcastState(model.CognitiveState{TS: 1})
}
