package websocket_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	gorilla "github.com/gorilla/websocket"
	ws "github.com/tikulab/tiku-backend/internal/websocket"
)

// Two goroutines share one connection, mirroring the session stream
// where the event forwarder and the reader's replies interleave. The
// wrapper must serialize the writes; gorilla panics on concurrent ones.
func TestConnConcurrentWrites(t *testing.T) {
	const perWriter = 50

	upgrader := gorilla.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conn := ws.NewConn(raw)
		defer conn.Close()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := conn.WriteTyped(ws.StreamPayload{Event: ws.EventTick, TimeRemaining: i}); err != nil {
					t.Errorf("tick write: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := conn.WriteTyped(ws.PongResponse{Event: ws.EventPong}); err != nil {
					t.Errorf("pong write: %v", err)
					return
				}
			}
		}()
		wg.Wait()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	ticks, pongs := 0, 0
	for i := 0; i < 2*perWriter; i++ {
		var msg struct {
			Event ws.Event `json:"event"`
		}
		if err := client.ReadJSON(&msg); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		switch msg.Event {
		case ws.EventTick:
			ticks++
		case ws.EventPong:
			pongs++
		default:
			t.Fatalf("unexpected event %q", msg.Event)
		}
	}
	if ticks != perWriter || pongs != perWriter {
		t.Errorf("got %d ticks and %d pongs, want %d each", ticks, pongs, perWriter)
	}
}
