package ethereum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestHeadSubscriber_SubscribesOnConnect(t *testing.T) {
	subscribed := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			t.Errorf("unmarshal subscribe request: %v", err)
			return
		}
		subscribed <- req.Method

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	sub, err := NewHeadSubscriber(context.Background(), wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewHeadSubscriber: %v", err)
	}
	defer sub.Close()

	select {
	case method := <-subscribed:
		if method != "eth_subscribe" {
			t.Errorf("expected eth_subscribe, got %s", method)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no subscribe request received")
	}
}

func TestHeadSubscriber_SignalsOnNewHead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Consume the subscribe request, confirm it, then push heads.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.WriteJSON(map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": "0xsub1"})

		notification := map[string]interface{}{
			"jsonrpc": "2.0",
			"method":  "eth_subscription",
			"params": map[string]interface{}{
				"subscription": "0xsub1",
				"result":       map[string]interface{}{"number": "0x10"},
			},
		}
		conn.WriteJSON(notification)
		conn.WriteJSON(notification)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	sub, err := NewHeadSubscriber(context.Background(), wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewHeadSubscriber: %v", err)
	}
	defer sub.Close()

	select {
	case <-sub.Heads():
	case <-time.After(2 * time.Second):
		t.Fatal("no head signal received")
	}
}

func TestHeadSubscriber_CoalescesSignals(t *testing.T) {
	ready := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}

		notification := map[string]interface{}{
			"jsonrpc": "2.0",
			"method":  "eth_subscription",
			"params":  map[string]interface{}{"subscription": "0xsub1"},
		}
		for i := 0; i < 5; i++ {
			conn.WriteJSON(notification)
		}
		close(ready)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	sub, err := NewHeadSubscriber(context.Background(), wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewHeadSubscriber: %v", err)
	}
	defer sub.Close()

	<-ready
	// Give the read loop a moment to drain the burst.
	time.Sleep(100 * time.Millisecond)

	select {
	case <-sub.Heads():
	default:
		t.Fatal("expected one pending signal")
	}
	select {
	case <-sub.Heads():
		t.Error("burst must coalesce to a single pending signal")
	default:
	}
}

func TestHeadSubscriber_CloseIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	sub, err := NewHeadSubscriber(context.Background(), wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewHeadSubscriber: %v", err)
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
