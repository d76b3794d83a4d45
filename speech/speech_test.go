package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeVosk upgrades the connection and speaks the vosk-server protocol:
// partial results while audio streams, a final text after the EOF frame.
func fakeVosk(t *testing.T, finalText string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			kind, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind == websocket.BinaryMessage {
				_ = conn.WriteJSON(map[string]string{"partial": "..."})
				continue
			}
			var frame map[string]json.RawMessage
			if json.Unmarshal(msg, &frame) == nil {
				if _, ok := frame["eof"]; ok {
					_ = conn.WriteJSON(map[string]string{"text": finalText})
					return
				}
			}
			// Config frame: no reply expected.
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestRecognize(t *testing.T) {
	srv := fakeVosk(t, "我最近很难过")
	defer srv.Close()

	rec, err := Dial(context.Background(), Config{ServerURL: wsURL(srv)})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer rec.Close()

	audio := bytes.NewReader(make([]byte, chunkSize*2+100))
	text, err := rec.Recognize(context.Background(), audio)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if text != "我最近很难过" {
		t.Errorf("recognized %q, want final text", text)
	}
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), Config{
		ServerURL:        "ws://127.0.0.1:1", // nothing listens here
		HandshakeTimeout: 200 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected dial error for an unreachable server")
	}
}
