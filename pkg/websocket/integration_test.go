package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
)

// These tests exercise the client against a real, independent server
// implementation (gorilla/websocket) rather than hand-built byte fixtures,
// to catch interop bugs a self-consistent pair of client/server fixtures
// could hide.

func TestIntegrationEchoTextMessage(t *testing.T) {
	upgrader := gorillaws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("server upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.WriteMessage(gorillaws.TextMessage, data)
	}))
	defer srv.Close()

	uri := "ws://" + strings.TrimPrefix(srv.URL, "http://") + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := Connect(ctx, uri, Config{})
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer conn.Close()

	if err := conn.SendText([]byte("hello")); err != nil {
		t.Fatalf("SendText() error: %v", err)
	}

	var msg Message
	deadline := time.Now().Add(2 * time.Second)
	for {
		err := conn.Recv(&msg, 200*time.Millisecond)
		if err == nil {
			break
		}
		if werr, ok := err.(*Error); ok && (werr.Kind == ErrNotReady || werr.Kind == ErrTimeout) {
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for echo")
			}
			continue
		}
		t.Fatalf("Recv() error: %v", err)
	}
	if msg.Type != Text || string(msg.Payload) != "hello" {
		t.Errorf("Recv() = %+v, want text \"hello\"", msg)
	}
	conn.ReleasePayload()
}

func TestIntegrationServerClosesConnection(t *testing.T) {
	upgrader := gorillaws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(gorillaws.CloseMessage, gorillaws.FormatCloseMessage(gorillaws.CloseNormalClosure, "bye"))
	}))
	defer srv.Close()

	uri := "ws://" + strings.TrimPrefix(srv.URL, "http://") + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := Connect(ctx, uri, Config{})
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer conn.Close()

	var msg Message
	var recvErr error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		recvErr = conn.Recv(&msg, 200*time.Millisecond)
		if werr, ok := recvErr.(*Error); ok && werr.Kind == ErrClosed {
			break
		}
	}
	werr, ok := recvErr.(*Error)
	if !ok || werr.Kind != ErrClosed {
		t.Fatalf("Recv() = %v, want ErrClosed", recvErr)
	}
	if conn.State() != StateClosed {
		t.Errorf("State() = %v, want StateClosed", conn.State())
	}
}
