package control

import (
	"errors"
	"testing"

	"github.com/mainstaykit/mainstay/event"
)

func TestServer_StopPostsTerminationEvent(t *testing.T) {
	stream := event.NewStream(4)
	endpoint := Endpoint(t.TempDir(), "mainstay-test")

	srv, err := NewServer(endpoint, stream)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer srv.Close()

	resp, err := Send(endpoint, "stop")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp != "ok" {
		t.Errorf("response = %q, want %q", resp, "ok")
	}

	ev := <-stream.Events()
	if ev.Kind != event.KindTerminate {
		t.Errorf("event kind = %v, want %v", ev.Kind, event.KindTerminate)
	}
	if ev.Source != event.SourceControl {
		t.Errorf("event source = %v, want %v", ev.Source, event.SourceControl)
	}
}

func TestServer_PingAnswersWithoutPosting(t *testing.T) {
	stream := event.NewStream(4)
	endpoint := Endpoint(t.TempDir(), "mainstay-test")

	srv, err := NewServer(endpoint, stream)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer srv.Close()

	resp, err := Send(endpoint, "ping")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp != "pong" {
		t.Errorf("response = %q, want %q", resp, "pong")
	}
	if got := stream.Posted(); got != 0 {
		t.Errorf("ping posted %d events, want 0", got)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	stream := event.NewStream(4)
	endpoint := Endpoint(t.TempDir(), "mainstay-test")

	srv, err := NewServer(endpoint, stream)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer srv.Close()

	resp, err := Send(endpoint, "reload")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp != "unknown command" {
		t.Errorf("response = %q, want %q", resp, "unknown command")
	}
	if got := stream.Posted(); got != 0 {
		t.Errorf("unknown command posted %d events, want 0", got)
	}
}

func TestSend_NotReachable(t *testing.T) {
	endpoint := Endpoint(t.TempDir(), "mainstay-test")

	_, err := Send(endpoint, "ping")
	if err == nil {
		t.Fatal("expected error for missing endpoint, got nil")
	}
	if !errors.Is(err, ErrNotReachable) {
		t.Errorf("error = %v, want ErrNotReachable", err)
	}
}

func TestServer_CloseIdempotent(t *testing.T) {
	stream := event.NewStream(4)
	endpoint := Endpoint(t.TempDir(), "mainstay-test")

	srv, err := NewServer(endpoint, stream)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if _, err := Send(endpoint, "ping"); err == nil {
		t.Error("Send succeeded after Close")
	}
}

func TestServer_ReplacesStaleSocket(t *testing.T) {
	stream := event.NewStream(4)
	endpoint := Endpoint(t.TempDir(), "mainstay-test")

	first, err := NewServer(endpoint, stream)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	first.Close()

	// A second instance must be able to claim the same endpoint.
	second, err := NewServer(endpoint, stream)
	if err != nil {
		t.Fatalf("NewServer over stale endpoint: %v", err)
	}
	defer second.Close()

	if resp, err := Send(endpoint, "ping"); err != nil || resp != "pong" {
		t.Errorf("Send = %q, %v, want pong", resp, err)
	}
}
