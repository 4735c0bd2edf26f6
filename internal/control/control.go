// Package control implements the local control endpoint: a narrow line
// protocol over a unix domain socket (named pipe on Windows) that lets a
// sibling process ask a running instance to stop or answer a liveness
// probe. It is not a general-purpose IPC surface; the only commands are
// "stop" and "ping".
package control

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/mainstaykit/mainstay/event"
)

// ErrNotReachable indicates that no instance is listening on the control
// endpoint.
var ErrNotReachable = errors.New("control endpoint not reachable")

// connTimeout bounds a single control exchange on both ends.
const connTimeout = 5 * time.Second

// Poster receives the termination events the endpoint translates stop
// requests into. Satisfied by both event.Stream and the entry runtime.
type Poster interface {
	Post(kind event.Kind, source event.Source) bool
}

// ///////////////////////////////////////////////
// Server
// ///////////////////////////////////////////////

// Server accepts control connections and posts termination events for
// stop requests.
type Server struct {
	ln     net.Listener
	events Poster

	done      chan struct{}
	closeOnce sync.Once
}

// NewServer starts a control endpoint listening on endpoint and serving
// in a background goroutine. On unix endpoint is a socket path, on
// Windows a pipe name; use [Endpoint] to build it.
func NewServer(endpoint string, events Poster) (*Server, error) {
	ln, err := listen(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to open control endpoint: %w", err)
	}
	s := &Server{
		ln:     ln,
		events: events,
		done:   make(chan struct{}),
	}
	go s.serve()
	slog.Info("control endpoint listening", "endpoint", endpoint)
	return s, nil
}

// Close stops accepting control connections. Safe to call more than once.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.ln.Close()
	})
	return err
}

func (s *Server) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.done:
			default:
				if !errors.Is(err, net.ErrClosed) {
					slog.Warn("control endpoint accept failed", "error", err)
				}
			}
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		slog.Warn("control connection read failed", "error", err)
		return
	}

	switch strings.TrimSpace(line) {
	case "stop":
		s.events.Post(event.KindTerminate, event.SourceControl)
		fmt.Fprintln(conn, "ok")
	case "ping":
		fmt.Fprintln(conn, "pong")
	default:
		fmt.Fprintln(conn, "unknown command")
	}
}

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

// Send connects to the control endpoint, sends one command, and returns
// the trimmed response line. Returns ErrNotReachable (wrapped) when
// nothing is listening.
func Send(endpoint, command string) (string, error) {
	conn, err := dial(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotReachable, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	if _, err := fmt.Fprintln(conn, command); err != nil {
		return "", fmt.Errorf("failed to send control command: %w", err)
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read control response: %w", err)
	}
	return strings.TrimSpace(resp), nil
}
