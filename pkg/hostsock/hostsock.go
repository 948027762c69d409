package hostsock

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"codeberg.org/miketth/vrboard/pkg/keyboard"
	"go.uber.org/zap"
)

const (
	eventBuffer  = 256
	writeTimeout = 50 * time.Millisecond
)

// Server is the overlay host end: it reads pointer events from connected
// clients and sends them frames.
type Server struct {
	listener net.Listener
	events   chan Event
	log      *zap.SugaredLogger

	mu      sync.Mutex
	clients map[net.Conn]struct{}
}

func Listen(path string, log *zap.SugaredLogger) (*Server, error) {
	// a stale socket from a crashed run blocks the bind
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	return &Server{
		listener: listener,
		events:   make(chan Event, eventBuffer),
		log:      log,
		clients:  make(map[net.Conn]struct{}),
	}, nil
}

func (s *Server) Events() <-chan Event {
	return s.events
}

// Serve accepts clients until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.closeClients()
				return ctx.Err()
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.mu.Lock()
		s.clients[conn] = struct{}{}
		count := len(s.clients)
		s.mu.Unlock()
		s.log.Infow("host connected", "clients", count)

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.readLoop(ctx, conn)
		}()
	}
}

func (s *Server) readLoop(ctx context.Context, conn net.Conn) {
	defer s.drop(conn)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			s.log.Warnw("bad host message", "error", err)
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.log.Debugw("host disconnected", "error", err)
	}
}

func (s *Server) drop(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		conn.Close()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		conn.Close()
	}
	clear(s.clients)
}

func (s *Server) broadcast(msg outMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := conn.Write(data); err != nil {
			s.log.Warnw("drop host", "error", err)
			delete(s.clients, conn)
			conn.Close()
		}
	}
	return nil
}

func (s *Server) RenderFrame(frame keyboard.Frame) error {
	return s.broadcast(outMessage{Type: "frame", Keys: frame.Keys, Clock: frame.Clock})
}

func (s *Server) KeyboardChanged() {
	if err := s.broadcast(outMessage{Type: "layout_changed"}); err != nil {
		s.log.Warnw("announce layout change", "error", err)
	}
}

func (s *Server) Close() error {
	return s.listener.Close()
}
