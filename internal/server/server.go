// Package server accepts the hub's native API connection. Only one client is
// served at a time: a new connection replaces the previous one.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/internal/broadcast"
	"github.com/satriahrh/arunika/satellite/internal/metrics"
	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

// DefaultPort is the ESPHome native API port.
const DefaultPort = 6053

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Frames queued per client before Send blocks.
	sendBuffer = 256

	// Pause after a failed Accept before retrying.
	acceptBackoff = 100 * time.Millisecond
)

var ErrAlreadyStarted = errors.New("server: already started")

// Server is the wire session towards the hub.
type Server struct {
	logger  *zap.Logger
	metrics *metrics.Collector

	mu       sync.Mutex
	started  bool
	listener net.Listener
	client   *client

	inbound   chan protocol.Message
	connected *broadcast.Value[bool]

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// client is one accepted connection with its own write queue.
type client struct {
	id   string
	conn net.Conn

	// A nil frame asks the write pump to close after flushing.
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

// NewServer creates a server. collector may be nil.
func NewServer(logger *zap.Logger, collector *metrics.Collector) *Server {
	return &Server{
		logger:    logger.With(zap.String("component", "server")),
		metrics:   collector,
		inbound:   make(chan protocol.Message),
		connected: broadcast.NewValue(false),
		done:      make(chan struct{}),
	}
}

// Start binds port and runs the accept loop until ctx is cancelled or Close
// is called. It returns the stream of inbound messages, which is closed once
// the server has fully stopped. Start may only be called once.
func (s *Server) Start(ctx context.Context, port int) (<-chan protocol.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.logger.Warn("Server already started, ignoring second start", zap.Int("port", port))
		return nil, ErrAlreadyStarted
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	s.started = true
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop(ln)

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	s.logger.Info("Listening for hub connections", zap.String("addr", ln.Addr().String()))
	return s.inbound, nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Send frames msg and queues it for the connected client. It is a no-op when
// no client is connected.
func (s *Server) Send(msg protocol.Message) {
	s.mu.Lock()
	c := s.client
	s.mu.Unlock()
	if c == nil {
		return
	}

	frame := protocol.Marshal(msg)
	select {
	case c.send <- frame:
		s.metrics.MessageSent(msg.Type().String())
	case <-c.done:
	}
}

// Disconnect closes the current client after its queued frames were written.
func (s *Server) Disconnect() {
	s.mu.Lock()
	c := s.client
	s.mu.Unlock()
	if c == nil {
		return
	}

	select {
	case c.send <- nil:
	case <-c.done:
	}
}

// Connected returns a latest-value subscription to the connection flag.
func (s *Server) Connected() (<-chan bool, func()) {
	return s.connected.Subscribe()
}

func (s *Server) IsConnected() bool {
	return s.connected.Get()
}

// Close stops accepting, drops the current client and waits for all
// connection goroutines to exit.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		if s.listener != nil {
			err = s.listener.Close()
		}
		c := s.client
		s.mu.Unlock()
		if c != nil {
			c.close()
		}

		s.wg.Wait()
		close(s.inbound)
		s.logger.Info("Server stopped")
	})
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("Accept failed", zap.Error(err))
			select {
			case <-time.After(acceptBackoff):
			case <-s.done:
				return
			}
			continue
		}
		s.register(conn)
	}
}

// register makes conn the current client, closing the previous one first.
func (s *Server) register(conn net.Conn) {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		conn.Close()
		return
	default:
	}
	old := s.client
	if old != nil {
		old.close()
	}
	s.client = c
	s.connected.Set(true)
	s.mu.Unlock()

	if old != nil {
		s.logger.Info("Replacing hub connection",
			zap.String("old_client", old.id),
			zap.String("client", c.id))
	}
	s.logger.Info("Hub connected",
		zap.String("client", c.id),
		zap.String("remote", conn.RemoteAddr().String()))
	s.metrics.ConnectionAccepted()
	s.metrics.SetConnected(true)

	s.wg.Add(2)
	go s.writePump(c)
	go s.readPump(c)
}

// unregister forgets c if it is still the current client.
func (s *Server) unregister(c *client) {
	c.close()

	s.mu.Lock()
	current := s.client == c
	if current {
		s.client = nil
		s.connected.Set(false)
	}
	s.mu.Unlock()

	if current {
		s.metrics.SetConnected(false)
		s.logger.Info("Hub disconnected", zap.String("client", c.id))
	}
}

// readPump decodes frames from the connection into the inbound stream.
func (s *Server) readPump(c *client) {
	defer s.wg.Done()
	defer s.unregister(c)

	r := bufio.NewReader(c.conn)
	for {
		msg, err := protocol.ReadFrame(r)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			default:
				select {
				case <-c.done:
				default:
					s.metrics.ProtocolError()
					s.logger.Warn("Dropping hub connection",
						zap.String("client", c.id),
						zap.Error(err))
				}
			}
			return
		}

		s.metrics.MessageReceived(msg.Type().String())
		select {
		case s.inbound <- msg:
		case <-c.done:
			return
		case <-s.done:
			return
		}
	}
}

// writePump writes queued frames to the connection.
func (s *Server) writePump(c *client) {
	defer s.wg.Done()

	for {
		select {
		case frame := <-c.send:
			if frame == nil {
				c.close()
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if _, err := c.conn.Write(frame); err != nil {
				s.logger.Warn("Failed to write frame",
					zap.String("client", c.id),
					zap.Error(err))
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
