package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika/satellite/internal/metrics"
	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

const waitFor = 2 * time.Second

func startServer(t *testing.T) (*Server, <-chan protocol.Message) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	s := NewServer(logger, metrics.NewCollector(logger))
	inbound, err := s.Start(context.Background(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, inbound
}

func dial(t *testing.T, s *Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnected(t *testing.T, s *Server, want bool) {
	t.Helper()
	require.Eventually(t, func() bool { return s.IsConnected() == want }, waitFor, 5*time.Millisecond)
}

func receive(t *testing.T, inbound <-chan protocol.Message) protocol.Message {
	t.Helper()
	select {
	case msg := <-inbound:
		return msg
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for inbound message")
		return nil
	}
}

func TestServerDeliversInboundMessages(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, inbound := startServer(t)
	conn := dial(t, s)

	require.NoError(t, protocol.WriteFrame(conn, protocol.HelloRequest{ClientInfo: "test"}))
	require.NoError(t, protocol.WriteFrame(conn, protocol.PingRequest{}))

	assert.Equal(t, protocol.HelloRequest{ClientInfo: "test"}, receive(t, inbound))
	assert.Equal(t, protocol.PingRequest{}, receive(t, inbound))

	require.NoError(t, s.Close())
}

func TestServerSendsFrames(t *testing.T) {
	s, _ := startServer(t)
	conn := dial(t, s)
	waitConnected(t, s, true)

	s.Send(protocol.PingResponse{})

	conn.SetReadDeadline(time.Now().Add(waitFor))
	msg, err := protocol.ReadFrame(bufio.NewReader(conn))
	require.NoError(t, err)
	assert.Equal(t, protocol.PingResponse{}, msg)
}

func TestSendWithoutClientIsNoop(t *testing.T) {
	s, _ := startServer(t)

	assert.NotPanics(t, func() { s.Send(protocol.PingResponse{}) })
	assert.False(t, s.IsConnected())
}

func TestSecondClientReplacesFirst(t *testing.T) {
	s, inbound := startServer(t)

	first := dial(t, s)
	require.NoError(t, protocol.WriteFrame(first, protocol.PingRequest{}))
	receive(t, inbound)

	second := dial(t, s)
	require.NoError(t, protocol.WriteFrame(second, protocol.HelloRequest{ClientInfo: "second"}))
	assert.Equal(t, protocol.HelloRequest{ClientInfo: "second"}, receive(t, inbound))

	// the first connection was closed by the server
	first.SetReadDeadline(time.Now().Add(waitFor))
	_, err := first.Read(make([]byte, 1))
	require.Error(t, err)
	assert.True(t, s.IsConnected())

	// frames go to the new client only
	s.Send(protocol.PingResponse{})
	second.SetReadDeadline(time.Now().Add(waitFor))
	msg, err := protocol.ReadFrame(bufio.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, protocol.PingResponse{}, msg)
}

func TestBadFrameDropsConnectionButKeepsListening(t *testing.T) {
	s, inbound := startServer(t)

	bad := dial(t, s)
	waitConnected(t, s, true)
	_, err := bad.Write([]byte{0x42, 0x00, 0x07})
	require.NoError(t, err)

	bad.SetReadDeadline(time.Now().Add(waitFor))
	_, err = bad.Read(make([]byte, 1))
	require.Error(t, err)
	waitConnected(t, s, false)

	good := dial(t, s)
	require.NoError(t, protocol.WriteFrame(good, protocol.PingRequest{}))
	assert.Equal(t, protocol.PingRequest{}, receive(t, inbound))
}

func TestDisconnectFlushesQueuedFrames(t *testing.T) {
	s, _ := startServer(t)
	conn := dial(t, s)
	waitConnected(t, s, true)

	s.Send(protocol.DisconnectResponse{})
	s.Disconnect()

	conn.SetReadDeadline(time.Now().Add(waitFor))
	r := bufio.NewReader(conn)
	msg, err := protocol.ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, protocol.DisconnectResponse{}, msg)

	_, err = protocol.ReadFrame(r)
	require.Error(t, err)
	waitConnected(t, s, false)
}

func TestConnectedSubscription(t *testing.T) {
	s, _ := startServer(t)
	states, cancel := s.Connected()
	defer cancel()

	assert.False(t, <-states)

	conn := dial(t, s)
	select {
	case connected := <-states:
		assert.True(t, connected)
	case <-time.After(waitFor):
		t.Fatal("no connection notification")
	}

	conn.Close()
	select {
	case connected := <-states:
		assert.False(t, connected)
	case <-time.After(waitFor):
		t.Fatal("no disconnection notification")
	}
}

func TestStartTwice(t *testing.T) {
	s, _ := startServer(t)

	_, err := s.Start(context.Background(), 0)
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestContextCancelClosesInbound(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer(zaptest.NewLogger(t), nil)
	inbound, err := s.Start(ctx, 0)
	require.NoError(t, err)
	dial(t, s)
	waitConnected(t, s, true)

	cancel()

	select {
	case _, ok := <-inbound:
		assert.False(t, ok)
	case <-time.After(waitFor):
		t.Fatal("inbound stream not closed")
	}
	assert.False(t, s.IsConnected())
}
