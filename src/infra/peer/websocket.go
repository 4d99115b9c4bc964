package peer

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrChannelClosed is returned by Send after the connection went away.
var ErrChannelClosed = errors.New("peer channel closed")

const sendQueueSize = 64

// wsChannel adapts a websocket connection to the Channel contract: one
// reader goroutine dispatching callbacks, one writer goroutine draining the
// send queue so Send never blocks the event loop.
type wsChannel struct {
	conn   *websocket.Conn
	logger *zap.Logger
	cb     Callbacks

	sendCh chan []byte

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewWebsocketChannel wraps an established websocket connection and starts
// its pump goroutines. The connect callback fires immediately: by the time a
// websocket handshake finished the channel is usable.
func NewWebsocketChannel(conn *websocket.Conn, cb Callbacks, logger *zap.Logger) Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	ch := &wsChannel{
		conn:   conn,
		logger: logger,
		cb:     cb,
		sendCh: make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
	go ch.writePump()
	go ch.readPump()
	if cb.OnConnect != nil {
		cb.OnConnect()
	}
	return ch
}

// Dial connects to a remote sync endpoint as the client side.
func Dial(url string, cb Callbacks, logger *zap.Logger) (Channel, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return NewWebsocketChannel(conn, cb, logger), nil
}

// Upgrader accepts inbound sync connections on the server side.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Accept upgrades an HTTP request into a peer channel.
func Accept(w http.ResponseWriter, r *http.Request, cb Callbacks, logger *zap.Logger) (Channel, error) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewWebsocketChannel(conn, cb, logger), nil
}

func (c *wsChannel) Send(data []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrChannelClosed
	}
	select {
	case c.sendCh <- data:
		return nil
	case <-c.done:
		return ErrChannelClosed
	}
}

func (c *wsChannel) Close() error {
	return c.teardown(nil)
}

func (c *wsChannel) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			_ = c.teardown(err)
			return
		}
		if c.cb.OnData != nil {
			c.cb.OnData(data)
		}
	}
}

func (c *wsChannel) writePump() {
	for {
		select {
		case data := <-c.sendCh:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.teardown(err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// teardown closes the connection once and fires the error and close
// callbacks. A normal websocket close counts as a plain close, not an error.
func (c *wsChannel) teardown(err error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	closeErr := c.conn.Close()
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.logger.Warn("peer channel failed", zap.Error(err))
		if c.cb.OnError != nil {
			c.cb.OnError(err)
		}
	}
	if c.cb.OnClose != nil {
		c.cb.OnClose()
	}
	return closeErr
}
