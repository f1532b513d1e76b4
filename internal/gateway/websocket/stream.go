package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bitsnaps/open-creator/internal/interpreter"
	"github.com/bitsnaps/open-creator/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 1024 * 1024 // 1MB
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Executor runs source against a named session while mirroring captured
// output to a writer. session.Manager satisfies it.
type Executor interface {
	ExecuteWithSink(ctx context.Context, session, source string, w io.Writer) (interpreter.Result, error)
}

// conn is one streaming connection bound to a session.
type conn struct {
	ws      *websocket.Conn
	exec    Executor
	session string

	// send carries marshaled frames to the write pump. Output frames
	// are dropped when it is full so a slow client can never stall the
	// interpreter; result and error frames always go through.
	send chan []byte

	// done closes when the read loop exits; it releases the write pump
	// and any execution goroutine blocked on send.
	done chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	// runMu serializes submissions from this connection so frames of
	// different submissions never interleave on the wire.
	runMu sync.Mutex
}

// ServeStream upgrades the request and pumps execution frames for the
// named session until the client disconnects. Disconnecting interrupts
// an in-flight execution.
func ServeStream(exec Executor, session string, w http.ResponseWriter, r *http.Request) {
	if exec == nil {
		http.Error(w, "execution backend not available", http.StatusServiceUnavailable)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	// The request context ends when this handler returns, so the
	// connection carries its own.
	ctx, cancel := context.WithCancel(context.Background())

	c := &conn{
		ws:      ws,
		exec:    exec,
		session: session,
		send:    make(chan []byte, 256),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	go c.writePump()
	c.readPump()
}

// readPump pumps frames from the WebSocket connection.
func (c *conn) readPump() {
	defer func() {
		c.cancel()
		close(c.done)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Error().Err(err).Str("session", c.session).Msg("WebSocket read error")
			}
			return
		}

		c.handleMessage(message)
	}
}

// handleMessage processes one incoming frame.
func (c *conn) handleMessage(message []byte) {
	var frame Frame
	if err := json.Unmarshal(message, &frame); err != nil {
		logger.Debug().Err(err).Str("session", c.session).Msg("Failed to parse stream frame")
		c.sendError("failed to parse frame")
		return
	}

	switch frame.Type {
	case TypePing:
		c.enqueue(Frame{Type: TypePong})

	case TypeExecute, "":
		if frame.Code == "" {
			c.sendError("code is required")
			return
		}
		// Execute off the read loop so pings keep flowing during long
		// runs. runMu keeps submissions ordered.
		go c.execute(frame.Code)

	default:
		c.sendError("unknown frame type: " + frame.Type)
	}
}

// execute runs one submission and sends its result frame.
func (c *conn) execute(source string) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	result, err := c.exec.ExecuteWithSink(c.ctx, c.session, source, &frameWriter{c: c})
	if err != nil && result.Status == "" {
		// Infrastructure failure; execution faults arrive inside result.
		c.sendError(err.Error())
		return
	}

	c.enqueue(Frame{Type: TypeResult, Result: &result})
}

// writePump pumps frames to the WebSocket connection.
func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// enqueue marshals a frame and queues it, waiting until the write pump
// accepts it or the connection ends.
func (c *conn) enqueue(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	}
}

// sendError queues an error frame.
func (c *conn) sendError(message string) {
	c.enqueue(Frame{Type: TypeError, Message: message})
}

// frameWriter adapts the connection into the interpreter's output sink.
// Writes happen on the interpreter worker goroutine, so chunks are
// dropped rather than queued when the client cannot keep up.
type frameWriter struct {
	c *conn
}

func (fw *frameWriter) Write(p []byte) (int, error) {
	frame := Frame{Type: TypeOutput, Data: string(p)}
	data, err := json.Marshal(frame)
	if err != nil {
		return len(p), nil
	}
	select {
	case fw.c.send <- data:
	default:
		// Buffer full; the result frame still carries the full output.
	}
	return len(p), nil
}
