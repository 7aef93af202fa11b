// ABOUTME: Websocket connection with request/notification routing
// ABOUTME: Read and write pumps plus once/when listener maps keyed by message ID
package realtime

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/gorilla/websocket"
)

// conn wraps one websocket session. Responses are routed by ID: "once"
// listeners answer a single in-flight request and are removed after firing;
// "when" listeners persist and carry live-subscription notifications.
type conn struct {
	ws       *websocket.Conn
	quit     chan struct{}
	quitOnce sync.Once
	send     chan *RPCRequest

	emit struct {
		lock sync.Mutex
		once map[string][]func(*RPCError, []byte)
		when map[string][]func(*RPCError, []byte)
	}

	closedFn func(error)
}

// dial opens a websocket to the sync server.
func dial(url string, onClosed func(error)) (*conn, error) {
	dialer := websocket.DefaultDialer
	dialer.EnableCompression = true

	ws, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	c := &conn{
		ws:       ws,
		quit:     make(chan struct{}),
		send:     make(chan *RPCRequest, 16),
		closedFn: onClosed,
	}
	c.emit.once = make(map[string][]func(*RPCError, []byte))
	c.emit.when = make(map[string][]func(*RPCError, []byte))

	go c.readPump()
	go c.writePump()

	return c, nil
}

func (c *conn) closeQuit() {
	c.quitOnce.Do(func() { close(c.quit) })
}

func (c *conn) close() error {
	c.closeQuit()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteMessage(websocket.CloseMessage, msg)
	return c.ws.Close()
}

// request queues one call for the write pump.
func (c *conn) request(req *RPCRequest) {
	select {
	case c.send <- req:
	case <-c.quit:
	}
}

// once registers a single-shot listener for a response ID.
func (c *conn) once(id string, fn func(*RPCError, []byte)) {
	c.emit.lock.Lock()
	defer c.emit.lock.Unlock()
	c.emit.once[id] = append(c.emit.once[id], fn)
}

// when registers a persistent listener for a response ID.
func (c *conn) when(id string, fn func(*RPCError, []byte)) {
	c.emit.lock.Lock()
	defer c.emit.lock.Unlock()
	c.emit.when[id] = append(c.emit.when[id], fn)
}

// forget removes all persistent listeners for an ID.
func (c *conn) forget(id string) {
	c.emit.lock.Lock()
	defer c.emit.lock.Unlock()
	delete(c.emit.when, id)
}

// done fires the listeners registered for one response ID.
func (c *conn) done(id string, rpcErr *RPCError, result []byte) {
	c.emit.lock.Lock()
	when := append([]func(*RPCError, []byte){}, c.emit.when[id]...)
	once := c.emit.once[id]
	delete(c.emit.once, id)
	c.emit.lock.Unlock()

	for _, fn := range when {
		fn(rpcErr, result)
	}
	for _, fn := range once {
		fn(rpcErr, result)
	}
}

func (c *conn) readPump() {
	for {
		var res RPCResponse
		if err := c.ws.ReadJSON(&res); err != nil {
			select {
			case <-c.quit:
				err = nil
			default:
				c.closeQuit()
			}
			if c.closedFn != nil {
				c.closedFn(err)
			}
			return
		}
		c.done(res.ID, res.Error, res.Result)
	}
}

func (c *conn) writePump() {
	for {
		select {
		case req := <-c.send:
			if err := c.ws.WriteJSON(req); err != nil {
				return
			}
		case <-c.quit:
			return
		}
	}
}

// newRequestID returns a random hex message ID.
func newRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
