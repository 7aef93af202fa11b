// ABOUTME: Realtime sync backend adapter over the websocket JSON-RPC protocol
// ABOUTME: Save/update/get/delete plus live path subscriptions with connection-state tracking
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	stdsync "sync"
	"time"

	"github.com/harperreed/rigsync/sync"
)

// State of the server connection.
type State int

const (
	Offline State = iota
	Connecting
	Online
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Online:
		return "online"
	default:
		return "offline"
	}
}

// Adapter wraps the realtime key-tree store. Writes require an authenticated
// session; reads are allowed without one. Network loss surfaces as a state
// transition to Offline, and in-flight writes fail with sync.ErrNetwork;
// the adapter never retries on its own.
type Adapter struct {
	url      string
	token    string
	deviceID string

	mu           stdsync.Mutex
	conn         *conn
	state        State
	authed       bool
	lastSyncTime time.Time
	subs         map[string]string // path -> live subscription ID
	stateSubs    []chan State
}

// NewAdapter creates an adapter for the given server. An empty token means
// read-only access.
func NewAdapter(url, token, deviceID string) *Adapter {
	return &Adapter{
		url:      url,
		token:    token,
		deviceID: deviceID,
		subs:     make(map[string]string),
	}
}

// Connect establishes the session. With a token configured it authenticates
// before returning, so the first push cannot race the session setup.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.conn != nil {
		a.mu.Unlock()
		return nil
	}
	a.setStateLocked(Connecting)
	a.mu.Unlock()

	c, err := dial(a.url, a.onConnClosed)
	if err != nil {
		a.mu.Lock()
		a.setStateLocked(Offline)
		a.mu.Unlock()
		return fmt.Errorf("%w: %v", sync.ErrNetwork, err)
	}

	a.mu.Lock()
	a.conn = c
	a.setStateLocked(Online)
	a.mu.Unlock()

	if a.token != "" {
		if _, err := a.call(ctx, "authenticate", a.token, a.deviceID); err != nil {
			a.Disconnect()
			return fmt.Errorf("failed to authenticate: %w", err)
		}
		a.mu.Lock()
		a.authed = true
		a.mu.Unlock()
	}
	return nil
}

// Disconnect tears down the session. Listener registrations are dropped.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	c := a.conn
	a.conn = nil
	a.authed = false
	a.subs = make(map[string]string)
	a.setStateLocked(Offline)
	a.mu.Unlock()

	if c != nil {
		_ = c.close()
	}
}

func (a *Adapter) onConnClosed(err error) {
	if err != nil {
		log.Printf("realtime: connection lost: %v", err)
	}
	a.mu.Lock()
	a.conn = nil
	a.authed = false
	a.setStateLocked(Offline)
	a.mu.Unlock()
}

// State returns the current connection state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// StateChanges returns a channel receiving every connection-state
// transition. The channel is buffered; slow readers drop transitions.
func (a *Adapter) StateChanges() <-chan State {
	ch := make(chan State, 8)
	a.mu.Lock()
	a.stateSubs = append(a.stateSubs, ch)
	a.mu.Unlock()
	return ch
}

func (a *Adapter) setStateLocked(s State) {
	if a.state == s {
		return
	}
	a.state = s
	for _, ch := range a.stateSubs {
		select {
		case ch <- s:
		default:
		}
	}
}

// LastSyncTime reports when the last write operation succeeded, for UI
// display. Zero when nothing has been written this session.
func (a *Adapter) LastSyncTime() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSyncTime
}

func (a *Adapter) touchSyncTime() {
	a.mu.Lock()
	a.lastSyncTime = time.Now()
	a.mu.Unlock()
}

// Save fully overwrites the remote value at path.
func (a *Adapter) Save(ctx context.Context, path string, value json.RawMessage) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if _, err := a.call(ctx, "put", path, value); err != nil {
		return err
	}
	a.touchSyncTime()
	return nil
}

// Update merges only the given top-level fields into the remote value.
func (a *Adapter) Update(ctx context.Context, path string, partial map[string]json.RawMessage) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if _, err := a.call(ctx, "merge", path, partial); err != nil {
		return err
	}
	a.touchSyncTime()
	return nil
}

// Get reads the remote value at path. Allowed without a session.
func (a *Adapter) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return a.call(ctx, "get", path)
}

// Delete removes the remote value at path.
func (a *Adapter) Delete(ctx context.Context, path string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if _, err := a.call(ctx, "delete", path); err != nil {
		return err
	}
	a.touchSyncTime()
	return nil
}

// Listen subscribes to path. The callback fires once immediately with the
// current value and again on every subsequent remote change, own writes
// included. Re-listening on the same path tears down the previous
// subscription first so callbacks are never delivered twice.
func (a *Adapter) Listen(path string, fn func(value json.RawMessage)) error {
	if err := a.Unlisten(path); err != nil {
		return err
	}

	a.mu.Lock()
	c := a.conn
	a.mu.Unlock()
	if c == nil {
		return fmt.Errorf("%w: not connected", sync.ErrNetwork)
	}

	raw, err := a.call(context.Background(), "listen", path)
	if err != nil {
		return err
	}
	var res listenResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("failed to decode listen result: %w", err)
	}

	a.mu.Lock()
	a.subs[path] = res.ID
	a.mu.Unlock()

	c.when(res.ID, func(rpcErr *RPCError, value []byte) {
		if rpcErr != nil {
			log.Printf("realtime: subscription %s error: %v", path, rpcErr)
			return
		}
		fn(value)
	})

	fn(res.Value)
	return nil
}

// Unlisten drops the subscription for path. Idempotent.
func (a *Adapter) Unlisten(path string) error {
	a.mu.Lock()
	subID, ok := a.subs[path]
	if ok {
		delete(a.subs, path)
	}
	c := a.conn
	a.mu.Unlock()

	if !ok || c == nil {
		return nil
	}

	c.forget(subID)
	if _, err := a.call(context.Background(), "unlisten", subID); err != nil {
		return err
	}
	return nil
}

func (a *Adapter) requireAuth() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.authed {
		return sync.ErrAuthRequired
	}
	return nil
}

// call sends one request and waits for its response.
func (a *Adapter) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	a.mu.Lock()
	c := a.conn
	a.mu.Unlock()
	if c == nil {
		return nil, fmt.Errorf("%w: not connected", sync.ErrNetwork)
	}

	id := newRequestID()
	type reply struct {
		err    *RPCError
		result []byte
	}
	ch := make(chan reply, 1)
	c.once(id, func(rpcErr *RPCError, result []byte) {
		ch <- reply{err: rpcErr, result: result}
	})

	c.request(&RPCRequest{ID: id, Method: method, Params: params})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", sync.ErrNetwork, ctx.Err())
	case <-c.quit:
		return nil, fmt.Errorf("%w: connection closed", sync.ErrNetwork)
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("%s failed: %w", method, r.err)
		}
		return r.result, nil
	}
}
