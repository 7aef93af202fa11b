// ABOUTME: Reconciliation engine for the realtime sync path
// ABOUTME: Per-collection pull/push/listen state machine with content-hash echo suppression
package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/harperreed/rigsync/store"
)

// Collections shared across devices, each stored whole under one local key
// and mirrored at one remote path.
var Collections = []string{
	"clients",
	"rateSheets",
	"invoices",
	"expenses",
	"approvedReportIds",
}

// RealtimeBackend is the push/pull/subscribe remote store the engine drives.
// Listen must deliver the current value once immediately, then every remote
// change, including changes caused by this client's own writes.
type RealtimeBackend interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Save(ctx context.Context, path string, value json.RawMessage) error
	Delete(ctx context.Context, path string) error
	Listen(path string, fn func(value json.RawMessage)) error
	Unlisten(path string) error
}

// Phase of a collection's initial-load state machine.
type Phase int

const (
	Uninitialized Phase = iota
	Pulling
	Ready
)

func (p Phase) String() string {
	switch p {
	case Pulling:
		return "pulling"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// collectionState carries the per-collection sync markers. All state is owned
// by one Engine instance; nothing here is persisted or shared across engines.
type collectionState struct {
	phase          Phase
	applyingRemote bool
	lastPushedHash string
}

// Engine reconciles the local store with the realtime backend for the fixed
// set of shared collections. Domain services signal mutations through
// NotifyCollectionChanged; the engine never inspects record semantics.
type Engine struct {
	store   store.Store
	backend RealtimeBackend
	enabled bool

	mu   sync.Mutex
	cols map[string]*collectionState
}

// NewEngine creates an engine over the given local store and backend.
func NewEngine(s store.Store, backend RealtimeBackend) *Engine {
	cols := make(map[string]*collectionState, len(Collections))
	for _, name := range Collections {
		cols[name] = &collectionState{}
	}
	return &Engine{
		store:   s,
		backend: backend,
		enabled: true,
		cols:    cols,
	}
}

// SetEnabled toggles the push path. Initial pulls and listener applies still
// run so the device keeps converging while pushes are paused.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// Start performs the initial pull for every collection and registers the
// long-lived listeners. Call once per engine instance.
func (e *Engine) Start(ctx context.Context) error {
	for _, name := range Collections {
		if err := e.initCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to initialize collection %s: %w", name, err)
		}
	}
	return nil
}

// Stop tears down all listener subscriptions.
func (e *Engine) Stop() {
	for _, name := range Collections {
		if err := e.backend.Unlisten(name); err != nil {
			log.Printf("sync: unlisten %s: %v", name, err)
		}
	}
}

// initCollection runs Uninitialized → Pulling → Ready for one collection.
// Tie-break on first Ready: a non-empty remote value wins and is written
// locally; an empty remote with local data present seeds the remote exactly
// once (bootstrap-populate).
func (e *Engine) initCollection(ctx context.Context, name string) error {
	e.mu.Lock()
	col := e.cols[name]
	if col.phase != Uninitialized {
		e.mu.Unlock()
		return nil
	}
	col.phase = Pulling
	e.mu.Unlock()

	remote, err := e.backend.Get(ctx, name)
	if err != nil {
		e.mu.Lock()
		col.phase = Uninitialized
		e.mu.Unlock()
		return err
	}

	if !emptyValue(remote) {
		e.applyRemote(name, remote)
	} else if local, found, _ := e.store.GetRaw(name); found && !emptyValue(local) {
		if err := e.push(ctx, name, local); err != nil {
			e.mu.Lock()
			col.phase = Uninitialized
			e.mu.Unlock()
			return err
		}
	}

	e.mu.Lock()
	col.phase = Ready
	e.mu.Unlock()

	return e.backend.Listen(name, func(value json.RawMessage) {
		e.onRemoteChange(name, value)
	})
}

// NotifyCollectionChanged is the hook domain services call after every local
// mutation. The whole current collection value is pushed, gated on: initial
// pull complete, not currently applying a remote change, and sync enabled.
func (e *Engine) NotifyCollectionChanged(ctx context.Context, name string) error {
	e.mu.Lock()
	col, ok := e.cols[name]
	if !ok || col.phase != Ready || col.applyingRemote || !e.enabled {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	raw, found, err := e.store.GetRaw(name)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return e.push(ctx, name, raw)
}

// push sends the full collection value and records its content hash so the
// listener can recognize the echo when the backend reflects it back.
func (e *Engine) push(ctx context.Context, name string, raw json.RawMessage) error {
	hash, err := contentHash(raw)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", name, err)
	}

	// Record the hash before the write goes out: the backend may deliver
	// the echo before Save returns.
	e.mu.Lock()
	e.cols[name].lastPushedHash = hash
	e.mu.Unlock()

	if err := e.backend.Save(ctx, name, raw); err != nil {
		return fmt.Errorf("failed to push %s: %w", name, err)
	}
	return nil
}

// onRemoteChange handles one listener delivery. Echoes of this device's own
// last push are dropped by hash correlation; values structurally equal to the
// current local value are dropped to avoid redundant writes.
func (e *Engine) onRemoteChange(name string, value json.RawMessage) {
	hash, err := contentHash(value)
	if err != nil {
		log.Printf("sync: ignoring undecodable remote value for %s: %v", name, err)
		return
	}

	// The hash is a one-shot correlation token: only the first matching
	// delivery is the echo. A later remote change that happens to restore
	// the same bytes must still be applied.
	e.mu.Lock()
	col := e.cols[name]
	if hash != "" && hash == col.lastPushedHash {
		col.lastPushedHash = ""
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	local, found, err := e.store.GetRaw(name)
	if err != nil {
		log.Printf("sync: failed to read local %s: %v", name, err)
		return
	}
	if emptyValue(value) && (!found || emptyValue(local)) {
		return
	}
	if found && equalJSON(local, value) {
		return
	}

	e.applyRemote(name, value)
}

// applyRemote writes a just-received remote value into the local store with
// the echo guard raised, so a "collection changed" signal fired by the write
// does not push the value straight back.
func (e *Engine) applyRemote(name string, value json.RawMessage) {
	e.mu.Lock()
	col := e.cols[name]
	col.applyingRemote = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		col.applyingRemote = false
		e.mu.Unlock()
	}()

	if err := e.store.SetRaw(name, value); err != nil {
		log.Printf("sync: failed to apply remote %s: %v", name, err)
	}
}

// CollectionPhase reports the state-machine phase for a collection.
func (e *Engine) CollectionPhase(name string) Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	if col, ok := e.cols[name]; ok {
		return col.phase
	}
	return Uninitialized
}

// emptyValue reports whether raw is absent or JSON-empty (null, [], {}).
func emptyValue(raw []byte) bool {
	if len(raw) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// contentHash returns a canonical hash of a JSON value: two values that
// differ only in key order or whitespace hash identically.
func contentHash(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	canon, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// equalJSON compares two JSON values structurally.
func equalJSON(a, b []byte) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
