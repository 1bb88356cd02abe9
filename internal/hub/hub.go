// Package hub holds the relay's shared mutable state (spec §4.A, §3):
// the endpoint registry and the pending-responder table, plus the relay
// engine (spec §4.D) that correlates outbound commands with inbound
// responses. It is the only place in the repository that holds a lock
// across more than a single map operation.
package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RelayTimeout is the hard deadline on every dispatched command (spec §4.D,
// §5): 30 seconds, after which the pending entry is removed and a response
// that later arrives is silently dropped.
const RelayTimeout = 30 * time.Second

// Sender abstracts the per-endpoint outbound queue. It is implemented by
// wsrelay's unbounded, multi-producer/single-consumer queue (spec §3:
// "Outbound channels are multi-producer/single-consumer with unbounded
// capacity"); Hub only ever needs to push a frame onto it.
type Sender interface {
	// Send enqueues frame for the writer task. It reports false if the
	// session has already torn down and can no longer accept frames.
	Send(frame []byte) bool
}

// Endpoint is one connected remote PC (spec §3). Once constructed its
// fields are immutable; a reconnecting remote always mints a new id
// instead of replacing Outbound on an existing entry (spec §3).
type Endpoint struct {
	ID          string
	Name        string
	FolderName  string
	ConnectedAt time.Time
	Outbound    Sender
}

// Hub owns the endpoint table and the pending-responder table, and mints
// the process-lifetime bearer token. It is safe for concurrent use; all
// locking happens here so every other package can treat Hub as a plain
// dependency.
type Hub struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint

	pendingMu sync.Mutex
	pending   map[string]chan map[string]any

	token string
}

// New constructs a Hub and mints its bearer token (spec §3: "a bearer
// token minted at startup (UUID)").
func New() *Hub {
	return &Hub{
		endpoints: make(map[string]*Endpoint),
		pending:   make(map[string]chan map[string]any),
		token:     uuid.NewString(),
	}
}

// Token returns the process-lifetime bearer token.
func (h *Hub) Token() string {
	return h.token
}

// Register adds a new endpoint to the table. Callers mint the id and
// outbound channel; Register never mutates an existing entry — the
// data model guarantees ids are unique for the process lifetime.
func (h *Hub) Register(ep *Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.endpoints[ep.ID] = ep
}

// Drop removes an endpoint from the table. Pending responders still keyed
// to this endpoint are intentionally left alone — per spec §4.C/§9, they
// are reaped by their own RelayTimeout rather than walked and cancelled
// here. This is an explicit Open Question decision (see DESIGN.md): it
// wastes up to 30s of a pending table slot but keeps teardown to a single
// deletion under the endpoint-table lock, without touching the pending
// table.
func (h *Hub) Drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.endpoints, id)
}

// Get looks up an endpoint by id. Look-ups never mutate (spec §4.A).
func (h *Hub) Get(id string) (*Endpoint, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ep, ok := h.endpoints[id]
	return ep, ok
}

// List returns a snapshot of every connected endpoint, for GET /api/clients.
func (h *Hub) List() []*Endpoint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Endpoint, 0, len(h.endpoints))
	for _, ep := range h.endpoints {
		out = append(out, ep)
	}
	return out
}

// installPending inserts a single-use responder slot under the exclusive
// lock (spec §4.A: "the pending table is only ever written while holding
// the exclusive lock").
func (h *Hub) installPending(id string) chan map[string]any {
	ch := make(chan map[string]any, 1)
	h.pendingMu.Lock()
	h.pending[id] = ch
	h.pendingMu.Unlock()
	return ch
}

// removePending deletes a pending entry without signalling it, used for
// rollback-on-write-failure and for timeout reaping.
func (h *Hub) removePending(id string) {
	h.pendingMu.Lock()
	delete(h.pending, id)
	h.pendingMu.Unlock()
}

// Fulfil delivers an inbound response to its matching pending responder.
// It removes the entry before signalling, guaranteeing each responder
// fires at most once (spec §3, §9: "the contract 'signalled exactly once'
// is enforced by removing the entry before signalling"). Reports whether
// a matching responder was found; a miss is a no-op (an already-timed-out
// or unknown correlation id).
func (h *Hub) Fulfil(id string, response map[string]any) bool {
	h.pendingMu.Lock()
	ch, ok := h.pending[id]
	if ok {
		delete(h.pending, id)
	}
	h.pendingMu.Unlock()

	if !ok {
		return false
	}
	ch <- response
	return true
}

// Send implements the relay engine (spec §4.D): send(endpointId, command)
// → result. It mints a correlation id, injects it as "id" into command,
// dispatches it over the endpoint's outbound channel, and awaits the
// matching response with RelayTimeout.
func (h *Hub) Send(ctx context.Context, endpointID string, command map[string]any) (map[string]any, error) {
	ep, ok := h.Get(endpointID)
	if !ok {
		return nil, ErrNotFound
	}

	correlationID := uuid.NewString()
	command["id"] = correlationID

	responder := h.installPending(correlationID)

	frame, err := encodeFrame(command)
	if err != nil {
		h.removePending(correlationID)
		return nil, err
	}

	if !h.dispatch(ep, frame) {
		h.removePending(correlationID)
		return nil, ErrBadGateway
	}

	timer := time.NewTimer(RelayTimeout)
	defer timer.Stop()

	select {
	case response, ok := <-responder:
		if !ok {
			return nil, ErrBadGateway
		}
		return h.interpret(ctx, response)
	case <-timer.C:
		h.removePending(correlationID)
		return nil, ErrTimeout
	case <-ctx.Done():
		h.removePending(correlationID)
		return nil, ctx.Err()
	}
}

// dispatch writes a frame to an endpoint's outbound queue. Get already
// released h.mu before returning ep, so this never happens under the
// table lock (spec §9: "clone the outbound channel sender, drop the lock,
// then write").
func (h *Hub) dispatch(ep *Endpoint, frame []byte) bool {
	return ep.Outbound.Send(frame)
}

// interpret inspects a response per spec §4.D: ok==true returns the whole
// response object (id, ok, data); otherwise the "error" string is
// classified into a typed error.
// NotFound is logged at debug, matching "it is an expected probe result
// from the host's file browser".
func (h *Hub) interpret(ctx context.Context, response map[string]any) (map[string]any, error) {
	if ok, _ := response["ok"].(bool); ok {
		return response, nil
	}

	msg, _ := response["error"].(string)
	err := classifyRemoteError(msg)
	if err == ErrNotFound {
		slog.DebugContext(ctx, "remote reported not found", "error", msg)
	}
	return nil, err
}
