// Package wsrelay implements the socket session handler (spec §4.C): the
// per-connection registration handshake, fan-out writer task, response-
// demultiplexing reader loop, and teardown, built on gorilla/websocket the
// way the teacher reaches for a dedicated library per concern rather than
// hand-rolling wire framing.
package wsrelay

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/snowcode-jp/ljc-server/internal/hub"
)

// Upgrader is the shared websocket upgrader for GET /ws. Origin checking
// is deliberately permissive here (the socket endpoint is public per spec
// §4.F HTTP surface table; authorization happens on the registration
// frame's token, not at the transport layer).
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type registrationFrame struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	FolderName string `json:"folderName"`
	Token      string `json:"token"`
}

// Handle runs the lifetime of one accepted socket (spec §4.C): reads the
// registration frame, acks it, and runs the writer/reader tasks until
// teardown. It blocks until the session ends.
func Handle(ctx context.Context, h *hub.Hub, conn *websocket.Conn, token string) {
	defer conn.Close()

	ep, queue, err := register(ctx, h, conn, token)
	if err != nil {
		slog.DebugContext(ctx, "socket registration failed", "error", err)
		return
	}
	defer h.Drop(ep.ID)
	defer queue.Close()

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		runWriter(sessionCtx, conn, queue)
	}()

	runReader(sessionCtx, h, conn, ep.ID)

	// Reader loop exited (close frame or I/O error): tear down the writer
	// task too (spec §4.C teardown: "Abort the writer task; remove the
	// endpoint from the table").
	cancel()
	queue.Close()
	<-writerDone
}

// register performs step 1 of spec §4.C: read exactly one text frame,
// parse it, validate the token, mint the endpoint, ack, and insert it
// into the hub.
func register(ctx context.Context, h *hub.Hub, conn *websocket.Conn, token string) (*hub.Endpoint, *unboundedQueue, error) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, nil, err
	}

	var frame registrationFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, nil, err
	}

	if subtle.ConstantTimeCompare([]byte(frame.Token), []byte(token)) != 1 {
		// "If the token does not match the process token, close with no
		// further traffic" (spec §4.C) — no error frame, just disconnect.
		return nil, nil, errBadToken
	}

	queue := newUnboundedQueue()
	ep := &hub.Endpoint{
		ID:          uuid.NewString(),
		Name:        frame.Name,
		FolderName:  frame.FolderName,
		ConnectedAt: time.Now(),
		Outbound:    queue,
	}

	ack, err := json.Marshal(map[string]any{"type": "registered", "clientId": ep.ID})
	if err != nil {
		return nil, nil, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
		return nil, nil, err
	}

	h.Register(ep)
	slog.InfoContext(ctx, "endpoint registered", "id", ep.ID, "name", ep.Name, "folder", ep.FolderName)
	return ep, queue, nil
}

// runWriter drains the outbound queue and writes each frame to the socket
// (spec §4.C step 2), terminating on queue close or a write error.
func runWriter(ctx context.Context, conn *websocket.Conn, queue *unboundedQueue) {
	for {
		frame, ok := queue.Next()
		if !ok {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			slog.WarnContext(ctx, "socket write failed, closing writer task", "error", err)
			return
		}
	}
}

// runReader is the response demultiplexer (spec §4.C step 3): every
// inbound frame is parsed as JSON; if it carries a matching "id" it
// fulfils the pending responder. A close frame or I/O error exits.
func runReader(ctx context.Context, h *hub.Hub, conn *websocket.Conn, endpointID string) {
	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.WarnContext(ctx, "socket read error", "endpoint", endpointID, "error", err)
			}
			return
		}
		if msgType == websocket.CloseMessage {
			return
		}

		var response map[string]any
		if err := json.Unmarshal(raw, &response); err != nil {
			slog.DebugContext(ctx, "discarding malformed inbound frame", "endpoint", endpointID, "error", err)
			continue
		}

		id, _ := response["id"].(string)
		if id == "" {
			continue
		}
		h.Fulfil(id, response)
	}
}
