// Package webdavfs implements the WebDAV adapter (spec §4.E): a
// golang.org/x/net/webdav.FileSystem that proxies every operation through
// the relay engine (internal/hub) instead of a local disk, the way the
// teacher's internal/webdav/file_system.go proxies onto an nzbfilesystem.
package webdavfs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"golang.org/x/net/webdav"

	"github.com/snowcode-jp/ljc-server/internal/hub"
)

type contextKey int

const endpointIDKey contextKey = 0

// WithEndpointID attaches the connected remote's id to ctx. webdavhttp
// sets this before handing a request to the golang.org/x/net/webdav
// handler, since the FileSystem interface doesn't carry a per-request
// routing parameter of its own.
func WithEndpointID(ctx context.Context, endpointID string) context.Context {
	return context.WithValue(ctx, endpointIDKey, endpointID)
}

func endpointIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(endpointIDKey).(string)
	return id, ok && id != ""
}

// FS adapts a hub.Hub into a webdav.FileSystem. It holds no per-client
// state itself — everything it needs travels through ctx and the request
// path, since a single instance serves every connected endpoint.
type FS struct {
	Hub *hub.Hub
}

// New constructs a webdav.FileSystem backed by h.
func New(h *hub.Hub) *FS {
	return &FS{Hub: h}
}

var errNoEndpoint = errors.New("webdavfs: no endpoint id in context")

// send dispatches command to the connected endpoint and wraps any
// resulting error as a *fs.PathError satisfying os.IsNotExist/
// os.IsPermission, for op/path. golang.org/x/net/webdav relies on those
// stdlib predicates in several Stat-dependent branches — most notably
// moveFiles' destination-exists probe and handlePropfind's missing-path
// check — not just for the final HTTP status mapping. hub's own sentinel
// errors (internal/hub/errors.go) are plain errors.New values that never
// satisfy either predicate, so without this wrapping every rename to a
// not-yet-existing destination (the ordinary case) and every PROPFIND of
// a missing path would take the library's "not os.IsNotExist" branch
// instead of the 404/"create" branch it's supposed to.
func (fs *FS) send(ctx context.Context, op, path string, command map[string]any) (map[string]any, error) {
	endpointID, ok := endpointIDFrom(ctx)
	if !ok {
		return nil, errNoEndpoint
	}
	resp, err := fs.Hub.Send(ctx, endpointID, command)
	if err != nil {
		return nil, wrapHubErr(op, path, err)
	}
	return resp, nil
}

// wrapHubErr maps hub's typed sentinel errors onto the stdlib sentinels
// os.IsNotExist/os.IsPermission recognize, via *fs.PathError (whose Err
// field os.IsNotExist/os.IsPermission compare directly, per the
// io/fs.PathError contract) — see the send doc comment above. Errors with
// no stdlib analogue (BadGateway, Timeout, NotImplemented, GeneralFailure,
// ...) pass through unwrapped; webdavhttp's error handling and the DAV
// library's generic-failure path (500, later downgraded where plausible)
// already cover those.
func wrapHubErr(op, path string, err error) error {
	switch {
	case errors.Is(err, hub.ErrNotFound):
		return &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	case errors.Is(err, hub.ErrForbidden), errors.Is(err, hub.ErrUnauthorized):
		return &fs.PathError{Op: op, Path: path, Err: fs.ErrPermission}
	default:
		return err
	}
}

// Mkdir sends {type:"mkdir", path} (spec §4.E table). The remote's own
// mkdir is idempotent (spec §8: "Repeated mkdir of an existing directory
// succeeds"), so there's nothing extra to check here.
func (fs *FS) Mkdir(ctx context.Context, name string, _ os.FileMode) error {
	path := normalizePath(name)
	_, err := fs.send(ctx, "mkdir", path, map[string]any{
		"type": "mkdir",
		"path": path,
	})
	return err
}

// OpenFile returns a lazily-loaded handle: reads and directory listings
// only hit the remote once the caller actually asks for data, and writes
// accumulate in memory until Close flushes them (spec §4.E: "Writable
// files are not streamed... flush emits one writeFile command").
func (fs *FS) OpenFile(ctx context.Context, name string, flag int, _ os.FileMode) (webdav.File, error) {
	path := normalizePath(name)
	endpointID, ok := endpointIDFrom(ctx)
	if !ok {
		return nil, errNoEndpoint
	}

	if isWriteFlag(flag) {
		return &writableFile{fs: fs, ctx: ctx, endpointID: endpointID, path: path}, nil
	}

	return &readableFile{fs: fs, ctx: ctx, path: path}, nil
}

func isWriteFlag(flag int) bool {
	return flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC) != 0
}

// RemoveAll sends {type:"delete", path}.
func (fs *FS) RemoveAll(ctx context.Context, name string) error {
	path := normalizePath(name)
	_, err := fs.send(ctx, "remove", path, map[string]any{
		"type": "delete",
		"path": path,
	})
	return err
}

// Rename sends {type:"rename", oldPath, newPath}. Directory rename is
// explicitly unsupported by the remote capability (spec §1 Non-goals,
// §4.E); the remote rejects it and the rejection surfaces through the
// ordinary error classification as hub.ErrGeneralFailure — see
// DESIGN.md's Open Question decision on directory rename.
func (fs *FS) Rename(ctx context.Context, oldName, newName string) error {
	oldPath := normalizePath(oldName)
	newPath := normalizePath(newName)
	_, err := fs.send(ctx, "rename", oldPath, map[string]any{
		"type":    "rename",
		"oldPath": oldPath,
		"newPath": newPath,
	})
	return err
}

// Stat sends {type:"stat", path}, except for the root path, which never
// round-trips to the remote (spec §4.E: "Root directory probe... return a
// synthetic directory metadata so the host's file browser can mount
// without the remote being touched for every probe").
func (fs *FS) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	path := normalizePath(name)
	if path == "/" {
		return rootInfo(), nil
	}

	resp, err := fs.send(ctx, "stat", path, map[string]any{
		"type": "stat",
		"path": path,
	})
	if err != nil {
		return nil, err
	}
	return entryInfoFromResponse(resp)
}

func rootInfo() os.FileInfo {
	return &entryInfo{
		name:     "/",
		isDir:    true,
		modified: time.Now().UTC(),
	}
}
