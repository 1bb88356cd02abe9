package webdavfs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	iofs "io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowcode-jp/ljc-server/internal/hub"
)

// fakeSender answers whatever the test installs as the next response for
// the command it receives, emulating the remote browser's side of the
// socket protocol without a real connection.
type fakeSender struct {
	h       *hub.Hub
	respond func(command map[string]any) map[string]any
}

func (s *fakeSender) Send(frame []byte) bool {
	var command map[string]any
	if err := json.Unmarshal(frame, &command); err != nil {
		return false
	}
	go func() {
		resp := s.respond(command)
		resp["id"] = command["id"]
		s.h.Fulfil(command["id"].(string), resp)
	}()
	return true
}

func newTestFS(t *testing.T, respond func(map[string]any) map[string]any) (*FS, context.Context) {
	t.Helper()
	h := hub.New()
	sender := &fakeSender{h: h, respond: respond}
	h.Register(&hub.Endpoint{ID: "ep1", Outbound: sender})
	ctx := WithEndpointID(context.Background(), "ep1")
	return New(h), ctx
}

func TestStat_Root_NeverRoundTrips(t *testing.T) {
	called := false
	fs, ctx := newTestFS(t, func(map[string]any) map[string]any {
		called = true
		return map[string]any{"ok": true}
	})

	info, err := fs.Stat(ctx, "")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.False(t, called, "root stat must not touch the remote")
}

func TestStat_RegularFile(t *testing.T) {
	fs, ctx := newTestFS(t, func(cmd map[string]any) map[string]any {
		assert.Equal(t, "stat", cmd["type"])
		assert.Equal(t, "/a.txt", cmd["path"])
		return map[string]any{
			"ok":   true,
			"name": "a.txt", "is_dir": false, "size": float64(3), "modified": "2024-01-15T12:00:00Z",
		}
	})

	info, err := fs.Stat(ctx, "/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Name())
	assert.Equal(t, int64(3), info.Size())
	assert.False(t, info.IsDir())
}

func TestStat_NotFound(t *testing.T) {
	fs, ctx := newTestFS(t, func(map[string]any) map[string]any {
		return map[string]any{"ok": false, "error": "not found"}
	})

	_, err := fs.Stat(ctx, "/missing")
	// golang.org/x/net/webdav relies on os.IsNotExist in several
	// Stat-dependent branches (moveFiles' destination probe,
	// handlePropfind's missing-path check), not just the final status
	// mapping, so the adapter boundary must produce an error that
	// satisfies it rather than a bare hub.ErrNotFound.
	assert.True(t, os.IsNotExist(err), "expected os.IsNotExist(err), got %v", err)

	var pathErr *iofs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "stat", pathErr.Op)
	assert.Equal(t, "/missing", pathErr.Path)
}

func TestMkdir(t *testing.T) {
	fs, ctx := newTestFS(t, func(cmd map[string]any) map[string]any {
		assert.Equal(t, "mkdir", cmd["type"])
		return map[string]any{"ok": true, "created": true}
	})
	assert.NoError(t, fs.Mkdir(ctx, "/newdir", 0755))
}

func TestRemoveAll(t *testing.T) {
	fs, ctx := newTestFS(t, func(cmd map[string]any) map[string]any {
		assert.Equal(t, "delete", cmd["type"])
		return map[string]any{"ok": true, "deleted": true}
	})
	assert.NoError(t, fs.RemoveAll(ctx, "/gone"))
}

func TestRename(t *testing.T) {
	fs, ctx := newTestFS(t, func(cmd map[string]any) map[string]any {
		assert.Equal(t, "rename", cmd["type"])
		assert.Equal(t, "/old", cmd["oldPath"])
		assert.Equal(t, "/new", cmd["newPath"])
		return map[string]any{"ok": true, "renamed": true}
	})
	assert.NoError(t, fs.Rename(ctx, "/old", "/new"))
}

func TestRename_DirectoryFailureMapsToGeneralFailure(t *testing.T) {
	fs, ctx := newTestFS(t, func(map[string]any) map[string]any {
		return map[string]any{"ok": false, "error": "cannot rename a directory"}
	})
	err := fs.Rename(ctx, "/olddir", "/newdir")
	assert.ErrorIs(t, err, hub.ErrGeneralFailure)
}

func TestOpenFile_ReadRoundTrip(t *testing.T) {
	content := []byte("hello world")
	fs, ctx := newTestFS(t, func(cmd map[string]any) map[string]any {
		assert.Equal(t, "readFile", cmd["type"])
		return map[string]any{
			"ok": true, "data": base64.StdEncoding.EncodeToString(content),
			"size": float64(len(content)), "name": "a.txt", "modified": "2024-01-15T12:00:00Z",
		}
	})

	f, err := fs.OpenFile(ctx, "/a.txt", 0, 0)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, len(content))
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, content, buf[:n])

	_, err = f.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenFile_SeekClampsToEnd(t *testing.T) {
	content := []byte("hello")
	fs, ctx := newTestFS(t, func(map[string]any) map[string]any {
		return map[string]any{"ok": true, "data": base64.StdEncoding.EncodeToString(content)}
	})

	f, err := fs.OpenFile(ctx, "/a.txt", 0, 0)
	require.NoError(t, err)
	defer f.Close()

	pos, err := f.Seek(1000, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), pos)

	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenFile_WriteThenCloseFlushesOnce(t *testing.T) {
	var flushCount int
	var gotData string
	fs, ctx := newTestFS(t, func(cmd map[string]any) map[string]any {
		assert.Equal(t, "writeFile", cmd["type"])
		flushCount++
		gotData, _ = cmd["data"].(string)
		return map[string]any{"ok": true, "written": float64(11)}
	})

	f, err := fs.OpenFile(ctx, "/new.txt", os.O_WRONLY|os.O_CREATE, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = f.Write([]byte("world"))
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close()) // idempotent

	assert.Equal(t, 1, flushCount)
	decoded, err := base64.StdEncoding.DecodeString(gotData)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(decoded))
}

func TestOpenFile_DirectoryFallsBackToReaddir(t *testing.T) {
	fs, ctx := newTestFS(t, func(cmd map[string]any) map[string]any {
		switch cmd["type"] {
		case "readFile":
			return map[string]any{"ok": false, "error": "is a directory"}
		case "readdir":
			return map[string]any{"ok": true, "data": []any{
				map[string]any{"name": "a.txt", "is_dir": false, "size": float64(1), "modified": "2024-01-15T12:00:00Z"},
			}}
		}
		return map[string]any{"ok": false, "error": "unexpected"}
	})

	f, err := fs.OpenFile(ctx, "/dir", 0, 0)
	require.NoError(t, err)
	defer f.Close()

	entries, err := f.Readdir(-1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name())
}
