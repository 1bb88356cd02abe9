package webdavfs

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/net/webdav"
)

// entryInfo implements os.FileInfo for an entry described by the remote
// (spec §4.E table: "array of entries each having name, is_dir, size,
// modified"), the same shape used for readdir, stat, and readFile
// responses.
type entryInfo struct {
	name     string
	isDir    bool
	size     int64
	modified time.Time
}

func (e *entryInfo) Name() string { return e.name }
func (e *entryInfo) Size() int64  { return e.size }
func (e *entryInfo) Mode() os.FileMode {
	if e.isDir {
		return os.ModeDir | 0755
	}
	return 0644
}
func (e *entryInfo) ModTime() time.Time { return e.modified }
func (e *entryInfo) IsDir() bool        { return e.isDir }
func (e *entryInfo) Sys() any           { return nil }

// entryInfoFromResponse builds an entryInfo from a readdir/stat/readFile
// response map. Fields are read defensively since the wire contract is
// "any" JSON coming from an untrusted remote browser.
func entryInfoFromResponse(resp map[string]any) (*entryInfo, error) {
	name, _ := resp["name"].(string)
	isDir, _ := resp["is_dir"].(bool)

	var size int64
	switch v := resp["size"].(type) {
	case float64:
		size = int64(v)
	case int64:
		size = v
	}

	modifiedStr, _ := resp["modified"].(string)

	return &entryInfo{
		name:     name,
		isDir:    isDir,
		size:     size,
		modified: parseModified(modifiedStr),
	}, nil
}

func entriesFromReaddir(resp map[string]any) ([]os.FileInfo, error) {
	raw, _ := resp["data"].([]any)
	entries := make([]os.FileInfo, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		info, err := entryInfoFromResponse(m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, info)
	}
	return entries, nil
}

// readableFile is the read-side variant of the WebDAV file handle (spec
// §9: "variants of the file handle are readable(buffer, cursor) and
// writable(accumulator, path)"). Content and directory entries are
// fetched lazily and cached for the lifetime of the handle.
type readableFile struct {
	fs   *FS
	ctx  context.Context
	path string

	loaded   bool
	isDir    bool
	data     []byte
	pos      int64
	modified time.Time
	entries  []os.FileInfo
}

func (f *readableFile) ensureLoaded() error {
	if f.loaded {
		return nil
	}

	resp, err := f.fs.send(f.ctx, "open", f.path, map[string]any{
		"type": "readFile",
		"path": f.path,
	})
	if err == nil {
		data, decodeErr := decodeBase64(resp["data"])
		if decodeErr != nil {
			return decodeErr
		}
		f.data = data
		if m, ok := resp["modified"].(string); ok {
			f.modified = parseModified(m)
		}
		f.loaded = true
		return nil
	}

	// readFile failed; the path may be a directory. Fall back to readdir
	// rather than surfacing the readFile-specific error, matching the
	// DAV library's expectation that OpenFile on a directory still
	// supports Readdir.
	readdirResp, readdirErr := f.fs.send(f.ctx, "open", f.path, map[string]any{
		"type": "readdir",
		"path": f.path,
	})
	if readdirErr != nil {
		return err
	}

	entries, buildErr := entriesFromReaddir(readdirResp)
	if buildErr != nil {
		return buildErr
	}
	f.isDir = true
	f.entries = entries
	f.loaded = true
	return nil
}

func (f *readableFile) Read(p []byte) (int, error) {
	if err := f.ensureLoaded(); err != nil {
		return 0, err
	}
	if f.isDir {
		return 0, fmt.Errorf("webdavfs: cannot read directory %q", f.path)
	}
	if f.pos >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *readableFile) Write(_ []byte) (int, error) {
	return 0, os.ErrPermission
}

// Seek only affects the read cursor; seeking past end clamps to end
// (spec §4.E: "Seeks only affect the read cursor; seeks past end clamp
// to end").
func (f *readableFile) Seek(offset int64, whence int) (int64, error) {
	if err := f.ensureLoaded(); err != nil {
		return 0, err
	}

	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = f.pos + offset
	case io.SeekEnd:
		newPos = int64(len(f.data)) + offset
	default:
		return 0, fmt.Errorf("webdavfs: invalid whence %d", whence)
	}

	if newPos < 0 {
		newPos = 0
	}
	if newPos > int64(len(f.data)) {
		newPos = int64(len(f.data))
	}
	f.pos = newPos
	return f.pos, nil
}

func (f *readableFile) Readdir(count int) ([]os.FileInfo, error) {
	if err := f.ensureLoaded(); err != nil {
		return nil, err
	}
	if !f.isDir {
		return nil, fmt.Errorf("webdavfs: %q is not a directory", f.path)
	}
	if count <= 0 {
		return f.entries, nil
	}
	if len(f.entries) == 0 {
		return nil, io.EOF
	}
	n := count
	if n > len(f.entries) {
		n = len(f.entries)
	}
	out := f.entries[:n]
	f.entries = f.entries[n:]
	return out, nil
}

func (f *readableFile) Stat() (os.FileInfo, error) {
	if f.path == "/" {
		return rootInfo(), nil
	}
	if err := f.ensureLoaded(); err != nil {
		return nil, err
	}
	if f.isDir {
		return &entryInfo{name: basename(f.path), isDir: true, modified: f.modified}, nil
	}
	return &entryInfo{name: basename(f.path), size: int64(len(f.data)), modified: f.modified}, nil
}

func (f *readableFile) Close() error { return nil }

// writableFile accumulates writes in memory and sends exactly one
// writeFile command on Close (spec §4.E: "each write buffers bytes in
// memory; flush emits one writeFile command with the whole buffer
// base64-encoded").
type writableFile struct {
	fs         *FS
	ctx        context.Context
	endpointID string
	path       string

	buf     []byte
	flushed bool
}

func (f *writableFile) Read(_ []byte) (int, error) {
	return 0, fmt.Errorf("webdavfs: %q opened write-only", f.path)
}

func (f *writableFile) Write(p []byte) (int, error) {
	f.buf = append(f.buf, p...)
	return len(p), nil
}

// Seek on a writable handle doesn't reposition where bytes land (the
// remote buffer is append-only until flush); it reports the current
// accumulated length (plus offset for io.SeekEnd), matching a write
// handle with no independent cursor.
func (f *writableFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekEnd:
		return int64(len(f.buf)) + offset, nil
	default:
		return int64(len(f.buf)), nil
	}
}

func (f *writableFile) Readdir(int) ([]os.FileInfo, error) {
	return nil, fmt.Errorf("webdavfs: %q is not a directory", f.path)
}

func (f *writableFile) Stat() (os.FileInfo, error) {
	return &entryInfo{name: basename(f.path), size: int64(len(f.buf)), modified: time.Now().UTC()}, nil
}

// Close flushes the buffer, emitting the single writeFile command (spec
// §4.E). An empty buffer is flushed too — a zero-length write still
// creates the remote file via a writeFile with empty data. Later calls
// are no-ops.
func (f *writableFile) Close() error {
	if f.flushed {
		return nil
	}
	f.flushed = true

	_, err := f.fs.send(f.ctx, "write", f.path, map[string]any{
		"type": "writeFile",
		"path": f.path,
		"data": base64.StdEncoding.EncodeToString(f.buf),
	})
	return err
}

var _ webdav.File = (*readableFile)(nil)
var _ webdav.File = (*writableFile)(nil)

func decodeBase64(v any) ([]byte, error) {
	s, _ := v.(string)
	if s == "" {
		return nil, nil
	}
	// Prefer the standard library's well-audited decoder over hand-rolling
	// one, per the spec's own design note (§9): "Prefer a well-audited
	// base64 decoder in any reimplementation."
	return base64.StdEncoding.DecodeString(s)
}

func basename(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
