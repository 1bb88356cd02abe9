package mountctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMountLine(t *testing.T) {
	line := "http://127.0.0.1:17200/webdav/abc/ on /Users/me/Public/mount/ljc-abc (nfs, nodev, nosuid)"
	e := parseMountLine(line)
	assert.Equal(t, "http://127.0.0.1:17200/webdav/abc/", e.url)
	assert.Equal(t, "/Users/me/Public/mount/ljc-abc", e.mountPoint)
	assert.Equal(t, line, e.raw)
}

func TestParseMountLine_NonWebdavLineStillParses(t *testing.T) {
	e := parseMountLine("/dev/disk1s1 on / (apfs, local, journaled)")
	assert.Equal(t, "/dev/disk1s1", e.url)
	assert.Equal(t, "/", e.mountPoint)
}
