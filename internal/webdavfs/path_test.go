package webdavfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePath_ASCIINoPercent(t *testing.T) {
	assert.Equal(t, "/a/b/c.txt", decodePath("/a/b/c.txt"))
}

func TestDecodePath_PercentEscape(t *testing.T) {
	assert.Equal(t, "/a b/c", decodePath("/a%20b/c"))
}

func TestDecodePath_ValidEscapeDecodes(t *testing.T) {
	assert.Equal(t, "/a+/c", decodePath("/a%2b/c"))
}

func TestDecodePath_MalformedEscapePassesThrough(t *testing.T) {
	assert.Equal(t, "/a%zz/c", decodePath("/a%zz/c"))
	assert.Equal(t, "/trailing%2", decodePath("/trailing%2"))
}

func TestNormalizePath_AddsLeadingSlash(t *testing.T) {
	assert.Equal(t, "/foo", normalizePath("foo"))
	assert.Equal(t, "/", normalizePath(""))
	assert.Equal(t, "/foo/bar", normalizePath("/foo/bar"))
}
