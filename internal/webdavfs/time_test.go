package webdavfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseModified_BasicUTC(t *testing.T) {
	got := parseModified("2024-01-15T12:00:00Z")
	want := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestParseModified_LeapYear(t *testing.T) {
	// spec §8: "A leap-year check: 2000-02-29 parses to the expected epoch
	// seconds."
	got := parseModified("2000-02-29T00:00:00Z")
	want := time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestParseModified_MalformedYieldsNow(t *testing.T) {
	before := time.Now().UTC()
	got := parseModified("not-a-date")
	after := time.Now().UTC()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after.Add(time.Second)))
}

func TestIsLeap(t *testing.T) {
	assert.True(t, isLeap(2000))
	assert.False(t, isLeap(1900))
	assert.True(t, isLeap(2024))
	assert.False(t, isLeap(2023))
}

func TestParseModified_PreEpoch(t *testing.T) {
	got := parseModified("1969-12-31T23:59:59Z")
	want := time.Date(1969, 12, 31, 23, 59, 59, 0, time.UTC)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}
