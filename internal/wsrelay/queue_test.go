package wsrelay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnboundedQueue_FIFO(t *testing.T) {
	q := newUnboundedQueue()
	require.True(t, q.Send([]byte("a")))
	require.True(t, q.Send([]byte("b")))

	v, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "a", string(v))

	v, ok = q.Next()
	require.True(t, ok)
	assert.Equal(t, "b", string(v))
}

func TestUnboundedQueue_NextBlocksUntilSend(t *testing.T) {
	q := newUnboundedQueue()

	var wg sync.WaitGroup
	wg.Add(1)
	var got []byte
	var ok bool
	go func() {
		defer wg.Done()
		got, ok = q.Next()
	}()

	time.Sleep(20 * time.Millisecond)
	q.Send([]byte("late"))
	wg.Wait()

	assert.True(t, ok)
	assert.Equal(t, "late", string(got))
}

func TestUnboundedQueue_CloseUnblocksNext(t *testing.T) {
	q := newUnboundedQueue()

	done := make(chan bool)
	go func() {
		_, ok := q.Next()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Next")
	}
}

func TestUnboundedQueue_SendAfterCloseFails(t *testing.T) {
	q := newUnboundedQueue()
	q.Close()
	assert.False(t, q.Send([]byte("x")))
}

func TestUnboundedQueue_DrainsRemainingAfterClose(t *testing.T) {
	q := newUnboundedQueue()
	q.Send([]byte("queued"))
	q.Close()

	v, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "queued", string(v))

	_, ok = q.Next()
	assert.False(t, ok)
}
