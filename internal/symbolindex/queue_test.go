package symbolindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ktnyt/fae-sub001/internal/message"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOpQueueFIFOOrder(t *testing.T) {
	q := newOpQueue()
	q.push(message.FileOperation{Kind: message.FileOpCreate, Path: "a.go"})
	q.push(message.FileOperation{Kind: message.FileOpCreate, Path: "b.go"})

	op, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "a.go", op.Path)

	op, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "b.go", op.Path)

	_, ok = q.pop()
	assert.False(t, ok)
}

func TestOpQueueLatestOpSupersedesAndMovesToBack(t *testing.T) {
	q := newOpQueue()
	q.push(message.FileOperation{Kind: message.FileOpCreate, Path: "a.go"})
	q.push(message.FileOperation{Kind: message.FileOpCreate, Path: "b.go"})
	q.push(message.FileOperation{Kind: message.FileOpUpdate, Path: "a.go"})

	op, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "b.go", op.Path, "a.go's position moves to the back of its latest op")

	op, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "a.go", op.Path)
	assert.Equal(t, message.FileOpUpdate, op.Kind, "the later operation wins")

	assert.Equal(t, 0, q.len())
}

func TestOpQueueBlocksDuplicatePopWhileProcessing(t *testing.T) {
	q := newOpQueue()
	q.push(message.FileOperation{Kind: message.FileOpCreate, Path: "a.go"})

	op, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "a.go", op.Path)

	q.push(message.FileOperation{Kind: message.FileOpUpdate, Path: "a.go"})

	_, ok = q.pop()
	assert.False(t, ok, "a.go must not be popped again while its first operation is still processing")

	q.markDone("a.go")

	op, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, message.FileOpUpdate, op.Kind)
}

func TestOpQueueDrainedSinceWorkFiresOncePerDrain(t *testing.T) {
	q := newOpQueue()
	assert.False(t, q.drainedSinceWork())

	q.push(message.FileOperation{Kind: message.FileOpCreate, Path: "a.go"})
	assert.False(t, q.drainedSinceWork(), "not drained while still populated")

	_, _ = q.pop()
	assert.True(t, q.drainedSinceWork())
	assert.False(t, q.drainedSinceWork(), "fires exactly once per drain")

	q.push(message.FileOperation{Kind: message.FileOpCreate, Path: "b.go"})
	_, _ = q.pop()
	assert.True(t, q.drainedSinceWork(), "fires again after a new non-empty period")
}
