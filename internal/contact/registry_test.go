package contact

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(func() *Form {
		return newTestForm(new(mockRelay), nil, Options{})
	})
}

func TestRegistry_Acquire(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	f1, id := r.Acquire("")
	require.NotNil(t, f1)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	f2, id2 := r.Acquire(id)
	assert.Same(t, f1, f2)
	assert.Equal(t, id, id2)

	f3, id3 := r.Acquire("not-a-uuid")
	assert.NotSame(t, f1, f3)
	assert.NotEqual(t, "not-a-uuid", id3)

	known := uuid.NewString()
	_, id4 := r.Acquire(known)
	assert.Equal(t, known, id4, "a well-formed id from an old session is reused")

	assert.Equal(t, 3, r.Len())

	got, ok := r.Lookup(id)
	assert.True(t, ok)
	assert.Same(t, f1, got)
	_, ok = r.Lookup(uuid.NewString())
	assert.False(t, ok)
}

func TestRegistry_Sweep(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	stale, staleID := r.Acquire("")
	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(5 * time.Millisecond)
	_, freshID := r.Acquire("")

	assert.Equal(t, 1, r.Sweep(cutoff))
	_, ok := r.Lookup(staleID)
	assert.False(t, ok)
	_, ok = r.Lookup(freshID)
	assert.True(t, ok)

	assert.ErrorIs(t, stale.UpdateField(FieldName, "x"), ErrClosed)
}

func TestRegistry_SweepKeepsInFlight(t *testing.T) {
	relay := &blockingRelay{entered: make(chan struct{}, 1), release: make(chan error)}
	r := NewRegistry(func() *Form { return newTestForm(relay, nil, Options{}) })
	defer r.Close()

	f, id := r.Acquire("")
	fillForm(t, f, validSubmission())

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.Submit(context.Background())
	}()
	<-relay.entered

	assert.Equal(t, 0, r.Sweep(time.Now().Add(time.Hour)))
	_, ok := r.Lookup(id)
	assert.True(t, ok)

	relay.release <- nil
	<-done
	assert.Equal(t, 1, r.Sweep(time.Now().Add(time.Hour)))
}

func TestRegistry_Run(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()
	r.Acquire("")

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond, time.Nanosecond)
		close(stopped)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-stopped
}
