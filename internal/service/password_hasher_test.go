package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPooledHasher_HashAndVerify(t *testing.T) {
	h := NewPooledHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	ok, err := h.Verify(ctx, hash, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPooledHasher_EmptyPassword(t *testing.T) {
	h := NewPooledHasher(bcrypt.MinCost, 1)
	_, err := h.Hash(context.Background(), "")
	assert.Error(t, err)
}

func TestPooledHasher_MalformedHash(t *testing.T) {
	h := NewPooledHasher(bcrypt.MinCost, 1)
	ok, err := h.Verify(context.Background(), "not-a-hash", "secret123")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPooledHasher_CancelledContext(t *testing.T) {
	h := NewPooledHasher(bcrypt.MinCost, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "secret123")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPooledHasher_Concurrent(t *testing.T) {
	h := NewPooledHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := h.Hash(ctx, "secret123")
			if err != nil {
				errs <- err
				return
			}
			if ok, err := h.Verify(ctx, hash, "secret123"); err != nil || !ok {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent hashing failed: %v", err)
	}
}
