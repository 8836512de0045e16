package service

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const DefaultBcryptCost = 12

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) cost() int {
	if h.Cost == 0 {
		return DefaultBcryptCost
	}
	return h.Cost
}

// PooledHasher runs bcrypt on a bounded set of goroutines so expensive
// hashing never occupies more than workers CPUs at once. Callers still wait
// for the result, or for their context to end.
type PooledHasher struct {
	hasher  BcryptPasswordHasher
	workers *semaphore.Weighted
}

func NewPooledHasher(cost int, workers int) *PooledHasher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &PooledHasher{
		hasher:  BcryptPasswordHasher{Cost: cost},
		workers: semaphore.NewWeighted(int64(workers)),
	}
}

type hashResult struct {
	hash string
	err  error
}

func (p *PooledHasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	res, err := p.run(ctx, func() hashResult {
		bytes, err := bcrypt.GenerateFromPassword([]byte(password), p.hasher.cost())
		return hashResult{hash: string(bytes), err: err}
	})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

func (p *PooledHasher) Verify(ctx context.Context, hash string, password string) (bool, error) {
	res, err := p.run(ctx, func() hashResult {
		return hashResult{err: bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))}
	})
	if err != nil {
		return false, err
	}
	if res.err == nil {
		return true, nil
	}
	if errors.Is(res.err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, res.err
}

func (p *PooledHasher) run(ctx context.Context, fn func() hashResult) (hashResult, error) {
	if err := p.workers.Acquire(ctx, 1); err != nil {
		return hashResult{}, err
	}
	done := make(chan hashResult, 1)
	go func() {
		defer p.workers.Release(1)
		done <- fn()
	}()
	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}
}
