package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/proofpay/internal/logging"
)

type fakeHandle struct {
	closes   atomic.Int32
	closeErr error
}

func (f *fakeHandle) SerializeState(ctx context.Context) (string, error) { return "", nil }
func (f *fakeHandle) Start(ctx context.Context) error                    { return nil }
func (f *fakeHandle) CoinPublicKey(ctx context.Context) (string, error)  { return "cpk", nil }
func (f *fakeHandle) Close(ctx context.Context) error {
	f.closes.Add(1)
	return f.closeErr
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	return NewRegistry(l)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	h := &fakeHandle{}
	r.Register(ctx, "s1", &Session{UserID: "u1", Email: "u@x.com", Wallet: h})

	assert.True(t, r.IsLoggedIn("s1"))
	assert.False(t, r.IsLoggedIn("s2"))

	s, ok := r.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "u@x.com", s.Email)
}

func TestRegistry_RemoveClosesWalletOnce(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	h := &fakeHandle{}
	r.Register(ctx, "s1", &Session{UserID: "u1", Wallet: h})

	require.NoError(t, r.Remove(ctx, "s1"))
	assert.False(t, r.IsLoggedIn("s1"))
	assert.Equal(t, int32(1), h.closes.Load())

	// removing again is a no-op
	require.NoError(t, r.Remove(ctx, "s1"))
	assert.Equal(t, int32(1), h.closes.Load())
}

func TestRegistry_RemoveEvictsEvenWhenCloseFails(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	h := &fakeHandle{closeErr: errors.New("daemon gone")}
	r.Register(ctx, "s1", &Session{UserID: "u1", Wallet: h})

	err := r.Remove(ctx, "s1")
	require.Error(t, err)
	assert.False(t, r.IsLoggedIn("s1"), "entry must be gone even when close fails")
}

func TestRegistry_RegisterSameSessionClosesPrevious(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	h1 := &fakeHandle{}
	h2 := &fakeHandle{}
	r.Register(ctx, "s1", &Session{UserID: "u1", Wallet: h1})
	r.Register(ctx, "s1", &Session{UserID: "u1", Wallet: h2})

	assert.Equal(t, int32(1), h1.closes.Load(), "replaced wallet must be closed")
	assert.Equal(t, int32(0), h2.closes.Load())

	s, ok := r.Get("s1")
	require.True(t, ok)
	assert.Same(t, h2, s.Wallet.(*fakeHandle))
}

func TestRegistry_SetIdentity(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	r.Register(ctx, "s1", &Session{UserID: "u1", Wallet: &fakeHandle{}})

	require.NoError(t, r.SetIdentity("s1", "John Doe", "1990-05-15"))
	s, _ := r.Get("s1")
	assert.Equal(t, "John Doe", s.IDName)
	assert.Equal(t, "1990-05-15", s.IDDOB)

	require.Error(t, r.SetIdentity("nope", "n", "d"))
}

func TestRegistry_GetReturnsSnapshot(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	r.Register(ctx, "s1", &Session{UserID: "u1", Wallet: &fakeHandle{}})

	before, ok := r.Get("s1")
	require.True(t, ok)

	require.NoError(t, r.SetIdentity("s1", "John Doe", "1990-05-15"))

	assert.Empty(t, before.IDDOB, "earlier snapshot must not observe later identity writes")
	after, _ := r.Get("s1")
	assert.Equal(t, "1990-05-15", after.IDDOB)
}

func TestRegistry_ConcurrentIdentityReads(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	r.Register(ctx, "s1", &Session{UserID: "u1", Wallet: &fakeHandle{}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.SetIdentity("s1", "John Doe", fmt.Sprintf("1990-05-%02d", i+1))
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s, ok := r.Get("s1"); ok {
				_ = s.IDDOB
			}
		}()
	}
	wg.Wait()
}

func TestRegistry_CleanupClosesAllSessions(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	handles := []*fakeHandle{{}, {closeErr: errors.New("boom")}, {}}
	for i, h := range handles {
		r.Register(ctx, fmt.Sprintf("s%d", i), &Session{UserID: fmt.Sprintf("u%d", i), Wallet: h})
	}

	r.Cleanup(ctx)

	for i, h := range handles {
		assert.Equal(t, int32(1), h.closes.Load(), "wallet %d must be closed exactly once", i)
		assert.False(t, r.IsLoggedIn(fmt.Sprintf("s%d", i)))
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			r.Register(ctx, id, &Session{UserID: id, Wallet: &fakeHandle{}})
			_ = r.IsLoggedIn(id)
			_, _ = r.Get(id)
			_ = r.Remove(ctx, id)
		}(i)
	}
	wg.Wait()

	r.Cleanup(ctx)
}
