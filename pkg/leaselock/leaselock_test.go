package leaselock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	key string
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.key
	return nil
}

// fakeDB keeps lock holders in memory and ignores expiry.
type fakeDB struct {
	mu      sync.Mutex
	holders map[string]string
}

func newFakeDB() *fakeDB {
	return &fakeDB{holders: make(map[string]string)}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, token := arguments[0].(string), arguments[1].(string)
	if sql == releaseSQL && f.holders[key] == token {
		delete(f.holders, key)
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, token := args[0].(string), args[1].(string)
	holder, held := f.holders[key]
	switch sql {
	case tryAcquireSQL:
		if held && holder != token {
			return fakeRow{err: pgx.ErrNoRows}
		}
		f.holders[key] = token
		return fakeRow{key: key}
	case renewSQL:
		if holder != token {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{key: key}
	}
	return fakeRow{err: errors.New("unexpected query")}
}

func TestAcquireBusyAndRelease(t *testing.T) {
	db := newFakeDB()
	c := New(db)
	ctx := context.Background()
	key := GraphKey("report")

	first, err := c.Acquire(ctx, key, Options{})
	if err != nil {
		t.Fatalf("first Acquire error: %v", err)
	}

	if _, err := c.Acquire(ctx, key, Options{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if first.Context.Err() == nil {
		t.Fatal("expected the lease context to be cancelled after release")
	}

	second, err := c.Acquire(ctx, key, Options{})
	if err != nil {
		t.Fatalf("Acquire after release error: %v", err)
	}
	_ = second.Release(ctx)
}

func TestWithLeaseReleases(t *testing.T) {
	db := newFakeDB()
	c := New(db)
	key := GraphKey("report")

	ran := false
	err := c.WithLease(context.Background(), key, Options{}, func(ctx context.Context) error {
		ran = true
		if _, held := db.holders[key]; !held {
			t.Error("expected the lock to be held inside fn")
		}
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("WithLease = %v, ran = %v", err, ran)
	}
	if _, held := db.holders[key]; held {
		t.Fatal("expected the lock to be released after fn")
	}
}

func TestWithLeaseReturnsFnError(t *testing.T) {
	c := New(newFakeDB())
	want := errors.New("copy failed")

	err := c.WithLease(context.Background(), GraphKey("a"), Options{}, func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestAcquireWaitHonoursContext(t *testing.T) {
	db := newFakeDB()
	c := New(db)
	key := GraphKey("report")

	held, err := c.Acquire(context.Background(), key, Options{})
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	defer held.Release(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Acquire(ctx, key, Options{Wait: true}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAcquireEmptyKey(t *testing.T) {
	if _, err := New(newFakeDB()).Acquire(context.Background(), "", Options{}); err == nil {
		t.Fatal("expected an error for an empty key")
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.TTL <= 0 || o.RenewEvery <= 0 || o.RenewEvery >= o.TTL || o.WaitInterval <= 0 {
		t.Fatalf("unexpected defaults %+v", o)
	}
}
