package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
	fail error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: make(map[string][]byte)}
}

func (m *memoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (m *memoryBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data[key] = value
	return nil
}

func (m *memoryBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

var params = bow.Params{Mode: bow.ModeFixed, WordSize: 2, BowSize: 10, SkipSpaces: true, NonUniqueWords: true}

func TestGetOrComputeCachesSuccessfulBags(t *testing.T) {
	c := New(newMemoryBackend(), time.Minute)
	ctx := context.Background()
	calls := 0
	compute := func() (*bow.BagOfWords, error) {
		calls++
		return params.Extract("ababab")
	}

	first, hit, err := c.GetOrCompute(ctx, params, "ababab", compute)
	if err != nil || hit {
		t.Fatalf("expected computed miss, got hit=%v err=%v", hit, err)
	}
	second, hit, err := c.GetOrCompute(ctx, params, "ababab", compute)
	if err != nil || !hit {
		t.Fatalf("expected cache hit, got hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("expected one computation, got %d", calls)
	}
	if !first.Equal(second) {
		t.Errorf("expected cached bag %v, got %v", first.Entries(), second.Entries())
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}
}

func TestGetOrComputeSkipsDiagnostics(t *testing.T) {
	c := New(newMemoryBackend(), time.Minute)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		b, hit, err := c.GetOrCompute(ctx, params, "", func() (*bow.BagOfWords, error) {
			return params.Extract("")
		})
		if hit {
			t.Fatal("expected diagnostics never to be cached")
		}
		if !errors.Is(err, apperrors.ErrEmptyInput) || b.Len() != 0 {
			t.Fatalf("expected empty input diagnostic, got %v", err)
		}
	}
}

func TestGetOrComputeCollapsesConcurrentCalls(t *testing.T) {
	c := New(newMemoryBackend(), time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCompute(context.Background(), params, "abab", func() (*bow.BagOfWords, error) {
				calls.Add(1)
				<-release
				return params.Extract("abab")
			})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := calls.Load(); n < 1 || n > 8 {
		t.Errorf("unexpected computation count %d", n)
	}
}

func TestBackendFailureFallsBackToCompute(t *testing.T) {
	backend := newMemoryBackend()
	backend.fail = errors.New("connection refused")
	c := New(backend, time.Minute)

	b, hit, err := c.GetOrCompute(context.Background(), params, "ababab", func() (*bow.BagOfWords, error) {
		return params.Extract("ababab")
	})
	if err != nil || hit || b.Len() != 2 {
		t.Errorf("expected computed bag despite backend failure, got %v hit=%v err=%v", b.Entries(), hit, err)
	}
}

func TestBuildKeyDependsOnParamsAndText(t *testing.T) {
	other := params
	other.WordSize = 3
	keys := map[string]bool{
		BuildKey(params, "abc"): true,
		BuildKey(other, "abc"):  true,
		BuildKey(params, "abd"): true,
	}
	if len(keys) != 3 {
		t.Errorf("expected 3 distinct keys, got %d", len(keys))
	}
	if BuildKey(params, "abc") != BuildKey(params, "abc") {
		t.Error("expected stable keys")
	}
}

func TestInvalidate(t *testing.T) {
	backend := newMemoryBackend()
	c := New(backend, time.Minute)
	b, _ := params.Extract("ababab")
	c.Set(context.Background(), params, "ababab", b)
	backend.data["other:key"] = []byte("x")

	if err := c.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if len(backend.data) != 1 {
		t.Errorf("expected only foreign keys to remain, got %v", backend.data)
	}
}
