package quota

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    Limit
		ok      bool
	}{
		{
			name: "lowercase keys",
			headers: map[string]string{
				"x-rate-limit-limit":     "150",
				"x-rate-limit-remaining": "100",
				"x-rate-limit-reset":     "1356998400",
			},
			want: Limit{Limit: 150, Remaining: 100, ResetAt: time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)},
			ok:   true,
		},
		{
			name: "mixed case keys",
			headers: map[string]string{
				"X-Rate-Limit-Limit":     "15",
				"X-RATE-LIMIT-REMAINING": "0",
				"x-Rate-Limit-Reset":     "1356998400",
			},
			want: Limit{Limit: 15, Remaining: 0, ResetAt: time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)},
			ok:   true,
		},
		{
			name: "missing reset",
			headers: map[string]string{
				"x-rate-limit-limit":     "150",
				"x-rate-limit-remaining": "100",
			},
		},
		{
			name: "non-numeric reset",
			headers: map[string]string{
				"x-rate-limit-limit":     "150",
				"x-rate-limit-remaining": "100",
				"x-rate-limit-reset":     "soon",
			},
		},
		{
			name: "non-numeric limit",
			headers: map[string]string{
				"x-rate-limit-limit":     "",
				"x-rate-limit-remaining": "100",
				"x-rate-limit-reset":     "1356998400",
			},
		},
		{name: "no headers", headers: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseHeaders(tt.headers, "X-Rate-Limit-")
			if ok != tt.ok {
				t.Fatalf("ParseHeaders ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				if got != (Limit{}) {
					t.Fatalf("expected zero Limit on failure, got %+v", got)
				}
				return
			}
			if got.Limit != tt.want.Limit || got.Remaining != tt.want.Remaining || !got.ResetAt.Equal(tt.want.ResetAt) {
				t.Fatalf("ParseHeaders = %+v, want %+v", got, tt.want)
			}
			if got.ResetAt.Location() != time.UTC {
				t.Fatalf("expected UTC reset time, got %v", got.ResetAt.Location())
			}
		})
	}
}

func TestRegistrySetGetClear(t *testing.T) {
	r := New()
	_, ok := r.Get("/statuses/home_timeline")
	require.False(t, ok)

	l := Limit{Limit: 15, Remaining: 14, ResetAt: time.Now().Add(time.Minute).UTC()}
	r.Set("/statuses/home_timeline", l)

	got, ok := r.Get("/statuses/home_timeline")
	require.True(t, ok)
	assert.Equal(t, l, got)

	r.Clear()
	_, ok = r.Get("/statuses/home_timeline")
	assert.False(t, ok)
	assert.Empty(t, r.Snapshot())
}

func TestRegistryUpdateFromHeadersIgnoresMalformed(t *testing.T) {
	r := New()
	w := r.Watch()
	defer w.Close()

	ok := r.UpdateFromHeaders("/search/tweets", map[string]string{"x-rate-limit-limit": "180"}, "x-rate-limit-")
	require.False(t, ok)
	_, found := r.Get("/search/tweets")
	require.False(t, found)

	select {
	case c := <-w.C:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestRegistryNotifications(t *testing.T) {
	r := New()
	w := r.Watch()
	defer w.Close()

	r.Set("a", Limit{Limit: 1, Remaining: 1, ResetAt: time.Now().UTC()})
	require.Equal(t, Change{Endpoint: "a"}, <-w.C)

	r.Merge(map[string]Limit{
		"b": {Limit: 2, Remaining: 2, ResetAt: time.Now().UTC()},
		"c": {Limit: 3, Remaining: 3, ResetAt: time.Now().UTC()},
	})
	require.Equal(t, Change{All: true}, <-w.C)
	select {
	case c := <-w.C:
		t.Fatalf("Merge must notify once, got extra %+v", c)
	default:
	}

	r.Clear()
	require.Equal(t, Change{All: true}, <-w.C)
}

func TestWatcherCoalescesWhenFull(t *testing.T) {
	r := New()
	w := r.Watch()
	defer w.Close()

	for i := 0; i < watchBuffer*3; i++ {
		r.Set("a", Limit{Limit: i, Remaining: i, ResetAt: time.Now().UTC()})
	}
	var last Change
	for i := 0; i < watchBuffer; i++ {
		last = <-w.C
	}
	if !last.All {
		t.Fatalf("expected overflow to coalesce into an all change, got %+v", last)
	}
}

func TestWatcherCloseDuringDispatch(t *testing.T) {
	r := New()
	w := r.Watch()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range w.C {
			// Closing from the reader must not deadlock.
			w.Close()
		}
	}()

	r.Set("a", Limit{Limit: 1, Remaining: 1, ResetAt: time.Now().UTC()})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not observe close")
	}

	w.Close()
	r.Set("b", Limit{Limit: 1, Remaining: 1, ResetAt: time.Now().UTC()})
	if _, ok := <-w.C; ok {
		t.Fatal("received a change after Close returned")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				r.Set("ep", Limit{Limit: j, Remaining: j, ResetAt: time.Unix(int64(j), 0).UTC()})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if l, ok := r.Get("ep"); ok && l.Limit != l.Remaining {
					t.Errorf("torn entry %+v", l)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestRegistryExhausted(t *testing.T) {
	r := New()
	reset := time.Now().Add(10 * time.Minute).UTC()
	r.Set("/favorites/create", Limit{Limit: 100, Remaining: 0, ResetAt: reset})
	r.Set("/favorites/destroy", Limit{Limit: 100, Remaining: 50, ResetAt: reset})

	assert.True(t, r.Exhausted("/favorites/create"))
	assert.False(t, r.Exhausted("/favorites/destroy"))
	assert.True(t, r.AvailableAt("/favorites/destroy").IsZero())

	r.Set("/favorites/create", Limit{Limit: 100, Remaining: 14, ResetAt: reset.Add(time.Hour)})
	assert.False(t, r.Exhausted("/favorites/create"), "a refilled snapshot clears the mark")
	assert.True(t, r.AvailableAt("/favorites/create").IsZero())

	r.Set("/favorites/create", Limit{Limit: 100, Remaining: 0, ResetAt: reset})
	assert.True(t, r.Exhausted("/favorites/create"))
	r.Merge(map[string]Limit{"/favorites/create": {Limit: 100, Remaining: 1, ResetAt: reset}})
	assert.False(t, r.Exhausted("/favorites/create"))

	r.Set("/favorites/create", Limit{Limit: 100, Remaining: 0, ResetAt: reset})
	r.Clear()
	assert.False(t, r.Exhausted("/favorites/create"))
}
