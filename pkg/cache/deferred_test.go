package cache

import (
	"sync"
	"testing"
)

func TestDeferred_LoadsOnce(t *testing.T) {
	calls := 0
	d := NewDeferred(func() (int, error) {
		calls++
		return 42, nil
	})
	v1, err := d.Get()
	v2, err2 := d.Get()
	if err != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err, err2)
	}
	if v1 != 42 || v2 != 42 {
		t.Fatalf("got %d, %d", v1, v2)
	}
	if calls != 1 {
		t.Fatalf("expected loader called once, got %d", calls)
	}
}

func TestDeferred_DeduplicatesConcurrentCalls(t *testing.T) {
	var calls int
	var mu sync.Mutex
	start := make(chan struct{})
	d := NewDeferred(func() (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-start
		return 7, nil
	})

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := d.Get()
			results[i] = v
		}(i)
	}
	close(start)
	wg.Wait()

	for _, v := range results {
		if v != 7 {
			t.Fatalf("expected all goroutines to see 7, got %v", results)
		}
	}
	if calls != 1 {
		t.Fatalf("expected exactly one loader invocation, got %d", calls)
	}
}

func TestDeferred_ResetForcesReload(t *testing.T) {
	calls := 0
	d := NewDeferred(func() (int, error) {
		calls++
		return calls, nil
	})
	v1, _ := d.Get()
	d.Reset()
	v2, _ := d.Get()
	if v1 != 1 || v2 != 2 {
		t.Fatalf("expected reload after Reset, got %d then %d", v1, v2)
	}
}
