package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSingleFlightCollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]any, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			val, err, _ := flight.Do("key", func() (any, error) {
				executions.Add(1)
				<-release
				return "shared", nil
			})
			if err != nil {
				t.Errorf("Do error: %v", err)
			}
			results[idx] = val
		}(i)
	}

	close(release)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("fn executed %d times, want 1", got)
	}
	for i, val := range results {
		if val != "shared" {
			t.Fatalf("caller %d got %v", i, val)
		}
	}
}

func TestSingleFlightDistinctKeys(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	a, _, _ := flight.Do("a", func() (any, error) { return 1, nil })
	b, _, _ := flight.Do("b", func() (any, error) { return 2, nil })
	if a != 1 || b != 2 {
		t.Fatalf("got a=%v b=%v", a, b)
	}
}
