package parallel

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPoolRunsEveryJob(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 16} {
		pool := Start(workers)
		var sum atomic.Int64
		pool.Run(1000, func(i int) {
			sum.Add(int64(i))
		})
		if got := sum.Load(); got != 999*1000/2 {
			t.Errorf("%d workers: sum %d", workers, got)
		}
		if pool.Size() < 1 {
			t.Errorf("%d workers: size %d", workers, pool.Size())
		}
	}
}

func TestPoolSingleWorkerInline(t *testing.T) {
	pool := Start(1)
	order := []int{}
	pool.Run(5, func(i int) {
		order = append(order, i)
	})
	for i, v := range order {
		if i != v {
			t.Fatalf("single worker pool ran out of order: %v", order)
		}
	}
}

func TestPoolCancelTwice(t *testing.T) {
	pool := Start(4)
	pool.Do(func() {})
	pool.Cancel()
	pool.Wait(true)
}

func lessInt(a, b int) bool { return a < b }

func TestBestConcurrentMax(t *testing.T) {
	best := NewMax(lessInt)
	var wg sync.WaitGroup
	for i := range 2000 {
		wg.Go(func() {
			// 1234 and 1235 tie for the best score, the smaller value wins
			score := -math.Abs(float64(i) - 1234.5)
			best.Offer(score, i)
		})
	}
	wg.Wait()

	v, score, ok := best.Load()
	if !ok || v != 1234 || score != -0.5 {
		t.Errorf("got %d (%g, %v)", v, score, ok)
	}
	if best.Score() != -0.5 {
		t.Errorf("lock-free score %g", best.Score())
	}
}

func TestBestMin(t *testing.T) {
	best := NewMin[string](nil)
	if _, _, ok := best.Load(); ok {
		t.Fatal("empty record reported a value")
	}
	if !math.IsInf(best.Score(), 1) {
		t.Errorf("empty min record score %g", best.Score())
	}
	best.Offer(3, "c")
	best.Offer(1, "a")
	best.Offer(1, "b")
	best.Offer(math.NaN(), "nan")
	if v, score, _ := best.Load(); v != "a" || score != 1 {
		t.Errorf("got %q (%g)", v, score)
	}
}

func TestLocalFold(t *testing.T) {
	shared := NewMax(lessInt)
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Go(func() {
			var local Local[int]
			for i := w * 100; i < (w+1)*100; i++ {
				local.Consider(shared, float64(i%250), i)
			}
			local.Merge(shared)
		})
	}
	wg.Wait()

	// score 249 is reached by 249, 499 and 749
	if v, score, _ := shared.Load(); v != 249 || score != 249 {
		t.Errorf("got %d (%g)", v, score)
	}
}
