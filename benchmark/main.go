package main

import (
	"flag"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/xgzlucario/foundation"
)

var previousPause time.Duration

func gcPause() time.Duration {
	runtime.GC()
	var stats debug.GCStats
	debug.ReadGCStats(&stats)
	pause := stats.PauseTotal - previousPause
	previousPause = stats.PauseTotal
	return pause
}

func main() {
	alloc := ""
	entries := 0
	workers := 0
	size := 0
	flag.StringVar(&alloc, "alloc", "linear", "allocator to bench: linear, stack, heap or make.")
	flag.IntVar(&entries, "entries", 100*10000, "number of allocations per worker")
	flag.IntVar(&workers, "workers", 4, "number of goroutines sharing the allocator")
	flag.IntVar(&size, "size", 64, "size of a single allocation in bytes")
	flag.Parse()

	fmt.Println(alloc)
	fmt.Println("entries:", entries, "workers:", workers, "size:", size)

	options := foundation.DefaultOptions
	options.Synchronized = true
	f, err := foundation.New(options)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	benchFunc, err := newBenchFunc(f, alloc, uintptr(size))
	if err != nil {
		panic(err)
	}

	var mu sync.Mutex
	total := foundation.NewPercentile()

	start := time.Now()
	p := pool.New().WithMaxGoroutines(workers)
	for w := 0; w < workers; w++ {
		p.Go(func() {
			local := foundation.NewPercentile()
			for i := 0; i < entries; i++ {
				a := time.Now()
				benchFunc(i)
				local.AddSince(a)
			}
			mu.Lock()
			for _, q := range []float64{50, 90, 99, 99.9} {
				total.Add(local.Percentile(q))
			}
			mu.Unlock()
			fmt.Println("worker:", local)
		})
	}
	p.Wait()
	cost := time.Since(start)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fmt.Println("summary:", total)
	fmt.Println("heap inuse:", mem.HeapInuse/1024/1024, "mb")
	fmt.Println("pause:", gcPause())
	fmt.Println("cost:", cost)
	for _, st := range f.Registry().Snapshot() {
		fmt.Printf("%s: allocs %d, committed %d kb\n", st.Name, st.NumAllocs, st.BytesCommitted/1024)
	}
}

func newBenchFunc(f *foundation.Foundation, alloc string, size uintptr) (func(int), error) {
	switch alloc {
	case "linear":
		l, err := foundation.NewLinear(f, "bench", 1<<30)
		if err != nil {
			return nil, err
		}
		return func(int) {
			if _, err := l.Alloc(size); err != nil {
				if err := l.Reset(); err != nil {
					panic(err)
				}
			}
		}, nil

	case "stack":
		s, err := foundation.NewStack(f, "bench", 1<<30)
		if err != nil {
			return nil, err
		}
		return func(i int) {
			if _, _, err := s.Alloc(size, 16); err != nil || i%1024 == 1023 {
				if err := s.Reset(); err != nil {
					panic(err)
				}
			}
		}, nil

	case "heap":
		h, err := foundation.NewHeap(f, "bench", 1<<30)
		if err != nil {
			return nil, err
		}
		return func(int) {
			b, err := h.Alloc(size)
			if err != nil {
				panic(err)
			}
			if err := h.Free(b); err != nil {
				panic(err)
			}
		}, nil

	case "make":
		return func(int) {
			runtime.KeepAlive(make([]byte, size))
		}, nil
	}
	return nil, fmt.Errorf("unknown allocator: %s", alloc)
}
