package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cockroachdb/swiss"
	"github.com/tidwall/hashmap"
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
	c := ""
	entries := 0
	repeat := 0
	valueSize := 0
	flag.StringVar(&c, "cache", "arena", "container to bench: arena, table, stdmap, swiss, hashmap or bigcache.")
	flag.IntVar(&entries, "entries", 2000000, "number of entries to test")
	flag.IntVar(&repeat, "repeat", 50, "number of repetitions")
	flag.IntVar(&valueSize, "value-size", 100, "size of single entry value in bytes")
	flag.Parse()

	debug.SetGCPercent(10)
	fmt.Println("Cache:             ", c)
	fmt.Println("Number of entries: ", entries)
	fmt.Println("Number of repeats: ", repeat)
	fmt.Println("Value size:        ", valueSize)

	f, err := foundation.New(foundation.DefaultOptions)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	var benchFunc func(entries, valueSize int)

	switch c {
	case "arena":
		benchFunc = arenaTable(f)
	case "table":
		benchFunc = table
	case "stdmap":
		benchFunc = stdMap
	case "swiss":
		benchFunc = swissMap
	case "hashmap":
		benchFunc = hashMap
	case "bigcache":
		benchFunc = bigCache
	default:
		fmt.Printf("unknown cache: %s", c)
		os.Exit(1)
	}

	benchFunc(entries, valueSize)
	fmt.Println("GC pause for startup: ", gcPause())
	for i := 0; i < repeat; i++ {
		benchFunc(entries, valueSize)
	}

	fmt.Printf("GC pause for %s: %s\n", c, gcPause())
}

// arenaTable keeps values in a linear allocator outside of the Go heap and
// only their offsets in the table, so the GC has no pointers to scan.
func arenaTable(f *foundation.Foundation) func(entries, valueSize int) {
	return func(entries, valueSize int) {
		l, err := foundation.NewLinear(f, "values", uintptr(entries*(valueSize+8)+1<<20))
		if err != nil {
			panic(err)
		}
		defer l.Destroy()

		m := foundation.NewTable[uint64](entries)
		for i := 0; i < entries; i++ {
			key, val := generateKeyValue(i, valueSize)
			off := l.Info().BytesAllocated()
			b, err := l.Alloc(uintptr(len(val)))
			if err != nil {
				panic(err)
			}
			copy(b, val)
			m.Insert(key, uint64(off))
		}
	}
}

func table(entries, valueSize int) {
	m := foundation.NewTable[[]byte](0)
	for i := 0; i < entries; i++ {
		key, val := generateKeyValue(i, valueSize)
		m.Insert(key, val)
	}
}

func stdMap(entries, valueSize int) {
	mapCache := make(map[string][]byte)
	for i := 0; i < entries; i++ {
		key, val := generateKeyValue(i, valueSize)
		mapCache[key] = val
	}
}

func swissMap(entries, valueSize int) {
	mapCache := swiss.New[string, []byte](8)
	for i := 0; i < entries; i++ {
		key, val := generateKeyValue(i, valueSize)
		mapCache.Put(key, val)
	}
}

func hashMap(entries, valueSize int) {
	mapCache := hashmap.New[string, []byte](8)
	for i := 0; i < entries; i++ {
		key, val := generateKeyValue(i, valueSize)
		mapCache.Set(key, val)
	}
}

func bigCache(entries, valueSize int) {
	config := bigcache.Config{
		Shards:             256,
		LifeWindow:         100 * time.Minute,
		MaxEntriesInWindow: entries,
		MaxEntrySize:       200,
		Verbose:            true,
	}

	bigcache, _ := bigcache.New(context.Background(), config)
	for i := 0; i < entries; i++ {
		key, val := generateKeyValue(i, valueSize)
		bigcache.Set(key, val)
	}
}

func generateKeyValue(index int, valSize int) (string, []byte) {
	key := fmt.Sprintf("key-%010d", index)
	fixedNumber := []byte(fmt.Sprintf("%010d", index))
	val := append(make([]byte, valSize-10), fixedNumber...)

	return key, val
}
