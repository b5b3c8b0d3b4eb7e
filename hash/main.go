package main

import (
	"bytes"
	"flag"
	"fmt"
	"strconv"

	"github.com/xgzlucario/foundation"
	"golang.org/x/exp/rand"
)

func main() {
	hash := ""
	limit := 0
	flag.StringVar(&hash, "hash", "fnv1a", "hash function: fnv1a or xxh3.")
	flag.IntVar(&limit, "n", 0, "number of keys to insert, 0 runs forever")
	flag.Parse()

	var fn foundation.HashFn
	switch hash {
	case "fnv1a":
		fn = foundation.FNV1a
	case "xxh3":
		fn = foundation.XXH3
	default:
		panic(fmt.Sprintf("unknown hash: %s", hash))
	}

	m := foundation.NewTableHash[[]byte](0, fn)
	seen := map[uint64]string{}
	var collisions int

	for i := 0; limit == 0 || i < limit; i++ {
		if i%300000 == 0 {
			fmt.Println("progress:", i/10000, "w", "cap:", m.Cap(), "collisions:", collisions)
		}
		num := rand.Uint64()
		k := strconv.FormatUint(num, 36)
		v := []byte(strconv.FormatUint(num>>48, 36))

		if prev, ok := seen[fn(k)]; ok && prev != k {
			collisions++
			fmt.Printf("hash collision: %s %s\n", prev, k)
		}
		seen[fn(k)] = k

		m.Insert(k, v)

		val, ok := m.Search(k)
		if !ok || !bytes.Equal(val, v) {
			panic("val is not equal")
		}
		if i%7 == 0 {
			if !m.Delete(k) {
				panic("delete failed")
			}
			if _, ok := m.Search(k); ok {
				panic("deleted key found")
			}
		}
	}
	fmt.Println("keys:", m.Len(), "cap:", m.Cap(), "collisions:", collisions)
}
