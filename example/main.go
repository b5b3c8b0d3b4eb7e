package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/bytedance/sonic"
	"github.com/xgzlucario/foundation"
)

func main() {
	frames := 0
	verbose := false
	flag.IntVar(&frames, "frames", 600, "number of frames to simulate")
	flag.BoolVar(&verbose, "v", false, "log allocator events")
	flag.Parse()

	options := foundation.DefaultOptions
	if verbose {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	f, err := foundation.New(options)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	level, err := foundation.NewLinear(f, "level", 64<<20)
	if err != nil {
		panic(err)
	}
	frame, err := foundation.NewStack(f, "frame", 16<<20)
	if err != nil {
		panic(err)
	}
	assets, err := foundation.NewHeap(f, "assets", 256<<20)
	if err != nil {
		panic(err)
	}

	// level data lives until exit.
	for i := 0; i < 1000; i++ {
		if _, err := level.AllocAt(uintptr(64+i%512), "example/main.go", 45); err != nil {
			panic(err)
		}
	}

	a := time.Now()
	var textures [][]byte
	for i := 0; i < frames; i++ {
		top := frame.Top()
		for j := 0; j < 64; j++ {
			if _, _, err := frame.Alloc(uintptr(256+j*32), 16); err != nil {
				panic(err)
			}
		}

		// stream a texture in, and one out.
		tex, err := assets.Alloc(uintptr(4096 * (1 + i%16)))
		if err != nil {
			panic(err)
		}
		textures = append(textures, tex)
		if len(textures) > 32 {
			if err := assets.Free(textures[0]); err != nil {
				panic(err)
			}
			textures = textures[1:]
		}

		if err := frame.Free(top); err != nil {
			panic(err)
		}

		if i%100 == 0 {
			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)
			fmt.Printf("[Frame] %d\t %.2fs\t assets: %dk\t heap inuse: %dmb\n",
				i, time.Since(a).Seconds(),
				assets.Info().BytesAllocated()/1024, mem.HeapInuse/1024/1024)
		}
	}

	buf, err := sonic.ConfigDefault.MarshalIndent(f.Registry().Snapshot(), "", "  ")
	if err != nil {
		panic(err)
	}
	for _, st := range f.Registry().Snapshot() {
		fmt.Printf("%-8s used: %.4f%%\t committed: %.4f%%\n", st.Name, st.UsedRate(), st.CommitRate())
	}
	if verbose {
		fmt.Println(string(buf))
	}
}
