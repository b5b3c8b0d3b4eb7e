package foundation

import (
	"strconv"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	assert := assert.New(t)

	r := NewRegistry(0)
	assert.ErrorIs(r.Register(nil), ErrNilAllocator)
	assert.Nil(r.ByName("none"))
	assert.Nil(r.ByIndex(0))

	infos := make([]*AllocatorInfo, 20)
	for i := range infos {
		infos[i] = &AllocatorInfo{name: "alloc-" + strconv.Itoa(i), kind: KindLinear}
		assert.Nil(r.Register(infos[i]))
	}
	assert.Equal(20, r.Len())
	for _, info := range infos {
		assert.Same(info, r.ByName(info.Name()))
	}

	seen := map[*AllocatorInfo]bool{}
	for i := 0; i < r.Len(); i++ {
		seen[r.ByIndex(i)] = true
	}
	assert.Len(seen, 20)

	// a replaced entry is not removed by its old owner.
	dup := &AllocatorInfo{name: "alloc-0"}
	assert.Nil(r.Register(dup))
	assert.Equal(20, r.Len())
	assert.False(r.Unregister(infos[0]))
	assert.Same(dup, r.ByName("alloc-0"))
	assert.True(r.Unregister(dup))
	assert.False(r.Unregister(dup))
	assert.False(r.Unregister(nil))
	assert.Equal(19, r.Len())

	var count int
	r.All(func(*AllocatorInfo) bool {
		count++
		return count < 5
	})
	assert.Equal(5, count)

	r.Close()
	assert.Equal(0, r.Len())
	assert.Nil(r.ByName("alloc-1"))
	assert.ErrorIs(r.Register(infos[1]), ErrClosed)
	assert.False(r.Unregister(infos[1]))
	assert.Empty(r.Snapshot())
}

func TestRegistrySnapshot(t *testing.T) {
	assert := assert.New(t)
	f, _ := newTestFoundation(t)

	l, _ := NewLinear(f, "linear", 1<<20)
	s, _ := NewStack(f, "stack", 1<<20)
	_, _ = l.AllocAt(100, "main.go", 10)
	_, _, _ = s.Alloc(5000, 0)

	stats := f.Registry().Snapshot()
	assert.Len(stats, 2)

	byName := map[string]AllocatorStat{}
	for _, st := range stats {
		byName[st.Name] = st
	}
	ls := byName["linear"]
	assert.Equal("linear", ls.Kind)
	assert.Equal(uint64(100), ls.BytesAllocated)
	assert.Equal(uint64(testPage), ls.BytesCommitted)
	assert.Equal(uint64(1<<20), ls.BytesReserved)
	assert.Equal([]AllocationRecord{{Address: l.Base(), Size: testPage, File: "main.go", Line: 10}}, ls.AllocationData)
	assert.InDelta(100.0/float64(1<<20)*100, ls.UsedRate(), 1e-9)
	assert.InDelta(float64(testPage)/float64(1<<20)*100, ls.CommitRate(), 1e-9)

	ss := byName["stack"]
	assert.Equal("stack", ss.Kind)
	assert.Equal(uint64(2*testPage), ss.BytesCommitted)
	assert.Equal(uint64(2), ss.PagesCommitted)

	// json
	buf, err := f.Registry().MarshalJSON()
	assert.Nil(err)
	var decoded []AllocatorStat
	assert.Nil(sonic.Unmarshal(buf, &decoded))
	assert.ElementsMatch(stats, decoded)

	// compressed
	buf, err = EncodeSnapshot(stats)
	assert.Nil(err)
	decoded, err = DecodeSnapshot(buf)
	assert.Nil(err)
	assert.Equal(stats, decoded)

	_, err = DecodeSnapshot([]byte("not s2"))
	assert.Error(err)

	assert.Equal(0.0, AllocatorStat{}.UsedRate())
	assert.Equal(0.0, AllocatorStat{}.CommitRate())
	assert.Equal("NULL", (*AllocatorInfo)(nil).Stat().Name)
}
