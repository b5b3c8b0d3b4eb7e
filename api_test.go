package foundation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIRegistry(t *testing.T) {
	assert := assert.New(t)

	r := NewAPIRegistry(0)
	assert.Nil(r.Set("renderer", "1.2.3", "vulkan"))
	assert.Equal(1, r.Len())

	impl, err := r.Get("renderer", "")
	assert.Nil(err)
	assert.Equal("vulkan", impl)

	impl, err = r.Get("renderer", "^1.2")
	assert.Nil(err)
	assert.Equal("vulkan", impl)

	_, err = r.Get("renderer", ">= 2.0")
	assert.ErrorIs(err, ErrNotFound)
	_, err = r.Get("renderer", "not a constraint")
	assert.Error(err)
	_, err = r.Get("audio", "")
	assert.ErrorIs(err, ErrNotFound)

	api, ok := r.Lookup("renderer")
	assert.True(ok)
	assert.Equal("1.2.3", api.Version.String())

	// a new version replaces the old one.
	assert.Nil(r.Set("renderer", "2.0.0", "metal"))
	impl, err = r.Get("renderer", ">= 2.0")
	assert.Nil(err)
	assert.Equal("metal", impl)
	assert.Equal(1, r.Len())

	assert.Error(r.Set("renderer", "x.y", "bad"))
	assert.ErrorIs(r.Set("", "1.0.0", "bad"), ErrInvalidOptions)
	assert.ErrorIs(r.Set("nil", "1.0.0", nil), ErrInvalidOptions)

	s, err := GetAPI[string](r, "renderer", "")
	assert.Nil(err)
	assert.Equal("metal", s)
	_, err = GetAPI[int](r, "renderer", "")
	assert.ErrorIs(err, ErrNotFound)

	assert.True(r.Remove("renderer"))
	assert.False(r.Remove("renderer"))

	r.Close()
	assert.Equal(0, r.Len())
	assert.ErrorIs(r.Set("renderer", "1.0.0", "gl"), ErrClosed)
	assert.False(r.Remove("renderer"))
	_, ok = r.Lookup("renderer")
	assert.False(ok)
}

func TestPublishedAPIs(t *testing.T) {
	assert := assert.New(t)
	f, _ := newTestFoundation(t)

	linear, err := GetAPI[*LinearAllocator](f.APIs(), LinearAllocatorAPI, "^1")
	assert.Nil(err)
	l, err := linear.Create("from-api", 1<<20)
	assert.Nil(err)
	assert.Same(l.Info(), f.Registry().ByName("from-api"))

	stack, err := GetAPI[*StackAllocator](f.APIs(), StackAllocatorAPI, "1.0.x")
	assert.Nil(err)
	s, err := stack.Create("stack-api", 1<<20)
	assert.Nil(err)
	assert.Equal(KindStack, s.Info().Kind())

	heap, err := GetAPI[*HeapAllocator](f.APIs(), HeapAllocatorAPI, "")
	assert.Nil(err)
	h, err := heap.Create("heap-api", 1<<20)
	assert.Nil(err)
	assert.Equal(KindHeap, h.Info().Kind())

	registry, err := GetAPI[*Registry](f.APIs(), RegistryAPI, ">= 1.0.0")
	assert.Nil(err)
	assert.Same(f.Registry(), registry)
	assert.Equal(3, registry.Len())

	_, err = GetAPI[*LinearAllocator](f.APIs(), LinearAllocatorAPI, "^2")
	assert.ErrorIs(err, ErrNotFound)
}
