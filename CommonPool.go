package physics2d

import (
	"fmt"
	"unsafe"
)

/// Handle is a generation-checked reference to an object in a Pool. The zero
/// Handle never resolves.
type Handle struct {
	index int32
	gen   uint32
}

func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.index, h.gen)
}

type poolSlot[T any] struct {
	value *T
	gen   uint32
	live  bool
}

/// Pool is a typed slab on top of a BlockAllocator. Slots are grouped in
/// chunks sized by the allocator class of T and every Alloc hands out a
/// fresh object, so a pointer kept past Free never aliases the object that
/// reuses its slot. Free leaves the released object untouched for its
/// owner to mark as detached. Types larger than MaxBlockSize get one slot
/// per chunk and are counted as large allocations.
type Pool[T any] struct {
	allocator *BlockAllocator
	class     int
	size      int
	perChunk  int

	chunks [][]poolSlot[T]
	free   []int32

	// Handles minted after a Clear start above every generation seen so
	// far, so handles from before the Clear never match.
	baseGen uint32
	maxGen  uint32
}

func NewPool[T any](allocator *BlockAllocator) *Pool[T] {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		size = 1
	}

	p := &Pool[T]{
		allocator: allocator,
		class:     SizeClass(size),
		size:      size,
		baseGen:   1,
	}

	if p.class == LargeClass {
		p.perChunk = 1
	} else {
		p.perChunk = ChunkSize / blockSizes[p.class]
	}

	allocator.register(p)
	return p
}

/// Class returns the allocator size class serving T.
func (p *Pool[T]) Class() int {
	return p.class
}

func (p *Pool[T]) grow() error {
	if p.class != LargeClass {
		if err := p.allocator.reserveChunk(p.class); err != nil {
			return err
		}
	}

	base := int32(len(p.chunks) * p.perChunk)
	chunk := make([]poolSlot[T], p.perChunk)
	for i := range chunk {
		chunk[i].gen = p.baseGen
	}
	p.chunks = append(p.chunks, chunk)

	for i := p.perChunk - 1; i >= 0; i-- {
		p.free = append(p.free, base+int32(i))
	}
	return nil
}

func (p *Pool[T]) slot(index int32) *poolSlot[T] {
	return &p.chunks[int(index)/p.perChunk][int(index)%p.perChunk]
}

/// Alloc returns a zeroed object and its handle.
func (p *Pool[T]) Alloc() (Handle, *T, error) {
	if len(p.free) == 0 {
		if err := p.grow(); err != nil {
			return Handle{}, nil, err
		}
	}

	n := len(p.free)
	index := p.free[n-1]
	p.free = p.free[:n-1]

	s := p.slot(index)
	s.value = new(T)
	s.live = true
	if s.gen > p.maxGen {
		p.maxGen = s.gen
	}

	p.allocator.noteAlloc(p.class, p.size)
	return Handle{index: index, gen: s.gen}, s.value, nil
}

/// Get resolves a handle, returning nil if it is stale.
func (p *Pool[T]) Get(h Handle) *T {
	if h.gen == 0 || h.index < 0 || int(h.index) >= len(p.chunks)*p.perChunk {
		return nil
	}
	s := p.slot(h.index)
	if !s.live || s.gen != h.gen {
		return nil
	}
	return s.value
}

/// Free releases the object behind h. Stale handles are ignored and
/// reported as false.
func (p *Pool[T]) Free(h Handle) bool {
	if p.Get(h) == nil {
		return false
	}

	s := p.slot(h.index)
	s.value = nil
	s.live = false
	s.gen++
	if s.gen > p.maxGen {
		p.maxGen = s.gen
	}

	p.free = append(p.free, h.index)
	p.allocator.noteFree(p.class, p.size)
	return true
}

/// Live returns the number of allocated objects.
func (p *Pool[T]) Live() int {
	return len(p.chunks)*p.perChunk - len(p.free)
}

func (p *Pool[T]) reset() {
	p.chunks = nil
	p.free = nil
	p.baseGen = p.maxGen + 1
	p.maxGen = p.baseGen
}
