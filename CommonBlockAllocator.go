package physics2d

import (
	"fmt"

	"github.com/charmbracelet/log"
)

const (
	ChunkSize      = 16 * 1024
	MaxBlockSize   = 640
	BlockSizeCount = 14

	/// LargeClass marks blocks served by the general allocator.
	LargeClass = -1
)

var blockSizes = [BlockSizeCount]int{
	16,  // 0
	32,  // 1
	64,  // 2
	96,  // 3
	128, // 4
	160, // 5
	192, // 6
	224, // 7
	256, // 8
	320, // 9
	384, // 10
	448, // 11
	512, // 12
	640, // 13
}

// blockSizeLookup maps a request size to its size class.
var blockSizeLookup [MaxBlockSize + 1]uint8

func init() {
	j := 0
	for i := 1; i <= MaxBlockSize; i++ {
		if i > blockSizes[j] {
			j++
		}
		blockSizeLookup[i] = uint8(j)
	}
}

/// BlockSize returns the block size of a class.
func BlockSize(class int) int {
	return blockSizes[class]
}

/// SizeClass returns the class serving requests of size bytes, or
/// LargeClass when the request exceeds MaxBlockSize.
func SizeClass(size int) int {
	if size <= 0 {
		return 0
	}
	if size > MaxBlockSize {
		return LargeClass
	}
	return int(blockSizeLookup[size])
}

/// Block identifies a raw block handed out by BlockAllocator.Alloc.
type Block struct {
	Class int
	Index int32
}

type AllocatorStats struct {
	Allocs      [BlockSizeCount]int
	Frees       [BlockSizeCount]int
	LargeAllocs int
	LargeFrees  int
	InUse       int
	Chunks      int
	TotalSlack  int
}

type sizeClass struct {
	chunks [][]byte
	free   []int32
	// requested size per block, zero when the block is free
	sizes []int32
}

type largeBlock struct {
	data []byte
	live bool
}

// pools registered with the allocator are dropped along with it.
type resettable interface {
	reset()
}

/// BlockAllocator is a small object allocator with fourteen size classes
/// carved out of 16KiB chunks. Blocks are never returned to the runtime
/// until Clear.
///
/// A BlockAllocator is owned by a single goroutine; it performs no locking.
type BlockAllocator struct {
	classes   [BlockSizeCount]sizeClass
	large     []largeBlock
	largeFree []int32

	stats     AllocatorStats
	maxChunks int
	pools     []resettable
	logger    *log.Logger
}

func NewBlockAllocator() *BlockAllocator {
	return &BlockAllocator{
		logger: discardLogger(),
	}
}

/// SetChunkLimit caps the number of chunks; zero means unlimited.
func (a *BlockAllocator) SetChunkLimit(chunks int) {
	a.maxChunks = chunks
}

func (a *BlockAllocator) SetLogger(logger *log.Logger) {
	a.logger = logger
}

func (a *BlockAllocator) Stats() AllocatorStats {
	return a.stats
}

// reserveChunk accounts for a new chunk of the given class.
func (a *BlockAllocator) reserveChunk(class int) error {
	if a.maxChunks > 0 && a.stats.Chunks >= a.maxChunks {
		return fmt.Errorf("class %d (%d bytes) after %d chunks: %w",
			class, blockSizes[class], a.stats.Chunks, ErrAllocatorExhausted)
	}
	a.stats.Chunks++
	a.logger.Debug("allocator grew", "class", class, "block", blockSizes[class], "chunks", a.stats.Chunks)
	return nil
}

func (a *BlockAllocator) noteAlloc(class, size int) {
	a.stats.InUse++
	if class == LargeClass {
		a.stats.LargeAllocs++
		return
	}
	a.stats.Allocs[class]++
	a.stats.TotalSlack += blockSizes[class] - size
}

func (a *BlockAllocator) noteFree(class, size int) {
	a.stats.InUse--
	if class == LargeClass {
		a.stats.LargeFrees++
		return
	}
	a.stats.Frees[class]++
	a.stats.TotalSlack -= blockSizes[class] - size
}

/// Alloc returns a block of at least size bytes. Requests above
/// MaxBlockSize go to the general allocator.
func (a *BlockAllocator) Alloc(size int) (Block, error) {
	if size <= 0 {
		return Block{}, fmt.Errorf("physics2d: alloc of %d bytes", size)
	}

	class := SizeClass(size)
	if class == LargeClass {
		var index int32
		if n := len(a.largeFree); n > 0 {
			index = a.largeFree[n-1]
			a.largeFree = a.largeFree[:n-1]
			a.large[index] = largeBlock{data: make([]byte, size), live: true}
		} else {
			index = int32(len(a.large))
			a.large = append(a.large, largeBlock{data: make([]byte, size), live: true})
		}
		a.noteAlloc(LargeClass, size)
		return Block{Class: LargeClass, Index: index}, nil
	}

	sc := &a.classes[class]
	if len(sc.free) == 0 {
		if err := a.reserveChunk(class); err != nil {
			return Block{}, err
		}

		blockSize := blockSizes[class]
		perChunk := ChunkSize / blockSize
		base := int32(len(sc.chunks) * perChunk)
		sc.chunks = append(sc.chunks, make([]byte, ChunkSize))
		sc.sizes = append(sc.sizes, make([]int32, perChunk)...)

		// Push in reverse so the lowest index is handed out first.
		for i := perChunk - 1; i >= 0; i-- {
			sc.free = append(sc.free, base+int32(i))
		}
	}

	n := len(sc.free)
	index := sc.free[n-1]
	sc.free = sc.free[:n-1]
	sc.sizes[index] = int32(size)

	a.noteAlloc(class, size)
	return Block{Class: class, Index: index}, nil
}

/// Bytes returns the memory behind a live block.
func (a *BlockAllocator) Bytes(b Block) []byte {
	if b.Class == LargeClass {
		lb := a.large[b.Index]
		assert(lb.live, "access to freed large block")
		return lb.data
	}

	sc := &a.classes[b.Class]
	size := int(sc.sizes[b.Index])
	assert(size > 0, "access to freed block")

	blockSize := blockSizes[b.Class]
	perChunk := ChunkSize / blockSize
	chunk := sc.chunks[int(b.Index)/perChunk]
	offset := (int(b.Index) % perChunk) * blockSize
	return chunk[offset : offset+size : offset+blockSize]
}

/// Free returns the block to its class free list.
func (a *BlockAllocator) Free(b Block) {
	if b.Class == LargeClass {
		lb := &a.large[b.Index]
		assert(lb.live, "double free of large block")
		size := len(lb.data)
		*lb = largeBlock{}
		a.largeFree = append(a.largeFree, b.Index)
		a.noteFree(LargeClass, size)
		return
	}

	sc := &a.classes[b.Class]
	size := int(sc.sizes[b.Index])
	assert(size > 0, "double free of block")

	// Zero the block so the next owner starts clean.
	clear(a.Bytes(b))
	sc.sizes[b.Index] = 0

	sc.free = append(sc.free, b.Index)
	a.noteFree(b.Class, size)
}

/// Clear releases every chunk. All outstanding blocks, including objects
/// held by pools built on this allocator, become invalid.
func (a *BlockAllocator) Clear() {
	for i := range a.classes {
		a.classes[i] = sizeClass{}
	}
	a.large = nil
	a.largeFree = nil
	a.stats = AllocatorStats{}

	for _, p := range a.pools {
		p.reset()
	}
}

func (a *BlockAllocator) register(p resettable) {
	a.pools = append(a.pools, p)
}
