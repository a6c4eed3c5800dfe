package physics2d

import (
	"slices"
)

type proxyPair struct {
	proxyIDA int
	proxyIDB int
}

func comparePairs(a, b proxyPair) int {
	if a.proxyIDA != b.proxyIDA {
		return a.proxyIDA - b.proxyIDA
	}
	return a.proxyIDB - b.proxyIDB
}

/// BroadPhaseAddPair receives each new overlapping pair once per update.
/// An error aborts the update.
type BroadPhaseAddPair[T any] func(userDataA, userDataB T) error

/// The broad-phase is used for computing pairs and performing volume queries and ray casts.
/// This broad-phase does not persist pairs. Instead, this reports potentially new pairs.
/// It is up to the client to consume the new pairs and to track subsequent overlap.
type BroadPhase[T any] struct {
	tree       *DynamicTree[T]
	proxyCount int

	moveBuffer []int
	pairBuffer []proxyPair

	queryProxyID int
}

func NewBroadPhase[T any]() *BroadPhase[T] {
	return &BroadPhase[T]{
		tree:       NewDynamicTree[T](),
		moveBuffer: make([]int, 0, 16),
		pairBuffer: make([]proxyPair, 0, 16),
	}
}

/// CreateProxy adds a proxy with the initial AABB. Pairs are not reported
/// until UpdatePairs is called.
func (bp *BroadPhase[T]) CreateProxy(box AABB, userData T) int {
	proxyID := bp.tree.CreateProxy(box, userData)
	bp.proxyCount++
	bp.bufferMove(proxyID)
	return proxyID
}

func (bp *BroadPhase[T]) DestroyProxy(proxyID int) {
	bp.unBufferMove(proxyID)
	bp.proxyCount--
	bp.tree.DestroyProxy(proxyID)
}

/// MoveProxy updates a proxy. Call it as many times as you like, then
/// UpdatePairs to finalize the proxy pairs for the time step.
func (bp *BroadPhase[T]) MoveProxy(proxyID int, box AABB, displacement Vec2) {
	if bp.tree.MoveProxy(proxyID, box, displacement) {
		bp.bufferMove(proxyID)
	}
}

/// TouchProxy makes the proxy report its pairs again on the next update.
func (bp *BroadPhase[T]) TouchProxy(proxyID int) {
	bp.bufferMove(proxyID)
}

func (bp *BroadPhase[T]) FatAABB(proxyID int) AABB {
	return bp.tree.FatAABB(proxyID)
}

func (bp *BroadPhase[T]) UserData(proxyID int) T {
	return bp.tree.UserData(proxyID)
}

/// TestOverlap reports whether the fat AABBs of two proxies overlap.
func (bp *BroadPhase[T]) TestOverlap(proxyIDA, proxyIDB int) bool {
	return bp.tree.FatAABB(proxyIDA).Intersects(bp.tree.FatAABB(proxyIDB))
}

func (bp *BroadPhase[T]) ProxyCount() int {
	return bp.proxyCount
}

func (bp *BroadPhase[T]) TreeHeight() int {
	return bp.tree.Height()
}

func (bp *BroadPhase[T]) TreeBalance() int {
	return bp.tree.MaxBalance()
}

func (bp *BroadPhase[T]) TreeQuality() float64 {
	return bp.tree.AreaRatio()
}

func (bp *BroadPhase[T]) Tree() *DynamicTree[T] {
	return bp.tree
}

/// UpdatePairs reports each overlapping pair involving a moved proxy once,
/// with the lower proxy id first, in ascending order.
func (bp *BroadPhase[T]) UpdatePairs(addPair BroadPhaseAddPair[T]) error {
	// Reset pair buffer
	bp.pairBuffer = bp.pairBuffer[:0]

	// Perform tree queries for all moving proxies.
	for _, proxyID := range bp.moveBuffer {
		bp.queryProxyID = proxyID
		if bp.queryProxyID == NullNode {
			continue
		}

		// We have to query the tree with the fat AABB so that
		// we don't fail to create a pair that may touch later.
		fatAABB := bp.tree.FatAABB(bp.queryProxyID)

		// Query tree, create pairs and add them pair buffer.
		bp.tree.Query(bp.queryCallback, fatAABB)
	}

	// Reset move buffer
	bp.moveBuffer = bp.moveBuffer[:0]

	// Sort the pair buffer to expose duplicates.
	slices.SortFunc(bp.pairBuffer, comparePairs)

	// Send the pairs back to the client.
	for i := 0; i < len(bp.pairBuffer); {
		primaryPair := bp.pairBuffer[i]
		userDataA := bp.tree.UserData(primaryPair.proxyIDA)
		userDataB := bp.tree.UserData(primaryPair.proxyIDB)

		if err := addPair(userDataA, userDataB); err != nil {
			// Pairs not yet delivered are found again on the next update.
			for _, pair := range bp.pairBuffer[i:] {
				bp.rebufferMove(pair.proxyIDA)
				bp.rebufferMove(pair.proxyIDB)
			}
			bp.pairBuffer = bp.pairBuffer[:0]
			return err
		}
		i++

		// Skip any duplicate pairs.
		for i < len(bp.pairBuffer) && bp.pairBuffer[i] == primaryPair {
			i++
		}
	}

	return nil
}

/// Query calls fn for each proxy whose fat AABB overlaps box.
func (bp *BroadPhase[T]) Query(fn TreeQueryCallback, box AABB) {
	bp.tree.Query(fn, box)
}

func (bp *BroadPhase[T]) RayCast(fn TreeRayCastCallback, input RayCastInput) {
	bp.tree.RayCast(fn, input)
}

func (bp *BroadPhase[T]) bufferMove(proxyID int) {
	bp.moveBuffer = append(bp.moveBuffer, proxyID)
}

func (bp *BroadPhase[T]) rebufferMove(proxyID int) {
	if !slices.Contains(bp.moveBuffer, proxyID) {
		bp.bufferMove(proxyID)
	}
}

func (bp *BroadPhase[T]) unBufferMove(proxyID int) {
	for i, id := range bp.moveBuffer {
		if id == proxyID {
			bp.moveBuffer[i] = NullNode
		}
	}
}

// queryCallback is called from the tree query when building the pair buffer.
func (bp *BroadPhase[T]) queryCallback(proxyID int) bool {
	// A proxy cannot form a pair with itself.
	if proxyID == bp.queryProxyID {
		return true
	}

	bp.pairBuffer = append(bp.pairBuffer, proxyPair{
		proxyIDA: min(proxyID, bp.queryProxyID),
		proxyIDB: max(proxyID, bp.queryProxyID),
	})

	return true
}
