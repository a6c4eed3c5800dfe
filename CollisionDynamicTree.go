package physics2d

import (
	"math"
)

/// TreeQueryCallback is called for each leaf overlapping the query box.
/// Return false to terminate the query.
type TreeQueryCallback func(proxyID int) bool

/// TreeRayCastCallback is called for each leaf whose box the ray crosses.
/// Return 0 to terminate, the input max fraction to continue unchanged, or
/// a smaller fraction to clip the ray.
type TreeRayCastCallback func(input RayCastInput, proxyID int) float64

const NullNode = -1

type treeNode[T any] struct {
	/// Enlarged AABB
	box AABB

	userData T

	// Parent for live nodes, next free node otherwise.
	parent int

	child1 int
	child2 int

	// leaf = 0, free node = -1
	height int
}

func (node *treeNode[T]) isLeaf() bool {
	return node.child1 == NullNode
}

/// A dynamic AABB tree broad-phase, inspired by Nathanael Presson's btDbvt.
/// A dynamic tree arranges data in a binary tree to accelerate
/// queries such as volume queries and ray casts. Leafs are proxies
/// with an AABB. In the tree we expand the proxy AABB by AABBExtension
/// so that the proxy AABB is bigger than the client object. This allows the client
/// object to move by small amounts without triggering a tree update.
///
/// Nodes are pooled and relocatable, so we use node indices rather than pointers.
type DynamicTree[T any] struct {
	root      int
	nodes     []treeNode[T]
	nodeCount int
	freeList  int

	insertionCount int
}

func NewDynamicTree[T any]() *DynamicTree[T] {
	tree := &DynamicTree[T]{
		root: NullNode,
	}
	tree.nodes = make([]treeNode[T], 16)
	tree.linkFree(0)
	tree.freeList = 0
	return tree
}

// linkFree threads nodes[from:] into a free list.
func (tree *DynamicTree[T]) linkFree(from int) {
	capacity := len(tree.nodes)
	for i := from; i < capacity-1; i++ {
		tree.nodes[i].parent = i + 1
		tree.nodes[i].height = -1
	}
	tree.nodes[capacity-1].parent = NullNode
	tree.nodes[capacity-1].height = -1
}

// Allocate a node from the pool. Grow the pool if necessary.
func (tree *DynamicTree[T]) allocateNode() int {
	// Expand the node pool as needed.
	if tree.freeList == NullNode {
		assert(tree.nodeCount == len(tree.nodes), "tree free list out of sync")

		// The free list is empty. Rebuild a bigger pool.
		capacity := len(tree.nodes)
		tree.nodes = append(tree.nodes, make([]treeNode[T], capacity)...)
		tree.linkFree(tree.nodeCount)
		tree.freeList = tree.nodeCount
	}

	// Peel a node off the free list.
	nodeID := tree.freeList
	node := &tree.nodes[nodeID]
	tree.freeList = node.parent
	var zero T
	node.parent = NullNode
	node.child1 = NullNode
	node.child2 = NullNode
	node.height = 0
	node.userData = zero
	tree.nodeCount++

	return nodeID
}

// Return a node to the pool.
func (tree *DynamicTree[T]) freeNode(nodeID int) {
	assert(0 <= nodeID && nodeID < len(tree.nodes), "tree node out of range")
	assert(0 < tree.nodeCount, "tree has no nodes to free")
	var zero T
	tree.nodes[nodeID].userData = zero
	tree.nodes[nodeID].parent = tree.freeList
	tree.nodes[nodeID].height = -1
	tree.freeList = nodeID
	tree.nodeCount--
}

/// CreateProxy inserts a leaf holding a fattened copy of box. The returned
/// id stays valid until DestroyProxy.
func (tree *DynamicTree[T]) CreateProxy(box AABB, userData T) int {
	proxyID := tree.allocateNode()

	node := &tree.nodes[proxyID]
	node.box = box.Fatten(AABBExtension)
	node.userData = userData
	node.height = 0

	tree.insertLeaf(proxyID)

	return proxyID
}

func (tree *DynamicTree[T]) DestroyProxy(proxyID int) {
	assert(0 <= proxyID && proxyID < len(tree.nodes), "proxy out of range")
	assert(tree.nodes[proxyID].isLeaf(), "proxy is not a leaf")

	tree.removeLeaf(proxyID)
	tree.freeNode(proxyID)
}

/// MoveProxy refits a proxy whose tight box no longer fits its fat box. The
/// new fat box is extended along displacement to anticipate further motion.
/// It reports whether the tree changed.
func (tree *DynamicTree[T]) MoveProxy(proxyID int, box AABB, displacement Vec2) bool {
	assert(0 <= proxyID && proxyID < len(tree.nodes), "proxy out of range")
	assert(tree.nodes[proxyID].isLeaf(), "proxy is not a leaf")

	if tree.nodes[proxyID].box.Encloses(box) {
		return false
	}

	tree.removeLeaf(proxyID)

	// Extend AABB.
	b := box.Fatten(AABBExtension)

	// Predict AABB displacement.
	d := displacement.Scale(AABBMultiplier)

	if d.X < 0.0 {
		b.Lo.X += d.X
	} else {
		b.Hi.X += d.X
	}

	if d.Y < 0.0 {
		b.Lo.Y += d.Y
	} else {
		b.Hi.Y += d.Y
	}

	tree.nodes[proxyID].box = b

	tree.insertLeaf(proxyID)

	return true
}

func (tree *DynamicTree[T]) UserData(proxyID int) T {
	assert(0 <= proxyID && proxyID < len(tree.nodes), "proxy out of range")
	return tree.nodes[proxyID].userData
}

func (tree *DynamicTree[T]) FatAABB(proxyID int) AABB {
	assert(0 <= proxyID && proxyID < len(tree.nodes), "proxy out of range")
	return tree.nodes[proxyID].box
}

/// Query calls fn for every proxy whose fat box overlaps box.
func (tree *DynamicTree[T]) Query(fn TreeQueryCallback, box AABB) {
	stack := NewGrowableStack[int](64)
	stack.Push(tree.root)

	for stack.Count() > 0 {
		nodeID, _ := stack.Pop()
		if nodeID == NullNode {
			continue
		}

		node := &tree.nodes[nodeID]

		if node.box.Intersects(box) {
			if node.isLeaf() {
				if !fn(nodeID) {
					return
				}
			} else {
				stack.Push(node.child1)
				stack.Push(node.child2)
			}
		}
	}
}

/// RayCast calls fn for every proxy whose fat box the segment may cross.
func (tree *DynamicTree[T]) RayCast(fn TreeRayCastCallback, input RayCastInput) {
	p1 := input.P1
	p2 := input.P2
	r, length := p2.Sub(p1).Normalize()
	if length == 0.0 {
		return
	}

	// v is perpendicular to the segment.
	v := Vec2CrossScalarVector(1.0, r)
	absV := Vec2Abs(v)

	// Separating axis for segment (Gino, p80).
	// |dot(v, p1 - c)| > dot(|v|, h)

	maxFraction := input.MaxFraction

	// Build a bounding box for the segment.
	segment := MakeAABB(p1, p1.Add(p2.Sub(p1).Scale(maxFraction)))

	stack := NewGrowableStack[int](64)
	stack.Push(tree.root)

	for stack.Count() > 0 {
		nodeID, _ := stack.Pop()
		if nodeID == NullNode {
			continue
		}

		node := &tree.nodes[nodeID]

		// Inclusive overlap: an axis aligned ray has a zero-width box.
		if node.box.Lo.X > segment.Hi.X || segment.Lo.X > node.box.Hi.X ||
			node.box.Lo.Y > segment.Hi.Y || segment.Lo.Y > node.box.Hi.Y {
			continue
		}

		c := node.box.Centroid()
		h := node.box.HalfExtent()
		separation := math.Abs(Vec2Dot(v, p1.Sub(c))) - Vec2Dot(absV, h)
		if separation > 0.0 {
			continue
		}

		if node.isLeaf() {
			subInput := RayCastInput{P1: input.P1, P2: input.P2, MaxFraction: maxFraction}

			value := fn(subInput, nodeID)

			if value == 0.0 {
				// The client has terminated the ray cast.
				return
			}

			if value > 0.0 {
				// Update segment bounding box.
				maxFraction = value
				segment = MakeAABB(p1, p1.Add(p2.Sub(p1).Scale(maxFraction)))
			}
		} else {
			stack.Push(node.child1)
			stack.Push(node.child2)
		}
	}
}

func (tree *DynamicTree[T]) insertLeaf(leaf int) {
	tree.insertionCount++

	if tree.root == NullNode {
		tree.root = leaf
		tree.nodes[tree.root].parent = NullNode
		return
	}

	// Find the best sibling for this node
	leafAABB := tree.nodes[leaf].box
	index := tree.root
	for !tree.nodes[index].isLeaf() {
		child1 := tree.nodes[index].child1
		child2 := tree.nodes[index].child2

		area := tree.nodes[index].box.Perimeter()

		combinedArea := tree.nodes[index].box.Combine(leafAABB).Perimeter()

		// Cost of creating a new parent for this node and the new leaf
		cost := 2.0 * combinedArea

		// Minimum cost of pushing the leaf further down the tree
		inheritanceCost := 2.0 * (combinedArea - area)

		// Cost of descending into a child
		descend := func(child int) float64 {
			newArea := leafAABB.Combine(tree.nodes[child].box).Perimeter()
			if tree.nodes[child].isLeaf() {
				return newArea + inheritanceCost
			}
			return (newArea - tree.nodes[child].box.Perimeter()) + inheritanceCost
		}
		cost1 := descend(child1)
		cost2 := descend(child2)

		// Descend according to the minimum cost.
		if cost < cost1 && cost < cost2 {
			break
		}

		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index

	// Create a new parent.
	oldParent := tree.nodes[sibling].parent
	newParent := tree.allocateNode()
	tree.nodes[newParent].parent = oldParent
	tree.nodes[newParent].box = leafAABB.Combine(tree.nodes[sibling].box)
	tree.nodes[newParent].height = tree.nodes[sibling].height + 1
	tree.nodes[newParent].child1 = sibling
	tree.nodes[newParent].child2 = leaf
	tree.nodes[sibling].parent = newParent
	tree.nodes[leaf].parent = newParent

	if oldParent != NullNode {
		// The sibling was not the root.
		if tree.nodes[oldParent].child1 == sibling {
			tree.nodes[oldParent].child1 = newParent
		} else {
			tree.nodes[oldParent].child2 = newParent
		}
	} else {
		// The sibling was the root.
		tree.root = newParent
	}

	// Walk back up the tree fixing heights and AABBs
	tree.refit(tree.nodes[leaf].parent)
}

// refit rebalances and recomputes boxes and heights from index to the root.
func (tree *DynamicTree[T]) refit(index int) {
	for index != NullNode {
		index = tree.balance(index)

		child1 := tree.nodes[index].child1
		child2 := tree.nodes[index].child2

		assert(child1 != NullNode && child2 != NullNode, "internal node without children")

		tree.nodes[index].height = 1 + max(tree.nodes[child1].height, tree.nodes[child2].height)
		tree.nodes[index].box = tree.nodes[child1].box.Combine(tree.nodes[child2].box)

		index = tree.nodes[index].parent
	}
}

func (tree *DynamicTree[T]) removeLeaf(leaf int) {
	if leaf == tree.root {
		tree.root = NullNode
		return
	}

	parent := tree.nodes[leaf].parent
	grandParent := tree.nodes[parent].parent
	sibling := tree.nodes[parent].child1
	if sibling == leaf {
		sibling = tree.nodes[parent].child2
	}

	if grandParent != NullNode {
		// Destroy parent and connect sibling to grandParent.
		if tree.nodes[grandParent].child1 == parent {
			tree.nodes[grandParent].child1 = sibling
		} else {
			tree.nodes[grandParent].child2 = sibling
		}
		tree.nodes[sibling].parent = grandParent
		tree.freeNode(parent)

		// Adjust ancestor bounds.
		tree.refit(grandParent)
	} else {
		tree.root = sibling
		tree.nodes[sibling].parent = NullNode
		tree.freeNode(parent)
	}
}

// Perform a left or right rotation if node A is imbalanced.
// Returns the new root index.
func (tree *DynamicTree[T]) balance(iA int) int {
	assert(iA != NullNode, "balance of null node")

	A := &tree.nodes[iA]
	if A.isLeaf() || A.height < 2 {
		return iA
	}

	iB := A.child1
	iC := A.child2
	B := &tree.nodes[iB]
	C := &tree.nodes[iC]

	bal := C.height - B.height

	// Rotate C up
	if bal > 1 {
		iF := C.child1
		iG := C.child2
		F := &tree.nodes[iF]
		G := &tree.nodes[iG]

		// Swap A and C
		C.child1 = iA
		C.parent = A.parent
		A.parent = iC

		// A's old parent should point to C
		if C.parent != NullNode {
			if tree.nodes[C.parent].child1 == iA {
				tree.nodes[C.parent].child1 = iC
			} else {
				assert(tree.nodes[C.parent].child2 == iA, "broken parent link")
				tree.nodes[C.parent].child2 = iC
			}
		} else {
			tree.root = iC
		}

		// Rotate
		if F.height > G.height {
			C.child2 = iF
			A.child2 = iG
			G.parent = iA
			A.box = B.box.Combine(G.box)
			C.box = A.box.Combine(F.box)

			A.height = 1 + max(B.height, G.height)
			C.height = 1 + max(A.height, F.height)
		} else {
			C.child2 = iG
			A.child2 = iF
			F.parent = iA
			A.box = B.box.Combine(F.box)
			C.box = A.box.Combine(G.box)

			A.height = 1 + max(B.height, F.height)
			C.height = 1 + max(A.height, G.height)
		}

		return iC
	}

	// Rotate B up
	if bal < -1 {
		iD := B.child1
		iE := B.child2
		D := &tree.nodes[iD]
		E := &tree.nodes[iE]

		// Swap A and B
		B.child1 = iA
		B.parent = A.parent
		A.parent = iB

		// A's old parent should point to B
		if B.parent != NullNode {
			if tree.nodes[B.parent].child1 == iA {
				tree.nodes[B.parent].child1 = iB
			} else {
				assert(tree.nodes[B.parent].child2 == iA, "broken parent link")
				tree.nodes[B.parent].child2 = iB
			}
		} else {
			tree.root = iB
		}

		// Rotate
		if D.height > E.height {
			B.child2 = iD
			A.child1 = iE
			E.parent = iA
			A.box = C.box.Combine(E.box)
			B.box = A.box.Combine(D.box)

			A.height = 1 + max(C.height, E.height)
			B.height = 1 + max(A.height, D.height)
		} else {
			B.child2 = iE
			A.child1 = iD
			D.parent = iA
			A.box = C.box.Combine(D.box)
			B.box = A.box.Combine(E.box)

			A.height = 1 + max(C.height, D.height)
			B.height = 1 + max(A.height, E.height)
		}

		return iB
	}

	return iA
}

/// Height of the tree, zero when empty.
func (tree *DynamicTree[T]) Height() int {
	if tree.root == NullNode {
		return 0
	}
	return tree.nodes[tree.root].height
}

/// AreaRatio is the sum of node perimeters over the root perimeter.
func (tree *DynamicTree[T]) AreaRatio() float64 {
	if tree.root == NullNode {
		return 0.0
	}

	rootArea := tree.nodes[tree.root].box.Perimeter()

	totalArea := 0.0
	for i := range tree.nodes {
		node := &tree.nodes[i]
		if node.height < 0 {
			// Free node in pool
			continue
		}
		totalArea += node.box.Perimeter()
	}

	return totalArea / rootArea
}

/// MaxBalance is the largest height difference between siblings.
func (tree *DynamicTree[T]) MaxBalance() int {
	maxBalance := 0
	for i := range tree.nodes {
		node := &tree.nodes[i]
		if node.height <= 1 {
			continue
		}

		child1 := node.child1
		child2 := node.child2
		bal := tree.nodes[child2].height - tree.nodes[child1].height
		if bal < 0 {
			bal = -bal
		}
		maxBalance = max(maxBalance, bal)
	}

	return maxBalance
}

func (tree *DynamicTree[T]) validateStructure(index int) {
	if index == NullNode {
		return
	}

	if index == tree.root {
		assert(tree.nodes[index].parent == NullNode, "root has a parent")
	}

	node := &tree.nodes[index]
	if node.isLeaf() {
		assert(node.child2 == NullNode, "leaf with a second child")
		assert(node.height == 0, "leaf with non-zero height")
		return
	}

	assert(tree.nodes[node.child1].parent == index, "child1 parent link")
	assert(tree.nodes[node.child2].parent == index, "child2 parent link")

	tree.validateStructure(node.child1)
	tree.validateStructure(node.child2)
}

func (tree *DynamicTree[T]) validateMetrics(index int) {
	if index == NullNode {
		return
	}

	node := &tree.nodes[index]
	if node.isLeaf() {
		return
	}

	child1 := node.child1
	child2 := node.child2

	height := 1 + max(tree.nodes[child1].height, tree.nodes[child2].height)
	assert(node.height == height, "stale node height")

	box := tree.nodes[child1].box.Combine(tree.nodes[child2].box)
	assert(box == node.box, "stale node box")

	tree.validateMetrics(child1)
	tree.validateMetrics(child2)
}

/// Validate panics if the tree structure or its cached metrics are broken.
func (tree *DynamicTree[T]) Validate() {
	tree.validateStructure(tree.root)
	tree.validateMetrics(tree.root)

	freeCount := 0
	for freeIndex := tree.freeList; freeIndex != NullNode; freeIndex = tree.nodes[freeIndex].parent {
		freeCount++
	}

	assert(tree.Height() == tree.computeHeight(tree.root), "tree height mismatch")
	assert(tree.nodeCount+freeCount == len(tree.nodes), "node count mismatch")
}

// Compute the height of a sub-tree.
func (tree *DynamicTree[T]) computeHeight(nodeID int) int {
	if nodeID == NullNode {
		return 0
	}
	node := &tree.nodes[nodeID]
	if node.isLeaf() {
		return 0
	}
	return 1 + max(tree.computeHeight(node.child1), tree.computeHeight(node.child2))
}

/// RebuildBottomUp rebuilds an optimal tree. Costly; meant for static scenes.
func (tree *DynamicTree[T]) RebuildBottomUp() {
	nodes := make([]int, 0, tree.nodeCount)

	// Build array of leaves. Free the rest.
	for i := range tree.nodes {
		if tree.nodes[i].height < 0 {
			// free node in pool
			continue
		}

		if tree.nodes[i].isLeaf() {
			tree.nodes[i].parent = NullNode
			nodes = append(nodes, i)
		} else {
			tree.freeNode(i)
		}
	}

	if len(nodes) == 0 {
		tree.root = NullNode
		return
	}

	count := len(nodes)
	for count > 1 {
		minCost := MaxFloat
		iMin, jMin := -1, -1
		for i := 0; i < count; i++ {
			boxI := tree.nodes[nodes[i]].box
			for j := i + 1; j < count; j++ {
				cost := boxI.Combine(tree.nodes[nodes[j]].box).Perimeter()
				if cost < minCost {
					iMin = i
					jMin = j
					minCost = cost
				}
			}
		}

		index1 := nodes[iMin]
		index2 := nodes[jMin]

		// allocateNode may grow the slice, take pointers afterwards.
		parentIndex := tree.allocateNode()
		child1 := &tree.nodes[index1]
		child2 := &tree.nodes[index2]
		parent := &tree.nodes[parentIndex]
		parent.child1 = index1
		parent.child2 = index2
		parent.height = 1 + max(child1.height, child2.height)
		parent.box = child1.box.Combine(child2.box)
		parent.parent = NullNode

		child1.parent = parentIndex
		child2.parent = parentIndex

		nodes[jMin] = nodes[count-1]
		nodes[iMin] = parentIndex
		count--
	}

	tree.root = nodes[0]
	tree.Validate()
}
