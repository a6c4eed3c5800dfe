package physics2d_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ByteArena/physics2d"
)

func unitBox(x, y float64) physics2d.AABB {
	return physics2d.MakeAABB(physics2d.MakeVec2(x, y), physics2d.MakeVec2(x+1, y+1))
}

func TestDynamicTreeQueryAndMove(t *testing.T) {
	tree := physics2d.NewDynamicTree[int]()

	ids := make([]int, 0, 64)
	for i := 0; i < 64; i++ {
		x := float64(i%8) * 3
		y := float64(i/8) * 3
		ids = append(ids, tree.CreateProxy(unitBox(x, y), i))
	}
	tree.Validate()

	if h := tree.Height(); h < 6 || h > 16 {
		t.Fatalf("Height = %d for 64 leaves", h)
	}

	var hits []int
	tree.Query(func(proxyID int) bool {
		hits = append(hits, tree.UserData(proxyID))
		return true
	}, physics2d.MakeAABB(physics2d.MakeVec2(-0.5, -0.5), physics2d.MakeVec2(3.5, 0.5)))
	slices.Sort(hits)
	if !slices.Equal(hits, []int{0, 1}) {
		t.Fatalf("Query hits = %v, want [0 1]", hits)
	}

	// A small move stays within the fat box.
	if tree.MoveProxy(ids[0], unitBox(0.05, 0), physics2d.MakeVec2(0.05, 0)) {
		t.Fatalf("MoveProxy reinserted a proxy that stayed inside its fat box")
	}

	// A large move reinserts the proxy, extended along the displacement.
	if !tree.MoveProxy(ids[0], unitBox(50, 0), physics2d.MakeVec2(1, 0)) {
		t.Fatalf("MoveProxy did not reinsert a moved proxy")
	}
	fat := tree.FatAABB(ids[0])
	if !near(fat.Lo.X, 50-physics2d.AABBExtension, 1e-9) || !near(fat.Hi.X, 51+physics2d.AABBExtension+physics2d.AABBMultiplier, 1e-9) {
		t.Fatalf("FatAABB = %+v", fat)
	}
	tree.Validate()

	for _, id := range ids[:32] {
		tree.DestroyProxy(id)
	}
	tree.Validate()

	count := 0
	tree.Query(func(int) bool {
		count++
		return true
	}, physics2d.MakeAABB(physics2d.MakeVec2(-100, -100), physics2d.MakeVec2(100, 100)))
	if count != 32 {
		t.Fatalf("Query after destroy found %d proxies, want 32", count)
	}
}

func TestDynamicTreeQueryStops(t *testing.T) {
	tree := physics2d.NewDynamicTree[int]()
	for i := 0; i < 10; i++ {
		tree.CreateProxy(unitBox(0, 0), i)
	}

	calls := 0
	tree.Query(func(int) bool {
		calls++
		return false
	}, unitBox(0, 0))
	if calls != 1 {
		t.Fatalf("callback ran %d times after asking to stop", calls)
	}
}

func TestDynamicTreeRayCast(t *testing.T) {
	tree := physics2d.NewDynamicTree[string]()
	tree.CreateProxy(unitBox(2, -0.5), "near")
	tree.CreateProxy(unitBox(6, -0.5), "far")
	tree.CreateProxy(unitBox(2, 5), "off")

	var seen []string
	tree.RayCast(func(input physics2d.RayCastInput, proxyID int) float64 {
		seen = append(seen, tree.UserData(proxyID))
		return input.MaxFraction
	}, physics2d.RayCastInput{P1: physics2d.MakeVec2(0, 0), P2: physics2d.MakeVec2(10, 0), MaxFraction: 1})

	slices.Sort(seen)
	if !slices.Equal(seen, []string{"far", "near"}) {
		t.Fatalf("RayCast visited %v", seen)
	}
}

type pair struct {
	a, b string
}

func TestBroadPhasePairs(t *testing.T) {
	bp := physics2d.NewBroadPhase[string]()

	a := bp.CreateProxy(unitBox(0, 0), "a")
	bp.CreateProxy(unitBox(0.5, 0.5), "b")
	c := bp.CreateProxy(unitBox(10, 10), "c")

	if bp.ProxyCount() != 3 {
		t.Fatalf("ProxyCount = %d", bp.ProxyCount())
	}

	var pairs []pair
	collect := func(userDataA, userDataB string) error {
		pairs = append(pairs, pair{userDataA, userDataB})
		return nil
	}

	// Both a and b moved, the pair is still reported once.
	if err := bp.UpdatePairs(collect); err != nil {
		t.Fatalf("UpdatePairs: %v", err)
	}
	if !slices.Equal(pairs, []pair{{"a", "b"}}) {
		t.Fatalf("pairs = %v, want [{a b}]", pairs)
	}

	// Nothing moved.
	pairs = nil
	if err := bp.UpdatePairs(collect); err != nil {
		t.Fatalf("UpdatePairs: %v", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("pairs without movement = %v", pairs)
	}

	bp.MoveProxy(c, unitBox(0.2, 0.2), physics2d.MakeVec2(-9.8, -9.8))
	if err := bp.UpdatePairs(collect); err != nil {
		t.Fatalf("UpdatePairs: %v", err)
	}
	slices.SortFunc(pairs, func(x, y pair) int { return strings.Compare(x.a, y.a) })
	if !slices.Equal(pairs, []pair{{"a", "c"}, {"b", "c"}}) {
		t.Fatalf("pairs after move = %v", pairs)
	}

	if !bp.TestOverlap(a, c) {
		t.Fatalf("TestOverlap(a, c) = false after the move")
	}

	// TouchProxy reports the pairs again.
	pairs = nil
	bp.TouchProxy(a)
	if err := bp.UpdatePairs(collect); err != nil {
		t.Fatalf("UpdatePairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs after touch = %v", pairs)
	}

	bp.DestroyProxy(c)
	if bp.ProxyCount() != 2 {
		t.Fatalf("ProxyCount after destroy = %d", bp.ProxyCount())
	}
}

func TestBroadPhaseAbortsOnError(t *testing.T) {
	bp := physics2d.NewBroadPhase[int]()
	for i := 0; i < 4; i++ {
		bp.CreateProxy(unitBox(0, 0), i)
	}

	boom := errors.New("boom")
	calls := 0
	err := bp.UpdatePairs(func(int, int) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("UpdatePairs = %v after %d calls", err, calls)
	}

	// Pairs left undelivered by the failed update come back on the next one.
	var pairs [][2]int
	if err := bp.UpdatePairs(func(a, b int) error {
		pairs = append(pairs, [2]int{a, b})
		return nil
	}); err != nil {
		t.Fatalf("UpdatePairs: %v", err)
	}
	if len(pairs) != 6 {
		t.Fatalf("pairs after a failed update = %v, want all 6", pairs)
	}
}
