package physics2d

import (
	"math"
)

/// Ray-cast input data. The ray extends from P1 to P1 + MaxFraction * (P2 - P1).
type RayCastInput struct {
	P1, P2      Vec2
	MaxFraction float64
}

/// Ray-cast output data. The ray hits at P1 + Fraction * (P2 - P1), where P1 and P2
/// come from RayCastInput.
type RayCastOutput struct {
	Normal   Vec2
	Fraction float64
}

/// An axis aligned bounding box.
type AABB struct {
	Lo Vec2 ///< the lower vertex
	Hi Vec2 ///< the upper vertex
}

/// MakeAABB builds a box from any two opposite corners.
func MakeAABB(a, b Vec2) AABB {
	return AABB{
		Lo: Vec2Min(a, b),
		Hi: Vec2Max(a, b),
	}
}

/// MakeAABBFromOrigin builds a box from its lower corner and its size.
/// Negative sizes are normalized.
func MakeAABBFromOrigin(origin Vec2, width, height float64) AABB {
	return MakeAABB(origin, origin.Add(Vec2{width, height}))
}

func (bb AABB) Width() float64  { return bb.Hi.X - bb.Lo.X }
func (bb AABB) Height() float64 { return bb.Hi.Y - bb.Lo.Y }

func (bb AABB) Left() float64   { return bb.Lo.X }
func (bb AABB) Right() float64  { return bb.Hi.X }
func (bb AABB) Bottom() float64 { return bb.Lo.Y }
func (bb AABB) Top() float64    { return bb.Hi.Y }

/// Get the center of the AABB.
func (bb AABB) Centroid() Vec2 {
	return bb.Lo.Add(bb.Hi).Scale(0.5)
}

/// Get the extents of the AABB (half-widths).
func (bb AABB) HalfExtent() Vec2 {
	return bb.Hi.Sub(bb.Lo).Scale(0.5)
}

/// Get the perimeter length
func (bb AABB) Perimeter() float64 {
	return 2.0 * (bb.Width() + bb.Height())
}

func (bb AABB) IsValid() bool {
	d := bb.Hi.Sub(bb.Lo)
	return d.X >= 0.0 && d.Y >= 0.0 && bb.Lo.IsValid() && bb.Hi.IsValid()
}

/// Combine returns the smallest box enclosing both boxes.
func (bb AABB) Combine(other AABB) AABB {
	return AABB{
		Lo: Vec2Min(bb.Lo, other.Lo),
		Hi: Vec2Max(bb.Hi, other.Hi),
	}
}

/// Fatten grows the box by amount on every side.
func (bb AABB) Fatten(amount float64) AABB {
	r := Vec2{amount, amount}
	return AABB{Lo: bb.Lo.Sub(r), Hi: bb.Hi.Add(r)}
}

/// Contains reports whether p is strictly inside the box.
func (bb AABB) Contains(p Vec2) bool {
	return p.X > bb.Lo.X && p.X < bb.Hi.X &&
		p.Y > bb.Lo.Y && p.Y < bb.Hi.Y
}

/// ContainsAABB reports whether other is strictly inside the box.
func (bb AABB) ContainsAABB(other AABB) bool {
	return bb.Lo.X < other.Lo.X && bb.Lo.Y < other.Lo.Y &&
		other.Hi.X < bb.Hi.X && other.Hi.Y < bb.Hi.Y
}

/// Encloses is the inclusive variant of ContainsAABB used by the broad phase
/// to decide whether a fat box still covers a tight box.
func (bb AABB) Encloses(other AABB) bool {
	return bb.Lo.X <= other.Lo.X && bb.Lo.Y <= other.Lo.Y &&
		other.Hi.X <= bb.Hi.X && other.Hi.Y <= bb.Hi.Y
}

/// Intersects is edge-exclusive: boxes sharing only an edge or a corner do
/// not intersect.
func (bb AABB) Intersects(other AABB) bool {
	return bb.Lo.X < other.Hi.X && other.Lo.X < bb.Hi.X &&
		bb.Lo.Y < other.Hi.Y && other.Lo.Y < bb.Hi.Y
}

/// CollideAABBs builds a single point manifold for two overlapping boxes.
/// The normal runs along the axis of least overlap, pointing from a to b.
/// The contact point sits on the corner of the overlap region nearest to
/// the penetrating edge.
func CollideAABBs(a, b AABB) Manifold {
	var mf Manifold

	cenA, extA := a.Centroid(), a.HalfExtent()
	cenB, extB := b.Centroid(), b.HalfExtent()
	d := cenB.Sub(cenA)

	overlapX := extA.X + extB.X - math.Abs(d.X)
	if overlapX <= 0.0 {
		return mf
	}

	overlapY := extA.Y + extB.Y - math.Abs(d.Y)
	if overlapY <= 0.0 {
		return mf
	}

	signX, signY := 1.0, 1.0
	if d.X < 0.0 {
		signX = -1.0
	}
	if d.Y < 0.0 {
		signY = -1.0
	}

	mf.Count = 1
	if overlapX < overlapY {
		mf.Depths[0] = overlapX
		mf.Normal = Vec2{signX, 0.0}

		// A zero offset on the other axis means the boxes form a "T" or a
		// "+"; only one of the contact points is reported.
		if d.Y != 0.0 || a.Bottom() < b.Bottom() {
			mf.Contacts[0] = Vec2{cenA.X + extA.X*signX, cenB.Y - extB.Y*signY}
		} else {
			mf.Contacts[0] = Vec2{cenB.X - extB.X*signX, cenA.Y - extA.Y*signY}
		}
	} else {
		mf.Depths[0] = overlapY
		mf.Normal = Vec2{0.0, signY}

		if d.X != 0.0 || a.Left() < b.Left() {
			mf.Contacts[0] = Vec2{cenB.X - extB.X*signX, cenA.Y + extA.Y*signY}
		} else {
			mf.Contacts[0] = Vec2{cenA.X - extA.X*signX, cenB.Y - extB.Y*signY}
		}
	}

	return mf
}

// From Real-time Collision Detection, p179.
func (bb AABB) RayCast(input RayCastInput) (RayCastOutput, bool) {
	var output RayCastOutput
	tmin := -MaxFloat
	tmax := MaxFloat

	p := input.P1
	d := input.P2.Sub(input.P1)
	absD := Vec2Abs(d)

	var normal Vec2

	axes := [2]struct{ p, d, absD, lo, hi float64 }{
		{p.X, d.X, absD.X, bb.Lo.X, bb.Hi.X},
		{p.Y, d.Y, absD.Y, bb.Lo.Y, bb.Hi.Y},
	}

	for i, ax := range axes {
		if ax.absD < Epsilon {
			// Parallel.
			if ax.p < ax.lo || ax.hi < ax.p {
				return output, false
			}
			continue
		}

		invD := 1.0 / ax.d
		t1 := (ax.lo - ax.p) * invD
		t2 := (ax.hi - ax.p) * invD

		// Sign of the normal vector.
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}

		// Push the min up
		if t1 > tmin {
			normal = Vec2{}
			if i == 0 {
				normal.X = s
			} else {
				normal.Y = s
			}
			tmin = t1
		}

		// Pull the max down
		tmax = math.Min(tmax, t2)

		if tmin > tmax {
			return output, false
		}
	}

	// Does the ray start inside the box?
	// Does the ray intersect beyond the max fraction?
	if tmin < 0.0 || input.MaxFraction < tmin {
		return output, false
	}

	output.Fraction = tmin
	output.Normal = normal
	return output, true
}
