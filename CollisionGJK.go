package physics2d

const gjkMaxIterations = 32

/// TestOverlap reports whether two convex shapes overlap using GJK on their
/// Minkowski difference. Only a boolean is produced; use the Collide*
/// functions when a manifold is needed. Touching shapes do not overlap.
func TestOverlap(shapeA Shape, xfA Transform, shapeB Shape, xfB Transform) bool {
	support := func(d Vec2) Vec2 {
		return supportWorld(shapeA, xfA, d).Sub(supportWorld(shapeB, xfB, d.Neg()))
	}

	d := xfB.Mul(shapeB.Center()).Sub(xfA.Mul(shapeA.Center()))
	if d.LengthSquared() < Epsilon {
		d = Vec2{1.0, 0.0}
	}

	var simplex [3]Vec2
	simplex[0] = support(d)
	count := 1
	d = simplex[0].Neg()

	for iter := 0; iter < gjkMaxIterations; iter++ {
		if d.LengthSquared() < Epsilon*Epsilon {
			// The origin sits on the simplex, i.e. on the boundary.
			return false
		}

		a := support(d)
		if Vec2Dot(a, d) <= 0.0 {
			// No point of the difference lies past the origin along d.
			return false
		}

		simplex[count] = a
		count++

		if gjkEvolve(&simplex, &count, &d) {
			return true
		}
	}

	return false
}

// (a x b) x c expanded for 2D vectors.
func tripleProduct(a, b, c Vec2) Vec2 {
	return b.Scale(Vec2Dot(a, c)).Sub(a.Scale(Vec2Dot(b, c)))
}

// gjkEvolve reduces the simplex to the feature closest to the origin and
// picks the next search direction. The newest point is always last.
func gjkEvolve(simplex *[3]Vec2, count *int, d *Vec2) bool {
	switch *count {
	case 2:
		a := simplex[1]
		b := simplex[0]
		ab := b.Sub(a)
		ao := a.Neg()

		*d = tripleProduct(ab, ao, ab)
		if d.LengthSquared() < Epsilon*Epsilon {
			// The origin is on the segment. Search off to one side.
			*d = ab.Skew()
		}
		return false

	case 3:
		a := simplex[2]
		b := simplex[1]
		c := simplex[0]
		ab := b.Sub(a)
		ac := c.Sub(a)
		ao := a.Neg()

		abPerp := tripleProduct(ac, ab, ab)
		acPerp := tripleProduct(ab, ac, ac)

		if Vec2Dot(abPerp, ao) > 0.0 {
			// Origin lies beyond AB: drop C.
			simplex[0] = b
			simplex[1] = a
			*count = 2
			*d = abPerp
			return false
		}

		if Vec2Dot(acPerp, ao) > 0.0 {
			// Origin lies beyond AC: drop B.
			simplex[0] = c
			simplex[1] = a
			*count = 2
			*d = acPerp
			return false
		}

		return true
	}

	assert(false, "gjk simplex size")
	return false
}
