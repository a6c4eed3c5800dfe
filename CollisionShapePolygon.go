package physics2d

/// A convex polygon. The interior of the polygon is to the left of each edge,
/// i.e. vertices wind counter-clockwise and every normal points outward.
/// Polygons have a maximum number of vertices equal to MaxPolygonVertices.
type Polygon struct {
	centroid Vec2
	vertices [MaxPolygonVertices]Vec2
	normals  [MaxPolygonVertices]Vec2
	count    int
}

/// NewPolygon computes the convex hull of points. Points closer than half
/// the linear slop are welded together first. The result is rejected when
/// more than MaxPolygonVertices points are given or when the hull has no area.
func NewPolygon(points ...Vec2) (*Polygon, error) {
	poly := &Polygon{}
	if err := poly.Set(points); err != nil {
		return nil, err
	}
	return poly, nil
}

/// Build vertices to represent an axis-aligned box centered on the local origin.
func NewBox(hx, hy float64) *Polygon {
	poly := &Polygon{}
	poly.SetAsBox(hx, hy)
	return poly
}

/// Build vertices to represent an oriented box.
func NewOrientedBox(hx, hy float64, center Vec2, angle float64) *Polygon {
	poly := &Polygon{}
	poly.SetAsOrientedBox(hx, hy, center, angle)
	return poly
}

func (poly *Polygon) Type() ShapeType {
	return ShapePolygon
}

func (poly *Polygon) Clone() Shape {
	clone := *poly
	return &clone
}

func (poly *Polygon) Count() int {
	return poly.count
}

func (poly *Polygon) Vertex(index int) Vec2 {
	assert(0 <= index && index < poly.count, "polygon vertex index out of range")
	return poly.vertices[index]
}

func (poly *Polygon) Normal(index int) Vec2 {
	assert(0 <= index && index < poly.count, "polygon normal index out of range")
	return poly.normals[index]
}

/// Vertices returns a copy of the hull in counter-clockwise order.
func (poly *Polygon) Vertices() []Vec2 {
	out := make([]Vec2, poly.count)
	copy(out, poly.vertices[:poly.count])
	return out
}

func (poly *Polygon) Centroid() Vec2 {
	return poly.centroid
}

func (poly *Polygon) SetAsBox(hx, hy float64) {
	poly.count = 4
	poly.vertices[0] = Vec2{-hx, -hy}
	poly.vertices[1] = Vec2{hx, -hy}
	poly.vertices[2] = Vec2{hx, hy}
	poly.vertices[3] = Vec2{-hx, hy}
	poly.normals[0] = Vec2{0.0, -1.0}
	poly.normals[1] = Vec2{1.0, 0.0}
	poly.normals[2] = Vec2{0.0, 1.0}
	poly.normals[3] = Vec2{-1.0, 0.0}
	poly.centroid = Vec2{}
}

func (poly *Polygon) SetAsOrientedBox(hx, hy float64, center Vec2, angle float64) {
	poly.SetAsBox(hx, hy)
	poly.centroid = center

	xf := MakeTransformFromAngle(center, angle)

	// Transform vertices and normals.
	for i := 0; i < poly.count; i++ {
		poly.vertices[i] = xf.Mul(poly.vertices[i])
		poly.normals[i] = xf.Q.Rotate(poly.normals[i])
	}
}

func computeCentroid(vs []Vec2) (Vec2, float64) {
	c := Vec2{}
	area := 0.0

	// pRef is the reference point for forming triangles.
	// Its location doesn't change the result (except for rounding error).
	pRef := Vec2{}
	for _, v := range vs {
		pRef = pRef.Add(v)
	}
	pRef = pRef.Scale(1.0 / float64(len(vs)))

	inv3 := 1.0 / 3.0

	for i := range vs {
		// Triangle vertices.
		p1 := pRef
		p2 := vs[i]
		p3 := vs[(i+1)%len(vs)]

		e1 := p2.Sub(p1)
		e2 := p3.Sub(p1)

		triangleArea := 0.5 * Vec2Cross(e1, e2)
		area += triangleArea

		// Area weighted centroid
		c = c.Add(p1.Add(p2).Add(p3).Scale(triangleArea * inv3))
	}

	if area <= Epsilon {
		return c, area
	}
	return c.Scale(1.0 / area), area
}

/// Set replaces the polygon with the convex hull of points. The polygon is
/// left untouched when an error is returned.
func (poly *Polygon) Set(points []Vec2) error {
	if len(points) > MaxPolygonVertices {
		return shapeErrorf(ShapePolygon, "%d vertices exceed the maximum of %d", len(points), MaxPolygonVertices)
	}
	if len(points) < 3 {
		return shapeErrorf(ShapePolygon, "%d vertices, need at least 3", len(points))
	}

	// Perform welding and copy vertices into local buffer.
	var ps [MaxPolygonVertices]Vec2
	n := 0
	weld := (0.5 * LinearSlop) * (0.5 * LinearSlop)

	for _, v := range points {
		if !v.IsValid() {
			return shapeErrorf(ShapePolygon, "non-finite vertex %v", v)
		}

		unique := true
		for j := 0; j < n; j++ {
			if Vec2DistanceSquared(v, ps[j]) < weld {
				unique = false
				break
			}
		}

		if unique {
			ps[n] = v
			n++
		}
	}

	if n < 3 {
		return shapeErrorf(ShapePolygon, "only %d distinct vertices after welding", n)
	}

	// Create the convex hull using the Gift wrapping algorithm
	// http://en.wikipedia.org/wiki/Gift_wrapping_algorithm

	// Find the right most point on the hull
	i0 := 0
	x0 := ps[0].X
	for i := 1; i < n; i++ {
		x := ps[i].X
		if x > x0 || (x == x0 && ps[i].Y < ps[i0].Y) {
			i0 = i
			x0 = x
		}
	}

	var hull [MaxPolygonVertices]int
	m := 0
	ih := i0

	for {
		if m >= MaxPolygonVertices {
			return shapeErrorf(ShapePolygon, "hull did not close")
		}
		hull[m] = ih

		ie := 0
		for j := 1; j < n; j++ {
			if ie == ih {
				ie = j
				continue
			}

			r := ps[ie].Sub(ps[hull[m]])
			v := ps[j].Sub(ps[hull[m]])
			c := Vec2Cross(r, v)
			if c < 0.0 {
				ie = j
			}

			// Collinearity check
			if c == 0.0 && v.LengthSquared() > r.LengthSquared() {
				ie = j
			}
		}

		m++
		ih = ie

		if ie == i0 {
			break
		}
	}

	if m < 3 {
		return shapeErrorf(ShapePolygon, "hull is degenerate")
	}

	var candidate Polygon
	candidate.count = m

	// Copy vertices.
	for i := 0; i < m; i++ {
		candidate.vertices[i] = ps[hull[i]]
	}

	// Compute normals. Ensure the edges have non-zero length.
	for i := 0; i < m; i++ {
		edge := candidate.vertices[(i+1)%m].Sub(candidate.vertices[i])
		if edge.LengthSquared() <= Epsilon*Epsilon {
			return shapeErrorf(ShapePolygon, "zero length edge at vertex %d", i)
		}
		candidate.normals[i], _ = Vec2CrossVectorScalar(edge, 1.0).Normalize()
	}

	centroid, area := computeCentroid(candidate.vertices[:m])
	if area <= Epsilon {
		return shapeErrorf(ShapePolygon, "zero area")
	}
	candidate.centroid = centroid

	*poly = candidate
	return nil
}

/// Validate checks that the polygon is convex and counter-clockwise.
func (poly *Polygon) Validate() error {
	if poly.count < 3 || poly.count > MaxPolygonVertices {
		return shapeErrorf(ShapePolygon, "vertex count %d out of range", poly.count)
	}

	for i := 0; i < poly.count; i++ {
		i1 := i
		i2 := (i + 1) % poly.count

		p := poly.vertices[i1]
		e := poly.vertices[i2].Sub(p)

		for j := 0; j < poly.count; j++ {
			if j == i1 || j == i2 {
				continue
			}

			v := poly.vertices[j].Sub(p)
			if Vec2Cross(e, v) <= 0.0 {
				return shapeErrorf(ShapePolygon, "not convex and counter-clockwise at edge %d", i)
			}
		}
	}

	return nil
}

func (poly *Polygon) TestPoint(xf Transform, p Vec2) bool {
	pLocal := xf.MulT(p)

	for i := 0; i < poly.count; i++ {
		dot := Vec2Dot(poly.normals[i], pLocal.Sub(poly.vertices[i]))
		if dot >= 0.0 {
			return false
		}
	}

	return true
}

func (poly *Polygon) RayCast(input RayCastInput, xf Transform) (RayCastOutput, bool) {
	var output RayCastOutput

	// Put the ray into the polygon's frame of reference.
	p1 := xf.MulT(input.P1)
	p2 := xf.MulT(input.P2)
	d := p2.Sub(p1)

	lower := 0.0
	upper := input.MaxFraction

	index := -1

	for i := 0; i < poly.count; i++ {
		// p = p1 + a * d
		// dot(normal, p - v) = 0
		// dot(normal, p1 - v) + a * dot(normal, d) = 0
		numerator := Vec2Dot(poly.normals[i], poly.vertices[i].Sub(p1))
		denominator := Vec2Dot(poly.normals[i], d)

		if denominator == 0.0 {
			if numerator < 0.0 {
				return output, false
			}
		} else {
			// lower < numerator / denominator, where denominator < 0
			// Since denominator < 0, we have to flip the inequality:
			// lower < numerator / denominator <==> denominator * lower > numerator.
			if denominator < 0.0 && numerator < lower*denominator {
				// The segment enters this half-space.
				lower = numerator / denominator
				index = i
			} else if denominator > 0.0 && numerator < upper*denominator {
				// The segment exits this half-space.
				upper = numerator / denominator
			}
		}

		if upper < lower {
			return output, false
		}
	}

	if index >= 0 {
		output.Fraction = lower
		output.Normal = xf.Q.Rotate(poly.normals[index])
		return output, true
	}

	return output, false
}

func (poly *Polygon) ComputeAABB(xf Transform) AABB {
	lower := xf.Mul(poly.vertices[0])
	upper := lower

	for i := 1; i < poly.count; i++ {
		v := xf.Mul(poly.vertices[i])
		lower = Vec2Min(lower, v)
		upper = Vec2Max(upper, v)
	}

	return AABB{Lo: lower, Hi: upper}
}

func (poly *Polygon) ComputeMass(density float64) MassData {
	// Polygon mass, centroid, and inertia.
	// Let rho be the polygon density in mass per unit area.
	// Then:
	// mass = rho * int(dA)
	// centroid.x = (1/mass) * rho * int(x * dA)
	// centroid.y = (1/mass) * rho * int(y * dA)
	// I = rho * int((x*x + y*y) * dA)
	//
	// These integrals are summed over the triangle fan around s. For one
	// triangle, with x = x0 + e1x * u + e2x * v and y likewise over the unit
	// simplex, the Jacobian is D = cross(e1, e2).

	assert(poly.count >= 3, "polygon mass needs three vertices")

	var md MassData
	center := Vec2{}
	area := 0.0
	I := 0.0

	// s is the reference point for forming triangles.
	s := Vec2{}
	for i := 0; i < poly.count; i++ {
		s = s.Add(poly.vertices[i])
	}
	s = s.Scale(1.0 / float64(poly.count))

	kInv3 := 1.0 / 3.0

	for i := 0; i < poly.count; i++ {
		// Triangle vertices.
		e1 := poly.vertices[i].Sub(s)
		e2 := poly.vertices[(i+1)%poly.count].Sub(s)

		D := Vec2Cross(e1, e2)

		triangleArea := 0.5 * D
		area += triangleArea

		// Area weighted centroid
		center = center.Add(e1.Add(e2).Scale(triangleArea * kInv3))

		intx2 := e1.X*e1.X + e2.X*e1.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e2.Y*e1.Y + e2.Y*e2.Y

		I += (0.25 * kInv3 * D) * (intx2 + inty2)
	}

	// Total mass
	md.Mass = density * area

	// Center of mass
	center = center.Scale(1.0 / area)
	md.Center = center.Add(s)

	// Inertia tensor relative to the local origin (point s).
	md.I = density * I

	// Shift to center of mass then to original body origin.
	md.I += md.Mass * (Vec2Dot(md.Center, md.Center) - Vec2Dot(center, center))
	return md
}

func (poly *Polygon) Support(d Vec2) Vec2 {
	best := 0
	bestValue := Vec2Dot(poly.vertices[0], d)
	for i := 1; i < poly.count; i++ {
		value := Vec2Dot(poly.vertices[i], d)
		if value > bestValue {
			best = i
			bestValue = value
		}
	}
	return poly.vertices[best]
}

func (poly *Polygon) Center() Vec2 {
	return poly.centroid
}
