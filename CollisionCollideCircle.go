package physics2d

/// CollideCircles produces at most one contact. Circles that only touch do
/// not collide.
func CollideCircles(circleA *Circle, xfA Transform, circleB *Circle, xfB Transform) Manifold {
	var manifold Manifold

	pA := xfA.Mul(circleA.Pos)
	pB := xfB.Mul(circleB.Pos)

	d := pB.Sub(pA)
	distSqr := Vec2Dot(d, d)
	radius := circleA.Radius + circleB.Radius
	if distSqr >= radius*radius {
		return manifold
	}

	normal, dist := d.Normalize()
	if dist == 0.0 {
		// Concentric: any direction separates them equally well.
		normal = Vec2{0.0, 1.0}
	}

	manifold.Count = 1
	manifold.Normal = normal
	manifold.Depths[0] = radius - dist
	manifold.Contacts[0] = pB.Sub(normal.Scale(circleB.Radius))
	return manifold
}

/// CollidePolygonAndCircle tests the circle against the polygon's face and
/// vertex voronoi regions.
func CollidePolygonAndCircle(polygonA *Polygon, xfA Transform, circleB *Circle, xfB Transform) Manifold {
	var manifold Manifold

	// Compute circle position in the frame of the polygon.
	c := xfB.Mul(circleB.Pos)
	cLocal := xfA.MulT(c)

	// Find the min separating edge.
	normalIndex := 0
	separation := -MaxFloat
	radius := circleB.Radius
	vertexCount := polygonA.count
	vertices := &polygonA.vertices
	normals := &polygonA.normals

	for i := 0; i < vertexCount; i++ {
		s := Vec2Dot(normals[i], cLocal.Sub(vertices[i]))

		if s >= radius {
			// Early out.
			return manifold
		}

		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	// Vertices that subtend the incident face.
	vertIndex1 := normalIndex
	vertIndex2 := (vertIndex1 + 1) % vertexCount

	v1 := vertices[vertIndex1]
	v2 := vertices[vertIndex2]

	var localNormal Vec2
	var depth float64
	feature := ContactFeature{IndexA: uint8(vertIndex1), TypeA: ContactFeatureType.Face}

	// Compute barycentric coordinates
	u1 := Vec2Dot(cLocal.Sub(v1), v2.Sub(v1))
	u2 := Vec2Dot(cLocal.Sub(v2), v1.Sub(v2))

	switch {
	case separation < Epsilon:
		// The center is inside the polygon.
		localNormal = normals[normalIndex]
		depth = radius - separation

	case u1 <= 0.0:
		dist := Vec2Distance(cLocal, v1)
		if dist >= radius {
			return manifold
		}
		localNormal, _ = cLocal.Sub(v1).Normalize()
		depth = radius - dist
		feature.TypeA = ContactFeatureType.Vertex

	case u2 <= 0.0:
		dist := Vec2Distance(cLocal, v2)
		if dist >= radius {
			return manifold
		}
		localNormal, _ = cLocal.Sub(v2).Normalize()
		depth = radius - dist
		feature.IndexA = uint8(vertIndex2)
		feature.TypeA = ContactFeatureType.Vertex

	default:
		faceCenter := v1.Add(v2).Scale(0.5)
		s := Vec2Dot(cLocal.Sub(faceCenter), normals[vertIndex1])
		if s >= radius {
			return manifold
		}
		localNormal = normals[vertIndex1]
		depth = radius - s
	}

	normal := xfA.Q.Rotate(localNormal)

	manifold.Count = 1
	manifold.Normal = normal
	manifold.Depths[0] = depth
	manifold.Contacts[0] = c.Sub(normal.Scale(radius))
	manifold.Features[0] = feature
	return manifold
}
