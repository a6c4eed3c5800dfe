package physics2d

// Find the max separation between poly1 and poly2 using edge normals from poly1.
func findMaxSeparation(poly1 *Polygon, xf1 Transform, poly2 *Polygon, xf2 Transform) (int, float64) {
	count1 := poly1.count
	count2 := poly2.count
	n1s := &poly1.normals
	v1s := &poly1.vertices
	v2s := &poly2.vertices

	xf := TransformMulT(xf2, xf1)

	bestIndex := 0
	maxSeparation := -MaxFloat
	for i := 0; i < count1; i++ {
		// Get poly1 normal in frame2.
		n := xf.Q.Rotate(n1s[i])
		v1 := xf.Mul(v1s[i])

		// Find deepest point for normal i.
		si := MaxFloat
		for j := 0; j < count2; j++ {
			sij := Vec2Dot(n, v2s[j].Sub(v1))
			if sij < si {
				si = sij
			}
		}

		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}

	return bestIndex, maxSeparation
}

func findIncidentEdge(poly1 *Polygon, xf1 Transform, edge1 int, poly2 *Polygon, xf2 Transform) [2]ClipVertex {
	var c [2]ClipVertex
	count2 := poly2.count

	assert(0 <= edge1 && edge1 < poly1.count, "reference edge out of range")

	// Get the normal of the reference edge in poly2's frame.
	normal1 := xf2.Q.InvRotate(xf1.Q.Rotate(poly1.normals[edge1]))

	// Find the incident edge on poly2.
	index := 0
	minDot := MaxFloat
	for i := 0; i < count2; i++ {
		dot := Vec2Dot(normal1, poly2.normals[i])
		if dot < minDot {
			minDot = dot
			index = i
		}
	}

	// Build the clip vertices for the incident edge.
	i1 := index
	i2 := (i1 + 1) % count2

	c[0].V = xf2.Mul(poly2.vertices[i1])
	c[0].ID = ContactFeature{
		IndexA: uint8(edge1),
		IndexB: uint8(i1),
		TypeA:  ContactFeatureType.Face,
		TypeB:  ContactFeatureType.Vertex,
	}

	c[1].V = xf2.Mul(poly2.vertices[i2])
	c[1].ID = ContactFeature{
		IndexA: uint8(edge1),
		IndexB: uint8(i2),
		TypeA:  ContactFeatureType.Face,
		TypeB:  ContactFeatureType.Vertex,
	}

	return c
}

// Find edge normal of max separation on A - return if separating axis is found
// Find edge normal of max separation on B - return if separation axis is found
// Choose reference edge as min(minA, minB)
// Find incident edge
// Clip

// CollidePolygons runs the separating axis test and clips the incident edge
// against the reference face. Polygons that only touch do not collide.
func CollidePolygons(polyA *Polygon, xfA Transform, polyB *Polygon, xfB Transform) Manifold {
	var manifold Manifold

	edgeA, separationA := findMaxSeparation(polyA, xfA, polyB, xfB)
	if separationA >= 0.0 {
		return manifold
	}

	edgeB, separationB := findMaxSeparation(polyB, xfB, polyA, xfA)
	if separationB >= 0.0 {
		return manifold
	}

	var poly1 *Polygon // reference polygon
	var poly2 *Polygon // incident polygon
	var xf1, xf2 Transform
	var edge1 int // reference edge
	flip := false
	kTol := 0.1 * LinearSlop

	if separationB > separationA+kTol {
		poly1, poly2 = polyB, polyA
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		flip = true
	} else {
		poly1, poly2 = polyA, polyB
		xf1, xf2 = xfA, xfB
		edge1 = edgeA
	}

	incidentEdge := findIncidentEdge(poly1, xf1, edge1, poly2, xf2)

	iv1 := edge1
	iv2 := (edge1 + 1) % poly1.count

	v11 := poly1.vertices[iv1]
	v12 := poly1.vertices[iv2]

	localTangent, _ := v12.Sub(v11).Normalize()

	tangent := xf1.Q.Rotate(localTangent)
	normal := Vec2CrossVectorScalar(tangent, 1.0)

	v11 = xf1.Mul(v11)
	v12 = xf1.Mul(v12)

	// Face offset.
	frontOffset := Vec2Dot(normal, v11)

	// Side offsets.
	sideOffset1 := -Vec2Dot(tangent, v11)
	sideOffset2 := Vec2Dot(tangent, v12)

	// Clip incident edge against extruded edge1 side edges.
	var clipPoints1, clipPoints2 [2]ClipVertex

	// Clip to box side 1
	if clipSegmentToLine(&clipPoints1, incidentEdge, tangent.Neg(), sideOffset1, iv1) < 2 {
		return manifold
	}

	// Clip to negative box side 1
	if clipSegmentToLine(&clipPoints2, clipPoints1, tangent, sideOffset2, iv2) < 2 {
		return manifold
	}

	// The reference normal points out of poly1; the manifold normal runs A to B.
	manifold.Normal = normal
	if flip {
		manifold.Normal = normal.Neg()
	}
	manifold.flip = flip

	pointCount := 0
	for i := 0; i < MaxManifoldPoints; i++ {
		separation := Vec2Dot(normal, clipPoints2[i].V) - frontOffset
		if separation >= 0.0 {
			continue
		}

		depth := -separation
		id := clipPoints2[i].ID
		p := clipPoints2[i].V
		if flip {
			// The clipped point lies on A; move it onto B's reference face.
			p = p.Add(normal.Scale(depth))
			id = id.swap()
		}

		manifold.Depths[pointCount] = depth
		manifold.Contacts[pointCount] = p
		manifold.Features[pointCount] = id
		pointCount++
	}

	manifold.Count = pointCount
	return manifold
}
