package physics2d

/// The features that intersect to form the contact point.
/// This must be 4 bytes or less.
type ContactFeature struct {
	IndexA uint8 ///< Feature index on shapeA
	IndexB uint8 ///< Feature index on shapeB
	TypeA  uint8 ///< The feature type on shapeA
	TypeB  uint8 ///< The feature type on shapeB
}

var ContactFeatureType = struct {
	Vertex uint8
	Face   uint8
}{
	Vertex: 0,
	Face:   1,
}

/// Key packs the feature into a single comparable value. It is used to match
/// contact points across steps for warm starting.
func (cf ContactFeature) Key() uint32 {
	return uint32(cf.IndexA) | uint32(cf.IndexB)<<8 | uint32(cf.TypeA)<<16 | uint32(cf.TypeB)<<24
}

func (cf ContactFeature) swap() ContactFeature {
	return ContactFeature{
		IndexA: cf.IndexB,
		IndexB: cf.IndexA,
		TypeA:  cf.TypeB,
		TypeB:  cf.TypeA,
	}
}

/// Manifold describes how two shapes overlap, in world coordinates.
///
/// Normal is the unit vector pointing from shape A towards shape B.
/// Contacts[i] lies on the surface of B and Depths[i] is its penetration
/// into A, so the matching point on A's surface is Contacts[i] + Depths[i]*Normal.
/// Only the first Count entries are meaningful.
type Manifold struct {
	Count    int
	Depths   [MaxManifoldPoints]float64
	Contacts [MaxManifoldPoints]Vec2
	Normal   Vec2
	Features [MaxManifoldPoints]ContactFeature

	// The normal is attached to shape B's reference face rather than A's.
	flip bool
}

/// Used for computing contact manifolds.
type ClipVertex struct {
	V  Vec2
	ID ContactFeature
}

// Sutherland-Hodgman clipping.
func clipSegmentToLine(vOut *[2]ClipVertex, vIn [2]ClipVertex, normal Vec2, offset float64, vertexIndexA int) int {
	// Start with no output points
	numOut := 0

	// Calculate the distance of end points to the line
	distance0 := Vec2Dot(normal, vIn[0].V) - offset
	distance1 := Vec2Dot(normal, vIn[1].V) - offset

	// If the points are behind the plane
	if distance0 <= 0.0 {
		vOut[numOut] = vIn[0]
		numOut++
	}

	if distance1 <= 0.0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	// If the points are on different sides of the plane
	if distance0*distance1 < 0.0 {
		// Find intersection point of edge and plane
		interp := distance0 / (distance0 - distance1)
		vOut[numOut].V = vIn[0].V.Add(vIn[1].V.Sub(vIn[0].V).Scale(interp))

		// VertexA is hitting edgeB.
		vOut[numOut].ID = ContactFeature{
			IndexA: uint8(vertexIndexA),
			IndexB: vIn[0].ID.IndexB,
			TypeA:  ContactFeatureType.Vertex,
			TypeB:  ContactFeatureType.Face,
		}
		numOut++
	}

	return numOut
}
