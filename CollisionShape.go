package physics2d

/// This holds the mass data computed for a shape.
type MassData struct {
	/// The mass of the shape, usually in kilograms.
	Mass float64

	/// The position of the shape's centroid relative to the shape's origin.
	Center Vec2

	/// The rotational inertia of the shape about the local origin.
	I float64
}

/// A shape is used for collision detection. Shapes are convex and defined in
/// the local frame of the body that owns them. Fixtures keep their own clone,
/// so a shape may be reused after CreateFixture returns.
type Shape interface {
	/// Get the type of this shape. You can use this to down cast to the concrete shape.
	Type() ShapeType

	Clone() Shape

	/// Validate reports construction problems as a *ShapeError.
	Validate() error

	/// Test a point for containment in this shape. Points on the boundary
	/// are outside.
	/// @param xf the shape world transform.
	/// @param p a point in world coordinates.
	TestPoint(xf Transform, p Vec2) bool

	/// Cast a ray against the shape placed at xf.
	RayCast(input RayCastInput, xf Transform) (RayCastOutput, bool)

	/// Given a transform, compute the associated axis aligned bounding box.
	ComputeAABB(xf Transform) AABB

	/// Compute the mass properties of this shape using its dimensions and density.
	/// The inertia tensor is computed about the local origin.
	ComputeMass(density float64) MassData

	/// Support returns the local point of the shape farthest along d.
	Support(d Vec2) Vec2

	/// Center is an interior local point used to seed the GJK search.
	Center() Vec2
}

/// supportWorld maps a world direction into the shape frame, finds the
/// farthest point there and maps it back.
func supportWorld(shape Shape, xf Transform, d Vec2) Vec2 {
	return xf.Mul(shape.Support(xf.Q.InvRotate(d)))
}
