package physics2d

import (
	"math"
)

/// A solid circle shape
type Circle struct {
	/// Position
	Pos    Vec2
	Radius float64
}

func NewCircle(pos Vec2, radius float64) *Circle {
	return &Circle{Pos: pos, Radius: radius}
}

func (shape *Circle) Type() ShapeType {
	return ShapeCircle
}

func (shape *Circle) Clone() Shape {
	clone := *shape
	return &clone
}

func (shape *Circle) Validate() error {
	if !shape.Pos.IsValid() || !IsValid(shape.Radius) {
		return shapeErrorf(ShapeCircle, "non-finite position or radius")
	}
	if shape.Radius <= 0.0 {
		return shapeErrorf(ShapeCircle, "radius %g must be positive", shape.Radius)
	}
	return nil
}

func (shape *Circle) TestPoint(xf Transform, p Vec2) bool {
	center := xf.Mul(shape.Pos)
	d := p.Sub(center)
	return Vec2Dot(d, d) < shape.Radius*shape.Radius
}

// Collision Detection in Interactive 3D Environments by Gino van den Bergen
// From Section 3.1.2
// x = s + a * r
// norm(x) = radius
func (shape *Circle) RayCast(input RayCastInput, xf Transform) (RayCastOutput, bool) {
	var output RayCastOutput

	position := xf.Mul(shape.Pos)
	s := input.P1.Sub(position)
	b := Vec2Dot(s, s) - shape.Radius*shape.Radius

	// Solve quadratic equation.
	r := input.P2.Sub(input.P1)
	c := Vec2Dot(s, r)
	rr := Vec2Dot(r, r)
	sigma := c*c - rr*b

	// Check for negative discriminant and short segment.
	if sigma < 0.0 || rr < Epsilon {
		return output, false
	}

	// Find the point of intersection of the line with the circle.
	a := -(c + math.Sqrt(sigma))

	// Is the intersection point on the segment?
	if 0.0 <= a && a <= input.MaxFraction*rr {
		a /= rr
		output.Fraction = a
		output.Normal, _ = s.Add(r.Scale(a)).Normalize()
		return output, true
	}

	return output, false
}

func (shape *Circle) ComputeAABB(xf Transform) AABB {
	p := xf.Mul(shape.Pos)
	return AABB{
		Lo: Vec2{p.X - shape.Radius, p.Y - shape.Radius},
		Hi: Vec2{p.X + shape.Radius, p.Y + shape.Radius},
	}
}

func (shape *Circle) ComputeMass(density float64) MassData {
	var md MassData
	md.Mass = density * math.Pi * shape.Radius * shape.Radius
	md.Center = shape.Pos

	// inertia about the local origin
	md.I = md.Mass * (0.5*shape.Radius*shape.Radius + Vec2Dot(shape.Pos, shape.Pos))
	return md
}

func (shape *Circle) Support(d Vec2) Vec2 {
	n, length := d.Normalize()
	if length == 0.0 {
		return shape.Pos
	}
	return shape.Pos.Add(n.Scale(shape.Radius))
}

func (shape *Circle) Center() Vec2 {
	return shape.Pos
}
