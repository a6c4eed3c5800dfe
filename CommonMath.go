package physics2d

import (
	"fmt"
	"math"
)

///////////////////////////////////////////////////////////////////////////////
// Scalars
///////////////////////////////////////////////////////////////////////////////

/// IsValid reports whether x is neither NaN nor infinite.
func IsValid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func FloatClamp(a, low, high float64) float64 {
	return math.Max(low, math.Min(a, high))
}

///////////////////////////////////////////////////////////////////////////////
/// A 2D column vector.
///////////////////////////////////////////////////////////////////////////////
type Vec2 struct {
	X, Y float64
}

func MakeVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

/// Set this vector to all zeros.
func (v *Vec2) SetZero() {
	v.X = 0.0
	v.Y = 0.0
}

func (v *Vec2) Set(x, y float64) {
	v.X = x
	v.Y = y
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{s * v.X, s * v.Y}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

/// Get the length of this vector (the norm).
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

/// Get the length squared. Prefer this over Length when only comparing.
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

/// Normalize returns the unit vector along v and the original length.
/// A vector shorter than Epsilon is returned unchanged with a length of 0.
func (v Vec2) Normalize() (Vec2, float64) {
	length := v.Length()
	if length < Epsilon {
		return v, 0.0
	}
	inv := 1.0 / length
	return Vec2{v.X * inv, v.Y * inv}, length
}

/// Does this vector contain finite coordinates?
func (v Vec2) IsValid() bool {
	return IsValid(v.X) && IsValid(v.Y)
}

/// Skew returns the vector rotated by +90 degrees, i.e. perp_ccw.
func (v Vec2) Skew() Vec2 {
	return Vec2{-v.Y, v.X}
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", v.X, v.Y)
}

func Vec2Dot(a, b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

/// Perform the cross product on two vectors. In 2D this produces a scalar.
func Vec2Cross(a, b Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

/// Perform the cross product on a vector and a scalar.
func Vec2CrossVectorScalar(a Vec2, s float64) Vec2 {
	return Vec2{s * a.Y, -s * a.X}
}

/// Perform the cross product on a scalar and a vector.
func Vec2CrossScalarVector(s float64, a Vec2) Vec2 {
	return Vec2{-s * a.Y, s * a.X}
}

func Vec2Distance(a, b Vec2) float64 {
	return b.Sub(a).Length()
}

func Vec2DistanceSquared(a, b Vec2) float64 {
	return b.Sub(a).LengthSquared()
}

func Vec2Abs(a Vec2) Vec2 {
	return Vec2{math.Abs(a.X), math.Abs(a.Y)}
}

func Vec2Min(a, b Vec2) Vec2 {
	return Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)}
}

func Vec2Max(a, b Vec2) Vec2 {
	return Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
}

/// Lerp interpolates between a and b.
func Vec2Lerp(a, b Vec2, t float64) Vec2 {
	return a.Scale(1.0 - t).Add(b.Scale(t))
}

///////////////////////////////////////////////////////////////////////////////
/// A 2-by-2 matrix. Stored in column-major order.
///////////////////////////////////////////////////////////////////////////////
type Mat22 struct {
	Ex, Ey Vec2
}

func MakeMat22FromScalars(a11, a12, a21, a22 float64) Mat22 {
	return Mat22{
		Ex: Vec2{a11, a21},
		Ey: Vec2{a12, a22},
	}
}

func (m Mat22) Inverse() Mat22 {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0.0 {
		det = 1.0 / det
	}
	return MakeMat22FromScalars(det*d, -det*b, -det*c, det*a)
}

/// Solve A * x = b, where b is a column vector. This is more efficient
/// than computing the inverse in one-shot cases.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0.0 {
		det = 1.0 / det
	}
	return Vec2{
		det * (a22*b.X - a12*b.Y),
		det * (a11*b.Y - a21*b.X),
	}
}

func (m Mat22) MulVec(v Vec2) Vec2 {
	return Vec2{
		m.Ex.X*v.X + m.Ey.X*v.Y,
		m.Ex.Y*v.X + m.Ey.Y*v.Y,
	}
}

///////////////////////////////////////////////////////////////////////////////
/// Rotation, stored as sine and cosine so poses never repeat trig calls.
///////////////////////////////////////////////////////////////////////////////
type Rot struct {
	S, C float64
}

/// Identity rotation.
func MakeRot() Rot {
	return Rot{S: 0.0, C: 1.0}
}

func MakeRotFromAngle(angle float64) Rot {
	return Rot{S: math.Sin(angle), C: math.Cos(angle)}
}

func (r Rot) Angle() float64 {
	return math.Atan2(r.S, r.C)
}

/// Get the x-axis.
func (r Rot) XAxis() Vec2 {
	return Vec2{r.C, r.S}
}

/// Get the y-axis.
func (r Rot) YAxis() Vec2 {
	return Vec2{-r.S, r.C}
}

/// Rotate a vector.
func (r Rot) Rotate(v Vec2) Vec2 {
	return Vec2{r.C*v.X - r.S*v.Y, r.S*v.X + r.C*v.Y}
}

/// Inverse rotate a vector.
func (r Rot) InvRotate(v Vec2) Vec2 {
	return Vec2{r.C*v.X + r.S*v.Y, -r.S*v.X + r.C*v.Y}
}

/// q * r
func RotMul(q, r Rot) Rot {
	return Rot{
		S: q.S*r.C + q.C*r.S,
		C: q.C*r.C - q.S*r.S,
	}
}

/// transpose(q) * r
func RotMulT(q, r Rot) Rot {
	return Rot{
		S: q.C*r.S - q.S*r.C,
		C: q.C*r.C + q.S*r.S,
	}
}

///////////////////////////////////////////////////////////////////////////////
/// A transform contains translation and rotation. It is used to represent
/// the position and orientation of rigid frames.
///////////////////////////////////////////////////////////////////////////////
type Transform struct {
	P Vec2
	Q Rot
}

func MakeTransform() Transform {
	return Transform{Q: MakeRot()}
}

func MakeTransformFromAngle(position Vec2, angle float64) Transform {
	return Transform{P: position, Q: MakeRotFromAngle(angle)}
}

/// Mul maps a point from this frame to world space.
func (t Transform) Mul(v Vec2) Vec2 {
	return t.Q.Rotate(v).Add(t.P)
}

/// MulT maps a world point into this frame.
func (t Transform) MulT(v Vec2) Vec2 {
	return t.Q.InvRotate(v.Sub(t.P))
}

/// v2 = A.q.Rot(B.q.Rot(v1) + B.p) + A.p
func TransformMul(a, b Transform) Transform {
	return Transform{
		Q: RotMul(a.Q, b.Q),
		P: a.Q.Rotate(b.P).Add(a.P),
	}
}

/// v2 = A.q' * (B.q * v1 + B.p - A.p)
func TransformMulT(a, b Transform) Transform {
	return Transform{
		Q: RotMulT(a.Q, b.Q),
		P: a.Q.InvRotate(b.P.Sub(a.P)),
	}
}

///////////////////////////////////////////////////////////////////////////////
/// Sweep describes the motion of a body for the current step. Shapes are
/// defined with respect to the body origin, which may not coincide with
/// the center of mass. The _0 fields hold the pose at the start of the
/// step and Alpha0 the fraction of the step already consumed.
///////////////////////////////////////////////////////////////////////////////
type Sweep struct {
	LocalCenter Vec2 ///< local center of mass position
	C0, C       Vec2 ///< center world positions
	A0, A       float64

	Alpha0 float64
}

/// Transform at a fraction beta of the step, in [0,1].
func (s Sweep) Transform(beta float64) Transform {
	var xf Transform
	xf.P = s.C0.Scale(1.0 - beta).Add(s.C.Scale(beta))
	xf.Q = MakeRotFromAngle((1.0-beta)*s.A0 + beta*s.A)

	// Shift to origin
	xf.P = xf.P.Sub(xf.Q.Rotate(s.LocalCenter))
	return xf
}

/// Advance the sweep forward, yielding a new initial state.
func (s *Sweep) Advance(alpha float64) {
	assert(s.Alpha0 < 1.0, "sweep alpha out of range")
	beta := (alpha - s.Alpha0) / (1.0 - s.Alpha0)
	s.C0 = s.C0.Add(s.C.Sub(s.C0).Scale(beta))
	s.A0 += beta * (s.A - s.A0)
	s.Alpha0 = alpha
}

/// Normalize keeps A0 within [0, 2pi) and shifts A by the same amount.
func (s *Sweep) Normalize() {
	twoPi := 2.0 * math.Pi
	d := twoPi * math.Floor(s.A0/twoPi)
	s.A0 -= d
	s.A -= d
}
