package physics2d

import (
	"fmt"
	"math"
)

/// Revolute joint profile. This requires defining an
/// anchor point where the bodies are joined. The profile
/// uses local anchor points so that the initial configuration
/// can violate the constraint slightly. You also need to
/// specify the initial relative angle for joint limits.
/// The local anchor points are measured from the body's origin
/// rather than the center of mass because:
/// 1. you might not know where the center of mass will be.
/// 2. if you add/remove shapes from a body and recompute the mass,
///    the joints will be broken.
type RevoluteJointProfile struct {
	BodyA *RigidBody
	BodyB *RigidBody

	/// The local anchor point relative to bodyA's origin.
	LocalAnchorA Vec2

	/// The local anchor point relative to bodyB's origin.
	LocalAnchorB Vec2

	/// The bodyB angle minus bodyA angle in the reference state (radians).
	ReferenceAngle float64

	/// A flag to enable joint limits.
	EnableLimit bool

	/// The lower angle for the joint limit (radians).
	LowerAngle float64

	/// The upper angle for the joint limit (radians).
	UpperAngle float64

	/// A flag to enable the joint motor.
	EnableMotor bool

	/// The desired motor speed. Usually in radians per second.
	MotorSpeed float64

	/// The maximum motor torque used to achieve the desired motor speed.
	/// Usually in N-m.
	MaxMotorTorque float64

	/// Set this flag to true if the attached bodies should collide.
	CollideConnected bool

	UserData any
}

/// Initialize the bodies, anchors, and reference angle using a world
/// anchor point.
func MakeRevoluteJointProfile(bodyA, bodyB *RigidBody, anchor Vec2) RevoluteJointProfile {
	return RevoluteJointProfile{
		BodyA:          bodyA,
		BodyB:          bodyB,
		LocalAnchorA:   bodyA.LocalPoint(anchor),
		LocalAnchorB:   bodyB.LocalPoint(anchor),
		ReferenceAngle: bodyB.Angle() - bodyA.Angle(),
	}
}

/// A revolute joint constrains two bodies to share a common point while they
/// are free to rotate about the point. The relative rotation about the shared
/// point is the joint angle. You can limit the relative rotation with
/// a joint limit that specifies a lower and upper angle. You can use a motor
/// to drive the relative rotation about the shared point. A maximum motor torque
/// is provided so that infinite forces are not generated.
type RevoluteJoint struct {
	jointBase

	// Solver shared
	localAnchorA   Vec2
	localAnchorB   Vec2
	impulse        Vec2
	motorImpulse   float64
	lowerImpulse   float64
	upperImpulse   float64
	enableMotor    bool
	maxMotorTorque float64
	motorSpeed     float64
	enableLimit    bool
	referenceAngle float64
	lowerAngle     float64
	upperAngle     float64

	// Solver temp
	indexA       int
	indexB       int
	rA           Vec2
	rB           Vec2
	localCenterA Vec2
	localCenterB Vec2
	invMassA     float64
	invMassB     float64
	invIA        float64
	invIB        float64
	K            Mat22   // effective mass for point-to-point constraint.
	angle        float64 // joint angle at the start of the step
	axialMass    float64 // effective mass for motor/limit angular constraint.
}

func (joint *RevoluteJoint) create(profile *RevoluteJointProfile) {
	*joint = RevoluteJoint{
		jointBase: jointBase{
			id:               joint.id,
			bodyA:            profile.BodyA,
			bodyB:            profile.BodyB,
			collideConnected: profile.CollideConnected,
			userData:         profile.UserData,
		},
		localAnchorA:   profile.LocalAnchorA,
		localAnchorB:   profile.LocalAnchorB,
		referenceAngle: profile.ReferenceAngle,
		lowerAngle:     profile.LowerAngle,
		upperAngle:     profile.UpperAngle,
		maxMotorTorque: profile.MaxMotorTorque,
		motorSpeed:     profile.MotorSpeed,
		enableLimit:    profile.EnableLimit,
		enableMotor:    profile.EnableMotor,
	}
}

func validateRevoluteJointProfile(profile *RevoluteJointProfile) error {
	switch {
	case profile.BodyA == nil || profile.BodyB == nil:
		return fmt.Errorf("revolute joint needs two bodies: %w", ErrInvalidProfile)
	case profile.BodyA == profile.BodyB:
		return fmt.Errorf("revolute joint on a single body: %w", ErrInvalidProfile)
	case profile.LowerAngle > profile.UpperAngle:
		return fmt.Errorf("joint limits [%v, %v]: %w", profile.LowerAngle, profile.UpperAngle, ErrInvalidProfile)
	case profile.MaxMotorTorque < 0.0:
		return fmt.Errorf("max motor torque %v: %w", profile.MaxMotorTorque, ErrInvalidProfile)
	}
	return nil
}

/// The local anchor point relative to bodyA's origin.
func (joint *RevoluteJoint) LocalAnchorA() Vec2 {
	return joint.localAnchorA
}

/// The local anchor point relative to bodyB's origin.
func (joint *RevoluteJoint) LocalAnchorB() Vec2 {
	return joint.localAnchorB
}

/// Get the reference angle.
func (joint *RevoluteJoint) ReferenceAngle() float64 {
	return joint.referenceAngle
}

// Point-to-point constraint
// C = p2 - p1
// Cdot = v2 - v1
//      = v2 + cross(w2, r2) - v1 - cross(w1, r1)
// J = [-I -r1_skew I r2_skew ]
// Identity used:
// w k % (rx i + ry j) = w * (-ry i + rx j)

// Motor constraint
// Cdot = w2 - w1
// J = [0 0 -1 0 0 1]
// K = invI1 + invI2

func (joint *RevoluteJoint) initVelocityConstraints(data *solverData) {
	joint.indexA = joint.bodyA.islandIndex
	joint.indexB = joint.bodyB.islandIndex
	joint.localCenterA = joint.bodyA.sweep.LocalCenter
	joint.localCenterB = joint.bodyB.sweep.LocalCenter
	joint.invMassA = joint.bodyA.invMass
	joint.invMassB = joint.bodyB.invMass
	joint.invIA = joint.bodyA.invI
	joint.invIB = joint.bodyB.invI

	aA := data.positions[joint.indexA].a
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w

	aB := data.positions[joint.indexB].a
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	qA := MakeRotFromAngle(aA)
	qB := MakeRotFromAngle(aB)

	joint.rA = qA.Rotate(joint.localAnchorA.Sub(joint.localCenterA))
	joint.rB = qB.Rotate(joint.localAnchorB.Sub(joint.localCenterB))

	// J = [-I -r1_skew I r2_skew]
	// r_skew = [-ry; rx]

	// Matlab
	// K = [ mA+r1y^2*iA+mB+r2y^2*iB,  -r1y*iA*r1x-r2y*iB*r2x]
	//     [  -r1y*iA*r1x-r2y*iB*r2x, mA+r1x^2*iA+mB+r2x^2*iB]

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	rA := joint.rA
	rB := joint.rB

	joint.K.Ex.X = mA + mB + rA.Y*rA.Y*iA + rB.Y*rB.Y*iB
	joint.K.Ey.X = -rA.Y*rA.X*iA - rB.Y*rB.X*iB
	joint.K.Ex.Y = joint.K.Ey.X
	joint.K.Ey.Y = mA + mB + rA.X*rA.X*iA + rB.X*rB.X*iB

	joint.axialMass = iA + iB
	fixedRotation := false
	if joint.axialMass > 0.0 {
		joint.axialMass = 1.0 / joint.axialMass
	} else {
		fixedRotation = true
	}

	joint.angle = aB - aA - joint.referenceAngle

	if !joint.enableLimit || fixedRotation {
		joint.lowerImpulse = 0.0
		joint.upperImpulse = 0.0
	}

	if !joint.enableMotor || fixedRotation {
		joint.motorImpulse = 0.0
	}

	if data.step.warmStarting {
		// Scale impulses to support a variable time step.
		joint.impulse = joint.impulse.Scale(data.step.dtRatio)
		joint.motorImpulse *= data.step.dtRatio
		joint.lowerImpulse *= data.step.dtRatio
		joint.upperImpulse *= data.step.dtRatio

		axialImpulse := joint.motorImpulse + joint.lowerImpulse - joint.upperImpulse
		P := joint.impulse

		vA = vA.Sub(P.Scale(mA))
		wA -= iA * (Vec2Cross(rA, P) + axialImpulse)

		vB = vB.Add(P.Scale(mB))
		wB += iB * (Vec2Cross(rB, P) + axialImpulse)
	} else {
		joint.impulse.SetZero()
		joint.motorImpulse = 0.0
		joint.lowerImpulse = 0.0
		joint.upperImpulse = 0.0
	}

	data.velocities[joint.indexA] = velocity{v: vA, w: wA}
	data.velocities[joint.indexB] = velocity{v: vB, w: wB}
}

func (joint *RevoluteJoint) solveVelocityConstraints(data *solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	fixedRotation := iA+iB == 0.0

	// Solve motor constraint.
	if joint.enableMotor && !fixedRotation {
		Cdot := wB - wA - joint.motorSpeed
		impulse := -joint.axialMass * Cdot
		oldImpulse := joint.motorImpulse
		maxImpulse := data.step.dt * joint.maxMotorTorque
		joint.motorImpulse = FloatClamp(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		wA -= iA * impulse
		wB += iB * impulse
	}

	if joint.enableLimit && !fixedRotation {
		// Lower limit
		{
			C := joint.angle - joint.lowerAngle
			Cdot := wB - wA
			impulse := -joint.axialMass * (Cdot + math.Max(C, 0.0)*data.step.invDt)
			oldImpulse := joint.lowerImpulse
			joint.lowerImpulse = math.Max(joint.lowerImpulse+impulse, 0.0)
			impulse = joint.lowerImpulse - oldImpulse

			wA -= iA * impulse
			wB += iB * impulse
		}

		// Upper limit
		// Note: signs are flipped to keep C positive when the constraint is satisfied.
		// This also keeps the impulse positive when the limit is active.
		{
			C := joint.upperAngle - joint.angle
			Cdot := wA - wB
			impulse := -joint.axialMass * (Cdot + math.Max(C, 0.0)*data.step.invDt)
			oldImpulse := joint.upperImpulse
			joint.upperImpulse = math.Max(joint.upperImpulse+impulse, 0.0)
			impulse = joint.upperImpulse - oldImpulse

			wA += iA * impulse
			wB -= iB * impulse
		}
	}

	// Solve point to point constraint
	{
		Cdot := vB.Add(Vec2CrossScalarVector(wB, joint.rB)).Sub(vA).Sub(Vec2CrossScalarVector(wA, joint.rA))
		impulse := joint.K.Solve(Cdot.Neg())

		joint.impulse = joint.impulse.Add(impulse)

		vA = vA.Sub(impulse.Scale(mA))
		wA -= iA * Vec2Cross(joint.rA, impulse)

		vB = vB.Add(impulse.Scale(mB))
		wB += iB * Vec2Cross(joint.rB, impulse)
	}

	data.velocities[joint.indexA] = velocity{v: vA, w: wA}
	data.velocities[joint.indexB] = velocity{v: vB, w: wB}
}

func (joint *RevoluteJoint) solvePositionConstraints(data *solverData) bool {
	cA := data.positions[joint.indexA].c
	aA := data.positions[joint.indexA].a
	cB := data.positions[joint.indexB].c
	aB := data.positions[joint.indexB].a

	angularError := 0.0
	positionError := 0.0

	fixedRotation := joint.invIA+joint.invIB == 0.0

	// Solve angular limit constraint
	if joint.enableLimit && !fixedRotation {
		angle := aB - aA - joint.referenceAngle
		C := 0.0

		if math.Abs(joint.upperAngle-joint.lowerAngle) < 2.0*AngularSlop {
			// Prevent large angular corrections
			C = FloatClamp(angle-joint.lowerAngle, -MaxAngularCorrection, MaxAngularCorrection)
		} else if angle <= joint.lowerAngle {
			// Prevent large angular corrections and allow some slop.
			C = FloatClamp(angle-joint.lowerAngle+AngularSlop, -MaxAngularCorrection, 0.0)
		} else if angle >= joint.upperAngle {
			// Prevent large angular corrections and allow some slop.
			C = FloatClamp(angle-joint.upperAngle-AngularSlop, 0.0, MaxAngularCorrection)
		}

		limitImpulse := -joint.axialMass * C
		aA -= joint.invIA * limitImpulse
		aB += joint.invIB * limitImpulse
		angularError = math.Abs(C)
	}

	// Solve point to point constraint.
	{
		qA := MakeRotFromAngle(aA)
		qB := MakeRotFromAngle(aB)
		rA := qA.Rotate(joint.localAnchorA.Sub(joint.localCenterA))
		rB := qB.Rotate(joint.localAnchorB.Sub(joint.localCenterB))

		C := cB.Add(rB).Sub(cA).Sub(rA)
		positionError = C.Length()

		mA := joint.invMassA
		mB := joint.invMassB
		iA := joint.invIA
		iB := joint.invIB

		var K Mat22
		K.Ex.X = mA + mB + iA*rA.Y*rA.Y + iB*rB.Y*rB.Y
		K.Ex.Y = -iA*rA.X*rA.Y - iB*rB.X*rB.Y
		K.Ey.X = K.Ex.Y
		K.Ey.Y = mA + mB + iA*rA.X*rA.X + iB*rB.X*rB.X

		impulse := K.Solve(C).Neg()

		cA = cA.Sub(impulse.Scale(mA))
		aA -= iA * Vec2Cross(rA, impulse)

		cB = cB.Add(impulse.Scale(mB))
		aB += iB * Vec2Cross(rB, impulse)
	}

	data.positions[joint.indexA] = position{c: cA, a: aA}
	data.positions[joint.indexB] = position{c: cB, a: aB}

	return positionError <= LinearSlop && angularError <= AngularSlop
}

func (joint *RevoluteJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *RevoluteJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

/// Get the reaction force on bodyB at the joint anchor in Newtons.
func (joint *RevoluteJoint) ReactionForce(invDt float64) Vec2 {
	return joint.impulse.Scale(invDt)
}

/// Get the reaction torque due to the joint limit given the inverse time step.
/// Unit is N*m.
func (joint *RevoluteJoint) ReactionTorque(invDt float64) float64 {
	return invDt * (joint.motorImpulse + joint.lowerImpulse - joint.upperImpulse)
}

/// Get the current joint angle in radians.
func (joint *RevoluteJoint) JointAngle() float64 {
	return joint.bodyB.sweep.A - joint.bodyA.sweep.A - joint.referenceAngle
}

/// Get the current joint angle speed in radians per second.
func (joint *RevoluteJoint) JointSpeed() float64 {
	return joint.bodyB.angularVelocity - joint.bodyA.angularVelocity
}

func (joint *RevoluteJoint) IsMotorEnabled() bool {
	return joint.enableMotor
}

func (joint *RevoluteJoint) EnableMotor(flag bool) {
	if flag != joint.enableMotor {
		joint.bodyA.WakeUp()
		joint.bodyB.WakeUp()
		joint.enableMotor = flag
	}
}

/// Get the current motor torque given the inverse time step.
/// Unit is N*m.
func (joint *RevoluteJoint) MotorTorque(invDt float64) float64 {
	return invDt * joint.motorImpulse
}

func (joint *RevoluteJoint) MotorSpeed() float64 {
	return joint.motorSpeed
}

func (joint *RevoluteJoint) SetMotorSpeed(speed float64) {
	if speed != joint.motorSpeed {
		joint.bodyA.WakeUp()
		joint.bodyB.WakeUp()
		joint.motorSpeed = speed
	}
}

func (joint *RevoluteJoint) MaxMotorTorque() float64 {
	return joint.maxMotorTorque
}

func (joint *RevoluteJoint) SetMaxMotorTorque(torque float64) {
	if torque != joint.maxMotorTorque {
		joint.bodyA.WakeUp()
		joint.bodyB.WakeUp()
		joint.maxMotorTorque = torque
	}
}

func (joint *RevoluteJoint) IsLimitEnabled() bool {
	return joint.enableLimit
}

func (joint *RevoluteJoint) EnableLimit(flag bool) {
	if flag != joint.enableLimit {
		joint.bodyA.WakeUp()
		joint.bodyB.WakeUp()
		joint.enableLimit = flag
		joint.lowerImpulse = 0.0
		joint.upperImpulse = 0.0
	}
}

func (joint *RevoluteJoint) LowerLimit() float64 {
	return joint.lowerAngle
}

func (joint *RevoluteJoint) UpperLimit() float64 {
	return joint.upperAngle
}

/// Set the joint limits in radians.
func (joint *RevoluteJoint) SetLimits(lower float64, upper float64) error {
	if lower > upper {
		return fmt.Errorf("joint limits [%v, %v]: %w", lower, upper, ErrInvalidProfile)
	}

	if lower != joint.lowerAngle || upper != joint.upperAngle {
		joint.bodyA.WakeUp()
		joint.bodyB.WakeUp()
		joint.lowerImpulse = 0.0
		joint.upperImpulse = 0.0
		joint.lowerAngle = lower
		joint.upperAngle = upper
	}

	return nil
}

func (joint *RevoluteJoint) String() string {
	return fmt.Sprintf("%s (%s, %s) angle=%.4f", joint.id, joint.bodyA.id, joint.bodyB.id, joint.JointAngle())
}
