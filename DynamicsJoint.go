package physics2d

type JointID Handle

func (id JointID) String() string {
	return "joint " + Handle(id).String()
}

/// The base joint interface. Joints are used to constraint two bodies together in
/// various fashions. Some joints also feature limits and motors.
type Joint interface {
	ID() JointID

	/// Get the first body attached to this joint.
	BodyA() *RigidBody

	/// Get the second body attached to this joint.
	BodyB() *RigidBody

	/// Get the anchor point on bodyA in world coordinates.
	AnchorA() Vec2

	/// Get the anchor point on bodyB in world coordinates.
	AnchorB() Vec2

	/// Get collide connected.
	/// Note: modifying the collide connect flag won't work correctly because
	/// the flag is only checked when fixture AABBs begin to overlap.
	CollideConnected() bool

	UserData() any
	SetUserData(data any)

	base() *jointBase

	initVelocityConstraints(data *solverData)
	solveVelocityConstraints(data *solverData)

	// This returns true if the position errors are within tolerance.
	solvePositionConstraints(data *solverData) bool
}

/// Fields shared by every joint type.
type jointBase struct {
	id               JointID
	bodyA            *RigidBody
	bodyB            *RigidBody
	islandFlag       bool
	collideConnected bool
	userData         any
}

func (j *jointBase) ID() JointID {
	return j.id
}

func (j *jointBase) BodyA() *RigidBody {
	return j.bodyA
}

func (j *jointBase) BodyB() *RigidBody {
	return j.bodyB
}

func (j *jointBase) CollideConnected() bool {
	return j.collideConnected
}

func (j *jointBase) UserData() any {
	return j.userData
}

func (j *jointBase) SetUserData(data any) {
	j.userData = data
}

func (j *jointBase) base() *jointBase {
	return j
}
