// Package spatialmath defines spatial mathematical operations in the plane:
// unit circle rotations, point helpers, and SE(2) poses with their
// exponential and logarithm maps.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// twistEpsilon bounds the rotation magnitude below which the exponential
// and logarithm maps switch to series expansions to avoid dividing zero by
// zero.
const twistEpsilon = 1e-9

// Transform is a rigid motion in the plane, a translation and a rotation
// applied as a unit. Applying a Transform to a Pose interprets the
// translation in the pose's own frame (see Compose).
type Transform struct {
	translation r2.Point
	rotation    Rotation
}

// NewTransform returns a Transform of the given translation and rotation.
func NewTransform(translation r2.Point, rotation Rotation) Transform {
	return Transform{translation: translation, rotation: rotation}
}

// Translation returns the translation component.
func (t Transform) Translation() r2.Point {
	return t.translation
}

// Rotation returns the rotation component.
func (t Transform) Rotation() Rotation {
	return t.rotation
}

// Inverse returns the transform that undoes t, so composing a pose with t
// and then with t.Inverse() returns the original pose.
func (t Transform) Inverse() Transform {
	inv := t.rotation.Inverse()
	return Transform{
		translation: RotatePoint(t.translation.Mul(-1), inv),
		rotation:    inv,
	}
}

// Mul returns the transform scaled by k in both components.
func (t Transform) Mul(k float64) Transform {
	return Transform{translation: t.translation.Mul(k), rotation: t.rotation.Mul(k)}
}

// Pose is a robot placement in a fixed frame: a position and a heading.
//
// The zero value of Pose is not valid; use NewPose or NewZeroPose instead.
type Pose struct {
	point   r2.Point
	heading Rotation
}

// NewPose returns a Pose at the given point with the given heading.
func NewPose(point r2.Point, heading Rotation) Pose {
	return Pose{point: point, heading: heading}
}

// NewZeroPose returns a Pose at the origin facing the positive X axis.
func NewZeroPose() Pose {
	return Pose{heading: NewRotation(0)}
}

// Point returns the position of the pose in the fixed frame.
func (p Pose) Point() r2.Point {
	return p.point
}

// Heading returns the heading of the pose.
func (p Pose) Heading() Rotation {
	return p.heading
}

// Compose applies the robot frame motion t to the fixed frame pose p. The
// transform's translation is rotated into p's orientation before being
// added, and the rotations compose.
func Compose(p Pose, t Transform) Pose {
	return Pose{
		point:   p.point.Add(RotatePoint(t.translation, p.heading)),
		heading: p.heading.Add(t.rotation),
	}
}

// PoseBetween returns the transform mapping a onto b, expressed in a's
// frame.
func PoseBetween(a, b Pose) Transform {
	return Transform{
		translation: RotatePoint(b.point.Sub(a.point), a.heading.Inverse()),
		rotation:    b.heading.Sub(a.heading),
	}
}

// RelativeTo returns p expressed in origin's frame: the components of
// PoseBetween(origin, p) reinterpreted as a placement. This is the error
// term a pose stabilization controller wants.
func (p Pose) RelativeTo(origin Pose) Pose {
	t := PoseBetween(origin, p)
	return Pose{point: t.translation, heading: t.rotation}
}

// TwistToTransform returns the rigid motion produced by following t's
// constant curvature arc for one step, the exponential map of SE(2). The
// translation is the chord of the arc, which makes integrating with it
// exact under a constant angular rate instead of a straight line
// approximation.
func TwistToTransform(t Twist) Transform {
	sinTheta := math.Sin(t.Dtheta)
	cosTheta := math.Cos(t.Dtheta)

	var s, c float64
	if math.Abs(t.Dtheta) < twistEpsilon {
		s = 1 - t.Dtheta*t.Dtheta/6
		c = t.Dtheta / 2
	} else {
		s = sinTheta / t.Dtheta
		c = (1 - cosTheta) / t.Dtheta
	}
	return Transform{
		translation: r2.Point{X: t.Dx*s - t.Dy*c, Y: t.Dx*c + t.Dy*s},
		rotation:    NewRotationFromXY(cosTheta, sinTheta),
	}
}

// Exp applies the twist's constant curvature motion to p and returns the
// resulting pose.
func (p Pose) Exp(t Twist) Pose {
	return Compose(p, TwistToTransform(t))
}

// TransformToTwist returns the twist whose exponential is t, the logarithm
// map of SE(2).
func TransformToTwist(t Transform) Twist {
	dtheta := t.rotation.Radians()
	half := dtheta / 2

	cosMinusOne := t.rotation.Cos() - 1
	var halfThetaByTanHalfTheta float64
	if math.Abs(cosMinusOne) < twistEpsilon {
		halfThetaByTanHalfTheta = 1 - dtheta*dtheta/12
	} else {
		halfThetaByTanHalfTheta = -(half * t.rotation.Sin()) / cosMinusOne
	}

	translation := RotatePoint(
		t.translation,
		NewRotationFromXY(halfThetaByTanHalfTheta, -half),
	).Mul(math.Hypot(halfThetaByTanHalfTheta, half))
	return Twist{Dx: translation.X, Dy: translation.Y, Dtheta: dtheta}
}

// Log returns the twist that carries p to end through Exp, inverting Exp up
// to floating point tolerance.
func (p Pose) Log(end Pose) Twist {
	return TransformToTwist(PoseBetween(p, end))
}

// PoseAlmostEqual returns whether two poses have approximately the same
// position and heading.
func PoseAlmostEqual(a, b Pose) bool {
	return PointAlmostEqual(a.point, b.point) && RotationAlmostEqual(a.heading, b.heading)
}
