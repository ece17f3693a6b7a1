package spatialmath

import (
	"math"

	"go.viam.com/swerve/utils"
)

// defaultAngleEpsilon is the tolerance used when comparing rotations.
const defaultAngleEpsilon = 1e-9

// Rotation represents an orientation in the plane as a point on the unit
// circle. The cosine and sine are stored alongside the angle so that
// composing rotations uses the angle sum identities on unit circle
// components instead of accumulating raw angle additions.
//
// The zero value of Rotation is not valid and one of the New* constructors
// should be used to create a Rotation instead.
type Rotation struct {
	theta float64
	cos   float64
	sin   float64
}

// NewRotation returns a Rotation of the given radians.
func NewRotation(rad float64) Rotation {
	return Rotation{theta: rad, cos: math.Cos(rad), sin: math.Sin(rad)}
}

// NewRotationFromDegrees returns a Rotation of the given degrees.
func NewRotationFromDegrees(deg float64) Rotation {
	return NewRotation(utils.DegToRad(deg))
}

// NewRotationFromXY returns the Rotation pointing along the vector (x, y).
// The vector does not need to be normalized. A vector of negligible
// magnitude produces the identity rotation rather than dividing by zero.
func NewRotationFromXY(x, y float64) Rotation {
	cos, sin := 1.0, 0.0
	if mag := math.Hypot(x, y); mag > 1e-6 {
		cos = x / mag
		sin = y / mag
	}
	return Rotation{theta: math.Atan2(sin, cos), cos: cos, sin: sin}
}

// Radians returns the angle in radians.
func (r Rotation) Radians() float64 {
	return r.theta
}

// Degrees returns the angle in degrees.
func (r Rotation) Degrees() float64 {
	return utils.RadToDeg(r.theta)
}

// Cos returns the cosine of the angle.
func (r Rotation) Cos() float64 {
	return r.cos
}

// Sin returns the sine of the angle.
func (r Rotation) Sin() float64 {
	return r.sin
}

// Tan returns the tangent of the angle. It is unbounded near ±90 degrees;
// guarding against that is up to the caller.
func (r Rotation) Tan() float64 {
	return r.sin / r.cos
}

// Add returns the composition of r with other. The result is computed on
// the stored unit circle components and comes back bounded between -π and π.
func (r Rotation) Add(other Rotation) Rotation {
	return NewRotationFromXY(
		r.cos*other.cos-r.sin*other.sin,
		r.cos*other.sin+r.sin*other.cos,
	)
}

// Sub returns the rotation from other to r, bounded between -π and π.
// Heading deltas go through here so they wrap correctly across the ±180
// degree boundary.
func (r Rotation) Sub(other Rotation) Rotation {
	return r.Add(other.Inverse())
}

// Inverse returns the rotation of the negated angle.
func (r Rotation) Inverse() Rotation {
	return NewRotation(-r.theta)
}

// Mul returns the rotation of k times the angle. This scales the angle
// itself, not the unit circle components.
func (r Rotation) Mul(k float64) Rotation {
	return NewRotation(r.theta * k)
}

// RotationAlmostEqual returns whether two rotations have the same angle to
// within a small tolerance.
func RotationAlmostEqual(a, b Rotation) bool {
	return utils.Float64AlmostEqual(a.theta, b.theta, defaultAngleEpsilon)
}
