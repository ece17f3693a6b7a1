package spatialmath

import "go.viam.com/swerve/utils"

// Twist is a change in pose over one step expressed in the moving robot's
// own frame: a distance traveled along each robot axis and a change in
// heading. Twists relate to poses through the exponential and logarithm
// maps, not by direct addition.
type Twist struct {
	Dx     float64
	Dy     float64
	Dtheta float64
}

// TwistAlmostEqual returns whether two twists are componentwise equal to
// within a small tolerance.
func TwistAlmostEqual(a, b Twist) bool {
	return utils.Float64AlmostEqual(a.Dx, b.Dx, defaultPointEpsilon) &&
		utils.Float64AlmostEqual(a.Dy, b.Dy, defaultPointEpsilon) &&
		utils.Float64AlmostEqual(a.Dtheta, b.Dtheta, defaultPointEpsilon)
}
