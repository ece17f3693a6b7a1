package kinematics

import "go.viam.com/swerve/spatialmath"

// ChassisSpeeds is a robot frame velocity: linear speed along each robot
// axis plus an angular rate. Forward is +Vx, left is +Vy, and
// counterclockwise is +Omega. Unlike a Twist, which is a displacement over
// a step, a ChassisSpeeds is an instantaneous rate.
type ChassisSpeeds struct {
	Vx    float64
	Vy    float64
	Omega float64
}

// FromFieldRelativeSpeeds converts field relative speeds into the robot
// frame by rotating the linear velocity through the inverse of the robot's
// field heading, as measured by a gyroscope. The angular rate is the same
// in both frames.
func FromFieldRelativeSpeeds(vx, vy, omega float64, robotHeading spatialmath.Rotation) ChassisSpeeds {
	return ChassisSpeeds{
		Vx:    vx*robotHeading.Cos() + vy*robotHeading.Sin(),
		Vy:    -vx*robotHeading.Sin() + vy*robotHeading.Cos(),
		Omega: omega,
	}
}

// ToFieldRelative converts robot frame speeds into the field frame, the
// inverse of FromFieldRelativeSpeeds.
func (s ChassisSpeeds) ToFieldRelative(robotHeading spatialmath.Rotation) ChassisSpeeds {
	return ChassisSpeeds{
		Vx:    s.Vx*robotHeading.Cos() - s.Vy*robotHeading.Sin(),
		Vy:    s.Vx*robotHeading.Sin() + s.Vy*robotHeading.Cos(),
		Omega: s.Omega,
	}
}
