package kinematics

import "go.viam.com/swerve/spatialmath"

// SwerveDriveOdometry tracks a robot's field relative pose by integrating
// forward kinematics velocities under a gyro supplied heading. Velocity
// magnitude and direction come from the wheel encoders, which drift in
// heading under wheel slip; the heading itself comes from the gyro, which
// does not. The two combine through the same pose exponential used for
// pure kinematic integration.
//
// An odometry instance is a mutable accumulator meant to be fed from a
// single control loop; it does not synchronize access.
type SwerveDriveOdometry struct {
	kinematics *SwerveDriveKinematics
	pose       spatialmath.Pose

	previousTime    float64
	hasPreviousTime bool
	previousHeading spatialmath.Rotation
	gyroOffset      spatialmath.Rotation
}

// NewSwerveDriveOdometry returns odometry starting at initialPose. The
// current raw gyro reading is mapped onto the pose's heading, so the
// gyroscope does not need to be zeroed to any particular reference.
func NewSwerveDriveOdometry(
	kinematics *SwerveDriveKinematics,
	gyroHeading spatialmath.Rotation,
	initialPose spatialmath.Pose,
) *SwerveDriveOdometry {
	return &SwerveDriveOdometry{
		kinematics:      kinematics,
		pose:            initialPose,
		previousHeading: initialPose.Heading(),
		gyroOffset:      initialPose.Heading().Sub(gyroHeading),
	}
}

// Pose returns the accumulated field relative pose.
func (odo *SwerveDriveOdometry) Pose() spatialmath.Pose {
	return odo.pose
}

// ResetPosition declares the robot to be at pose, re-deriving the gyro
// offset from the given raw reading. The previous update timestamp is
// kept, so an established update cadence continues across the reset.
func (odo *SwerveDriveOdometry) ResetPosition(pose spatialmath.Pose, gyroHeading spatialmath.Rotation) {
	odo.pose = pose
	odo.previousHeading = pose.Heading()
	odo.gyroOffset = pose.Heading().Sub(gyroHeading)
}

// UpdateWithTime advances the pose using forward kinematics over the step
// since the previous call and returns the new pose. The first call only
// establishes the time baseline and never moves the position. The wheel
// derived angular rate is discarded each step: the pose's heading is
// forced to the offset corrected gyro reading, which is taken as
// authoritative over anything inferred from the wheels.
//
// now is a timestamp in seconds and must not decrease between calls;
// states must be in module construction order, one per module. On error
// the pose is returned unchanged.
func (odo *SwerveDriveOdometry) UpdateWithTime(
	now float64,
	gyroHeading spatialmath.Rotation,
	states ...SwerveModuleState,
) (spatialmath.Pose, error) {
	var dt float64
	if odo.hasPreviousTime {
		dt = now - odo.previousTime
	}
	odo.previousTime = now
	odo.hasPreviousTime = true

	heading := gyroHeading.Add(odo.gyroOffset)

	speeds, err := odo.kinematics.ToChassisSpeeds(states...)
	if err != nil {
		return odo.pose, err
	}

	next := odo.pose.Exp(spatialmath.Twist{
		Dx:     speeds.Vx * dt,
		Dy:     speeds.Vy * dt,
		Dtheta: heading.Sub(odo.previousHeading).Radians(),
	})

	odo.previousHeading = heading
	odo.pose = spatialmath.NewPose(next.Point(), heading)
	return odo.pose, nil
}
