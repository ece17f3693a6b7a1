package kinematics

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/swerve/spatialmath"
)

func testOdometry(t *testing.T) *SwerveDriveOdometry {
	t.Helper()
	return NewSwerveDriveOdometry(testKinematics(t), spatialmath.NewRotation(0), spatialmath.NewZeroPose())
}

func atRest() []SwerveModuleState {
	state := SwerveModuleState{Angle: spatialmath.NewRotation(0)}
	return []SwerveModuleState{state, state, state, state}
}

func TestOdometryInitialPose(t *testing.T) {
	odo := testOdometry(t)
	test.That(t, spatialmath.PoseAlmostEqual(odo.Pose(), spatialmath.NewZeroPose()), test.ShouldBeTrue)
}

func TestOdometryStraightLine(t *testing.T) {
	odo := testOdometry(t)
	zero := spatialmath.NewRotation(0)

	// The first update only sets the time baseline.
	pose, err := odo.UpdateWithTime(0, zero, atRest()...)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(pose, spatialmath.NewZeroPose()), test.ShouldBeTrue)

	state := SwerveModuleState{Speed: 5, Angle: zero}
	pose, err = odo.UpdateWithTime(0.1, zero, state, state, state, state)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 0.5)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, 0)
	test.That(t, pose.Heading().Radians(), test.ShouldAlmostEqual, 0)
}

func TestOdometry90DegreeTurn(t *testing.T) {
	odo := testOdometry(t)

	// A quarter turn along an arc: the inner modules run slower than the
	// outer ones while the gyro sweeps to 90 degrees.
	states := []SwerveModuleState{
		{Speed: 18.85, Angle: spatialmath.NewRotationFromDegrees(90)},
		{Speed: 42.15, Angle: spatialmath.NewRotationFromDegrees(26.565)},
		{Speed: 18.85, Angle: spatialmath.NewRotationFromDegrees(-90)},
		{Speed: 42.15, Angle: spatialmath.NewRotationFromDegrees(-26.565)},
	}

	_, err := odo.UpdateWithTime(0, spatialmath.NewRotation(0), atRest()...)
	test.That(t, err, test.ShouldBeNil)
	pose, err := odo.UpdateWithTime(1, spatialmath.NewRotationFromDegrees(90), states...)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 12, 0.01)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, 12, 0.01)
	test.That(t, pose.Heading().Degrees(), test.ShouldAlmostEqual, 90)
}

func TestOdometryGyroOffset(t *testing.T) {
	// A gyro that powered up reading 90 degrees while the robot faces +X:
	// the offset absorbs the difference and the track stays straight.
	odo := NewSwerveDriveOdometry(
		testKinematics(t), spatialmath.NewRotationFromDegrees(90), spatialmath.NewZeroPose())
	gyro := spatialmath.NewRotationFromDegrees(90)

	_, err := odo.UpdateWithTime(0, gyro, atRest()...)
	test.That(t, err, test.ShouldBeNil)

	state := SwerveModuleState{Speed: 5, Angle: spatialmath.NewRotation(0)}
	pose, err := odo.UpdateWithTime(0.1, gyro, state, state, state, state)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 0.5)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, 0)
	test.That(t, pose.Heading().Radians(), test.ShouldAlmostEqual, 0)
}

func TestOdometryResetRederivesGyroOffset(t *testing.T) {
	odo := testOdometry(t)
	gyro := spatialmath.NewRotationFromDegrees(90)

	odo.ResetPosition(spatialmath.NewZeroPose(), gyro)

	_, err := odo.UpdateWithTime(0, gyro, atRest()...)
	test.That(t, err, test.ShouldBeNil)

	state := SwerveModuleState{Speed: 5, Angle: spatialmath.NewRotation(0)}
	pose, err := odo.UpdateWithTime(0.1, gyro, state, state, state, state)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 0.5)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, 0)
	test.That(t, pose.Heading().Radians(), test.ShouldAlmostEqual, 0)
}

func TestOdometryResetKeepsTimeBaseline(t *testing.T) {
	odo := testOdometry(t)
	zero := spatialmath.NewRotation(0)

	_, err := odo.UpdateWithTime(0, zero, atRest()...)
	test.That(t, err, test.ShouldBeNil)

	odo.ResetPosition(
		spatialmath.NewPose(r2.Point{X: 5, Y: 5}, spatialmath.NewRotation(0)), zero)

	state := SwerveModuleState{Speed: 5, Angle: zero}
	pose, err := odo.UpdateWithTime(0.1, zero, state, state, state, state)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 5.5)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, 5)
}

func TestOdometryModuleCountMismatch(t *testing.T) {
	odo := testOdometry(t)
	zero := spatialmath.NewRotation(0)

	_, err := odo.UpdateWithTime(0, zero, atRest()...)
	test.That(t, err, test.ShouldBeNil)

	state := SwerveModuleState{Speed: 1, Angle: zero}
	pose, err := odo.UpdateWithTime(0.1, zero, state, state)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(pose, spatialmath.NewZeroPose()), test.ShouldBeTrue)
}
