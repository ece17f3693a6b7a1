// Package kinematics converts between chassis level velocities and per
// module swerve states, and integrates module feedback into a field pose
// over time.
package kinematics

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/swerve/spatialmath"
)

// rcond is the smallest singular value ratio treated as nonzero when
// computing the forward kinematics pseudoinverse.
const rcond = 1e-15

// SwerveModuleState is the state of one swerve module: the signed linear
// speed of its wheel and the azimuth the wheel points along. A negative
// speed drives the wheel in reverse of its azimuth.
//
// The zero value has an invalid Angle; set Angle explicitly when building
// states by hand.
type SwerveModuleState struct {
	Speed float64
	Angle spatialmath.Rotation
}

// SwerveDriveKinematics converts a desired chassis motion into individual
// module states and measured module states back into a chassis motion.
//
// The conversion is a 2N×3 matrix taking (vx, vy, omega) to stacked per
// module (vx, vy) pairs. Its Moore-Penrose pseudoinverse serves as the
// forward map and is cached, then rebuilt lazily after the center of
// rotation changes. Methods are not safe for concurrent use; callers
// sharing an instance across goroutines must serialize access.
type SwerveDriveKinematics struct {
	modules []r2.Point

	inverse      *mat.Dense
	forward      *mat.Dense
	lastCOR      r2.Point
	forwardStale bool
}

// NewSwerveDriveKinematics builds the kinematics of a drivetrain whose
// modules sit at the given positions relative to the robot center, +X
// forward and +Y left. The order of positions fixes the order of every
// module state slice passed to or returned from the methods. At least two
// modules are required to constrain the chassis.
func NewSwerveDriveKinematics(modulePositions ...r2.Point) (*SwerveDriveKinematics, error) {
	if len(modulePositions) < 2 {
		return nil, errors.Errorf(
			"a swerve drive requires at least two modules, got %d", len(modulePositions))
	}

	sdk := &SwerveDriveKinematics{
		modules: append([]r2.Point{}, modulePositions...),
		inverse: mat.NewDense(2*len(modulePositions), 3, nil),
	}
	for i, module := range sdk.modules {
		sdk.inverse.Set(2*i, 0, 1)
		sdk.inverse.Set(2*i, 2, -module.Y)
		sdk.inverse.Set(2*i+1, 1, 1)
		sdk.inverse.Set(2*i+1, 2, module.X)
	}

	forward, err := pseudoInverse(sdk.inverse)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build forward kinematics")
	}
	sdk.forward = forward
	return sdk, nil
}

// NumModules returns how many modules the drivetrain has.
func (sdk *SwerveDriveKinematics) NumModules() int {
	return len(sdk.modules)
}

// ToSwerveModuleStates performs inverse kinematics: the module speeds and
// azimuths that realize the desired chassis speeds while rotating about
// centerOfRotation. The zero point is the robot center; passing a corner
// of the robot makes it pivot about that corner.
//
// The returned states are in module construction order and are not
// normalized. User input can demand more than a module's attainable speed,
// so pass the result through NormalizeWheelSpeeds before actuation.
func (sdk *SwerveDriveKinematics) ToSwerveModuleStates(
	speeds ChassisSpeeds, centerOfRotation r2.Point,
) []SwerveModuleState {
	if centerOfRotation != sdk.lastCOR {
		for i, module := range sdk.modules {
			sdk.inverse.Set(2*i, 2, -module.Y+centerOfRotation.Y)
			sdk.inverse.Set(2*i+1, 2, module.X-centerOfRotation.X)
		}
		sdk.lastCOR = centerOfRotation
		sdk.forwardStale = true
	}

	chassisVec := mat.NewVecDense(3, []float64{speeds.Vx, speeds.Vy, speeds.Omega})
	var moduleVec mat.VecDense
	moduleVec.MulVec(sdk.inverse, chassisVec)

	states := make([]SwerveModuleState, len(sdk.modules))
	for i := range states {
		vx := moduleVec.AtVec(2 * i)
		vy := moduleVec.AtVec(2*i + 1)
		states[i] = SwerveModuleState{
			Speed: math.Hypot(vx, vy),
			Angle: spatialmath.NewRotationFromXY(vx, vy),
		}
	}
	return states
}

// ToChassisSpeeds performs forward kinematics: the chassis speeds implied
// by measured module states, relative to the active center of rotation.
// With more than two modules the system is overdetermined, so the result is
// the least squares solution through the cached pseudoinverse, which
// averages away disagreement between modules. It requires exactly as many
// states, in construction order, as module positions were supplied.
func (sdk *SwerveDriveKinematics) ToChassisSpeeds(states ...SwerveModuleState) (ChassisSpeeds, error) {
	if len(states) != len(sdk.modules) {
		return ChassisSpeeds{}, errors.Errorf(
			"kinematics configured with %d modules but given %d states",
			len(sdk.modules), len(states))
	}

	if sdk.forwardStale {
		forward, err := pseudoInverse(sdk.inverse)
		if err != nil {
			return ChassisSpeeds{}, errors.Wrap(err, "cannot rebuild forward kinematics")
		}
		sdk.forward = forward
		sdk.forwardStale = false
	}

	moduleData := make([]float64, 2*len(states))
	for i, state := range states {
		moduleData[2*i] = state.Speed * state.Angle.Cos()
		moduleData[2*i+1] = state.Speed * state.Angle.Sin()
	}

	var chassisVec mat.VecDense
	chassisVec.MulVec(sdk.forward, mat.NewVecDense(len(moduleData), moduleData))
	return ChassisSpeeds{
		Vx:    chassisVec.AtVec(0),
		Vy:    chassisVec.AtVec(1),
		Omega: chassisVec.AtVec(2),
	}, nil
}

// NormalizeWheelSpeeds rescales every state's speed in place so that none
// exceeds maxAttainableSpeed in magnitude, preserving the ratios between
// modules and therefore the direction of travel. States already within the
// limit are left untouched.
func NormalizeWheelSpeeds(states []SwerveModuleState, maxAttainableSpeed float64) {
	maxSpeed := 0.0
	for _, state := range states {
		if speed := math.Abs(state.Speed); speed > maxSpeed {
			maxSpeed = speed
		}
	}
	if maxSpeed <= maxAttainableSpeed {
		return
	}

	factor := maxAttainableSpeed / maxSpeed
	for i := range states {
		states[i].Speed *= factor
	}
}

// OptimizeModuleState flips a desired state's drive direction when that
// lets the module reach the setpoint with less steering travel: whenever
// the azimuth change from currentAngle exceeds a quarter turn, the speed is
// negated and the azimuth rotated a half turn.
func OptimizeModuleState(desired SwerveModuleState, currentAngle spatialmath.Rotation) SwerveModuleState {
	delta := desired.Angle.Sub(currentAngle)
	if math.Abs(delta.Degrees()) > 90 {
		return SwerveModuleState{
			Speed: -desired.Speed,
			Angle: desired.Angle.Add(spatialmath.NewRotationFromDegrees(180)),
		}
	}
	return desired
}

// pseudoInverse computes the Moore-Penrose pseudoinverse of m through its
// thin singular value decomposition, dropping singular values below rcond
// of the largest.
func pseudoInverse(m *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, errors.New("failed to factorize matrix")
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return nil, errors.New("zero rank system")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	rows, cols := m.Dims()
	scaled := mat.NewDense(cols, len(values), nil)
	for j := range values {
		var inv float64
		if j < rank {
			inv = 1 / values[j]
		}
		for i := 0; i < cols; i++ {
			scaled.Set(i, j, v.At(i, j)*inv)
		}
	}

	pinv := mat.NewDense(cols, rows, nil)
	pinv.Mul(scaled, u.T())
	return pinv, nil
}
